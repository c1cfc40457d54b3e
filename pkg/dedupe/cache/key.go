package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/normalize"
)

// Key builds the stable cache key described in spec §4.6: a fingerprint
// over the normalized, order-independent request shape, so two requests
// that differ only in keyword or field order, or in title whitespace, hit
// the same entry. The description and keywords are used as given, without
// whitespace normalization.
func Key(source dedupe.Metadata, threshold float64, fields []dedupe.Field, maxCandidates int) string {
	normalizedTitle := normalize.Title(source.Title)
	normalizedDescription := firstNChars(source.Description, 100)
	normalizedURL := normalize.URL(source.URL)

	keywords := append([]string(nil), source.Keywords...)
	sort.Strings(keywords)

	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = string(f)
	}
	sort.Strings(fieldNames)

	raw := fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%.4f\x00%s\x00%d",
		normalizedTitle,
		normalizedDescription,
		normalizedURL,
		strings.Join(keywords, ","),
		threshold,
		strings.Join(fieldNames, ","),
		maxCandidates,
	)

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func firstNChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
