// Package minhash implements the shingle-based MinHash sketch used to score
// textual similarity between a source record and a candidate: shingle
// extraction, signature computation over a fixed set of seeded hash
// functions, and Jaccard-estimate comparison.
package minhash

import (
	"hash/crc32"
	"math/rand"
	"regexp"
	"strings"
)

const (
	numHashes = 100
	// seed is a build-time constant so signatures are reproducible across
	// process restarts, matching hash_detector.py's MinHashDetector(seed=42).
	seed = 42
	// nextPrime is the first prime greater than 2^32, used as the modulus
	// for every h_i(x) = (a_i*H(x)+b_i) mod p.
	nextPrime uint64 = 4294967311
)

var reNonAlnumSpace = regexp.MustCompile(`[^a-z0-9 ]+`)

// Signature is a fixed-length ordered sequence of per-hash minima.
type Signature [numHashes]uint32

// Engine holds the seeded hash-function coefficients. It is safe for
// concurrent use once constructed: the coefficients never change after
// initialization.
type Engine struct {
	coeffA [numHashes]uint64
	coeffB [numHashes]uint64
}

// New builds the deterministic hash-function family from the build-time
// seed. There is normally one process-wide Engine.
func New() *Engine {
	r := rand.New(rand.NewSource(seed))
	e := &Engine{}
	seen := map[uint64]bool{}
	for i := 0; i < numHashes; i++ {
		e.coeffA[i] = pickUnique(r, seen)
	}
	seen = map[uint64]bool{}
	for i := 0; i < numHashes; i++ {
		e.coeffB[i] = pickUnique(r, seen)
	}
	return e
}

func pickUnique(r *rand.Rand, seen map[uint64]bool) uint64 {
	for {
		v := uint64(r.Uint32())
		if !seen[v] {
			seen[v] = true
			return v
		}
	}
}

// tokenize lowercases, strips non-alphanumeric characters (keeping spaces),
// and splits on whitespace.
func tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	text = reNonAlnumSpace.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// shingles forms k=3 word-shingles by sliding a window of size 3 with step
// 1 over the token sequence. If fewer than 3 tokens are present, the token
// set itself is the shingle set.
func shingles(tokens []string) []string {
	const k = 3
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) < k {
		return []string{strings.Join(tokens, " ")}
	}
	out := make([]string, 0, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+k], " "))
	}
	return out
}

// Signature computes the MinHash signature for a text. An empty shingle set
// (empty or whitespace-only text) yields an all-max signature, so it never
// spuriously agrees with anything but another empty text.
func (e *Engine) Signature(text string) Signature {
	var sig Signature
	for i := range sig {
		sig[i] = ^uint32(0)
	}

	shingleSet := shingles(tokenize(text))
	if len(shingleSet) == 0 {
		return sig
	}

	hashes := make([]uint64, len(shingleSet))
	for i, s := range shingleSet {
		hashes[i] = uint64(crc32.ChecksumIEEE([]byte(s)))
	}

	for i := 0; i < numHashes; i++ {
		min := nextPrime + 1
		for _, h := range hashes {
			v := (e.coeffA[i]*h + e.coeffB[i]) % nextPrime
			if v < min {
				min = v
			}
		}
		sig[i] = uint32(min)
	}
	return sig
}

// Similarity computes the Jaccard estimate between two equal-length
// signatures: the fraction of positions at which they agree. It is
// symmetric, and Similarity(x,x) == 1.0 for any non-empty text (its
// signature agrees with itself at every position).
func Similarity(a, b Signature) float64 {
	agree := 0
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
	}
	return float64(agree) / float64(len(a))
}
