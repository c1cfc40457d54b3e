package normalize

import (
	"regexp"
	"strings"
)

// publisherTokens is the known list of publisher/site names that, when they
// follow a separator, mark a trailing suffix to strip from a title.
var publisherTokens = []string{
	"Wikipedia",
	"Klexikon",
	"Wikibooks",
	"Wikiversity",
	"planet-schule",
	"Planet Schule",
	"Lehrer-Online",
	"Lernhelfer",
	"sofatutor",
	"learningapps",
	"serlo",
}

var titleSuffixPattern = buildTitleSuffixPattern()

func buildTitleSuffixPattern() *regexp.Regexp {
	escaped := make([]string, len(publisherTokens))
	for i, tok := range publisherTokens {
		escaped[i] = regexp.QuoteMeta(tok)
	}
	// separators: " - ", " | ", " :: ", " (" followed by a publisher token,
	// optionally closed by ")", extending to end of string.
	pattern := `(?i)\s*(?:-|\||::|\()\s*(?:` + strings.Join(escaped, "|") + `)[^)]*\)?\s*$`
	return regexp.MustCompile(pattern)
}

// Title strips a known publisher suffix, collapses whitespace, folds "&" to
// a space, and trims. It is idempotent: Title(Title(x)) == Title(x).
func Title(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}

	for {
		stripped := titleSuffixPattern.ReplaceAllString(t, "")
		if stripped == t {
			break
		}
		t = stripped
	}

	t = strings.ReplaceAll(t, "&", " ")
	t = collapseWhitespace(t)
	return strings.TrimSpace(t)
}

var reWhitespace = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return reWhitespace.ReplaceAllString(s, " ")
}
