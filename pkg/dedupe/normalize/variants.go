package normalize

import (
	"regexp"
	"strings"
)

var umlautFolds = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
)

var reNonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// adjectiveEnding matches a trailing German adjective inflection on a word
// of at least 5 characters, e.g. "grundschueler" -> strip "er".
var adjectiveEnding = regexp.MustCompile(`^(.{3,})(e|er|es|en|em)$`)

// TitleVariants generates the search-recall variant set described in §4.1:
// lowercase, umlaut-folded, hyphen variants, alphanumeric-only, and
// adjective-ending-stripped forms, deduplicated, always including the
// normalized input itself.
func TitleVariants(normalizedTitle string) []string {
	if normalizedTitle == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	add(normalizedTitle)

	lower := strings.ToLower(normalizedTitle)
	add(lower)

	folded := umlautFolds.Replace(lower)
	add(folded)

	if strings.Contains(lower, "-") {
		add(strings.ReplaceAll(lower, "-", ""))
		add(strings.ReplaceAll(lower, "-", " "))
	}

	alnumOnly := collapseWhitespace(reNonAlnum.ReplaceAllString(lower, " "))
	add(alnumOnly)

	for _, word := range strings.Fields(folded) {
		if len(word) < 5 {
			continue
		}
		if m := adjectiveEnding.FindStringSubmatch(word); m != nil {
			stem := m[1]
			if len(stem) >= 3 {
				variant := strings.Replace(folded, word, stem, 1)
				add(variant)
			}
		}
	}

	return out
}

// URLSearchVariants produces the set of URL forms worth searching upstream
// with, per §12's redirect-aware supplement and the original's
// protocol/www expansion for non-YouTube hosts.
func URLSearchVariants(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	add(raw)

	lower := strings.ToLower(raw)
	rest := lower
	rest = strings.TrimPrefix(rest, "https://")
	rest = strings.TrimPrefix(rest, "http://")
	host, path, query := splitURL(rest)

	if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be") {
		for _, v := range youTubeSearchVariants(strings.TrimPrefix(host, "www."), path, query) {
			add(v)
		}
		add(lower)
		return out
	}

	baseHost := strings.TrimPrefix(host, "www.")
	wwwHost := "www." + baseHost
	trimmedPath := strings.TrimRight(path, "/")

	for _, protocol := range []string{"https://", "http://"} {
		for _, h := range []string{baseHost, wwwHost} {
			add(protocol + h + trimmedPath)
			add(protocol + h + trimmedPath + "/")
		}
	}
	add(baseHost + trimmedPath)

	return out
}

func youTubeSearchVariants(host, path, query string) []string {
	var videoID string
	switch {
	case strings.Contains(host, "youtu.be"):
		trimmed := strings.Trim(path, "/")
		if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
			trimmed = trimmed[:i]
		}
		videoID = trimmed
	case strings.Contains(path, "/watch"):
		videoID = queryParam(query, "v")
	case strings.Contains(path, "/embed/"):
		videoID = firstSubmatch(reYouTubeEmbed, path)
	case strings.Contains(path, "/v/"):
		videoID = firstSubmatch(reYouTubeLegacyV, path)
	case strings.Contains(path, "/shorts/"):
		videoID = firstSubmatch(reYouTubeShorts, path)
	case strings.Contains(path, "/live/"):
		videoID = firstSubmatch(reYouTubeLive, path)
	}

	var variants []string
	if len(videoID) == 11 {
		variants = append(variants,
			"https://www.youtube.com/watch?v="+videoID,
			"https://youtube.com/watch?v="+videoID,
			"http://www.youtube.com/watch?v="+videoID,
			"http://youtube.com/watch?v="+videoID,
			"https://youtu.be/"+videoID,
			"http://youtu.be/"+videoID,
			"https://www.youtube.com/embed/"+videoID,
			"http://www.youtube.com/embed/"+videoID,
			"https://www.youtube.com/v/"+videoID,
			"https://www.youtube.com/shorts/"+videoID,
			"https://www.youtube.com/live/"+videoID,
			"https://m.youtube.com/watch?v="+videoID,
			videoID,
		)
	}

	if listID := queryParam(query, "list"); listID != "" {
		variants = append(variants,
			"https://www.youtube.com/playlist?list="+listID,
			"https://youtube.com/playlist?list="+listID,
			listID,
		)
	}

	return variants
}
