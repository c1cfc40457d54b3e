// Package recruiter translates a source metadata record into a merged,
// deduplicated candidate set via bounded-parallel upstream searches,
// grounded on original_source/app/wlo_client.py's search_candidates and
// _deduplicate_candidates and spec.md §4.4.
package recruiter

import (
	"context"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/normalize"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/upstream"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// maxWorkers bounds concurrent in-flight upstream queries per detection
// request, matching spec §4.4/§5's "bounded worker pool of 10".
const maxWorkers = 10

// Result is the recruiter's output: the merged candidate set and the
// per-field search-result breakdown.
type Result struct {
	Candidates []dedupe.Candidate
	FieldStats []dedupe.FieldSearchResult
}

type query struct {
	field      dedupe.Field
	value      string
	normalized bool
}

// Recruit runs every applicable field query concurrently (bounded to
// maxWorkers), merges hits into a node_id-keyed candidate set with
// first-discovery-wins semantics, and computes per-field statistics
// against the recruiter's own final contribution.
func Recruit(
	ctx context.Context,
	client upstream.Client,
	source dedupe.Metadata,
	fields []dedupe.Field,
	maxCandidates int,
) (Result, error) {
	active := activeFieldSet(fields)

	byField := map[dedupe.Field][]query{}
	if active[dedupe.FieldTitle] && valid(source.Title) {
		byField[dedupe.FieldTitle] = titleQueries(source.Title)
	}
	if active[dedupe.FieldDescription] && valid(source.Description) {
		byField[dedupe.FieldDescription] = []query{{dedupe.FieldDescription, firstNChars(source.Description, 100), false}}
	}
	if active[dedupe.FieldKeywords] && len(validKeywords(source.Keywords)) > 0 {
		byField[dedupe.FieldKeywords] = []query{{dedupe.FieldKeywords, strings.Join(validKeywords(source.Keywords), " "), false}}
	}
	if active[dedupe.FieldURL] && valid(source.URL) {
		byField[dedupe.FieldURL] = urlQueries(source.URL, source.RedirectURL)
	}

	// Queries run concurrently, but "first discovery wins" is defined over
	// a fixed field/query order (spec §4.4), not completion order — so
	// results are collected per query index and merged in that order once
	// every query has returned.
	var queries []query
	queryRange := map[dedupe.Field][2]int{}
	for _, f := range []dedupe.Field{dedupe.FieldTitle, dedupe.FieldDescription, dedupe.FieldKeywords, dedupe.FieldURL} {
		start := len(queries)
		queries = append(queries, byField[f]...)
		queryRange[f] = [2]int{start, len(queries)}
	}

	results := make([][]upstream.SearchHit, len(queries))
	queryErrs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, err := client.Search(gctx, q.field, q.value, maxCandidates)
			if err != nil {
				logger.Debug("recruiter query failed, treating as empty", "field", q.field, "err", err)
				queryErrs[i] = err
				return nil
			}
			results[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	// spec §7/§4.5: a total upstream outage (every launched query failed) is
	// UPSTREAM_FATAL, distinct from a genuinely empty candidate set — the
	// caller must not read this as "zero duplicates found".
	if failed, lastErr := countFailures(queryErrs); len(queries) > 0 && failed == len(queries) {
		return Result{}, apperr.Wrap(apperr.UpstreamFatal, "all upstream search queries failed", lastErr)
	}

	merged := map[string]*dedupe.Candidate{}
	order := []string{}
	perField := map[dedupe.Field]map[string]bool{}
	for f := range byField {
		perField[f] = map[string]bool{}
	}

	for i, q := range queries {
		for _, h := range results[i] {
			id := h.NodeID
			if _, ok := merged[id]; ok {
				perField[q.field][id] = true
				continue
			}
			merged[id] = &dedupe.Candidate{
				NodeID:         id,
				Metadata:       h.Metadata,
				MatchSource:    dedupe.MatchSource(q.field),
				DiscoveryField: q.field,
			}
			order = append(order, id)
			perField[q.field][id] = true
		}
	}

	candidates := make([]dedupe.Candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, *merged[id])
	}

	stats := make([]dedupe.FieldSearchResult, 0, len(byField))
	for field, qs := range byField {
		lo, hi := queryRange[field][0], queryRange[field][1]
		stats = append(stats, fieldStats(field, qs, results[lo:hi], perField[field]))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Field < stats[j].Field })

	return Result{Candidates: candidates, FieldStats: stats}, nil
}

// countFailures reports how many queries errored and the last error seen,
// in query order, to use as the representative cause when every query fails.
func countFailures(errs []error) (int, error) {
	var failed int
	var lastErr error
	for _, err := range errs {
		if err != nil {
			failed++
			lastErr = err
		}
	}
	return failed, lastErr
}

// fieldStats summarizes one field's query set: qs[0] is always the original,
// unnormalized query, and hits[0] its raw (undeduplicated) hit count.
// Every subsequent entry is a normalized or variant query; their hit counts
// are summed into NormalizedCount, since several variants (hyphen forms,
// umlaut folds, YouTube ID forms, ...) can each independently contribute
// hits. MaxSimilarity is left at its zero value here — no candidate has been
// scored yet at recruitment time — and is back-filled by the pipeline after
// Phase 5 similarity scoring.
func fieldStats(field dedupe.Field, qs []query, hits [][]upstream.SearchHit, ids map[string]bool) dedupe.FieldSearchResult {
	res := dedupe.FieldSearchResult{
		Field:           field,
		OriginalSearch:  qs[0].value,
		OriginalCount:   len(hits[0]),
		CandidatesAdded: len(ids),
	}
	if len(qs) > 1 {
		res.NormalizedSearch = qs[len(qs)-1].value
		for _, h := range hits[1:] {
			res.NormalizedCount += len(h)
		}
	}
	return res
}

func activeFieldSet(fields []dedupe.Field) map[dedupe.Field]bool {
	set := map[dedupe.Field]bool{}
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// titleQueries builds the original title, normalized title, and every §4.1
// variant, deduplicated case-insensitively.
func titleQueries(title string) []query {
	seen := map[string]bool{}
	var out []query
	add := func(v string, normalized bool) {
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, query{dedupe.FieldTitle, v, normalized})
	}

	add(title, false)
	normalizedTitle := normalize.Title(title)
	if normalizedTitle != "" {
		add(normalizedTitle, true)
	}
	for _, v := range normalize.TitleVariants(normalizedTitle) {
		add(v, true)
	}
	return out
}

// urlQueries builds the original URL, redirect URL (if distinct), the
// normalized URL, and the protocol/www/YouTube-form search variants, per
// §4.4 and the §12 redirect-aware supplement.
func urlQueries(url, redirectURL string) []query {
	seen := map[string]bool{}
	var out []query
	add := func(v string, normalized bool) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, query{dedupe.FieldURL, v, normalized})
	}

	add(url, false)
	if redirectURL != "" && redirectURL != url {
		add(redirectURL, false)
	}
	normalizedURL := normalize.URL(url)
	if normalizedURL != "" && normalizedURL != url {
		add(normalizedURL, true)
	}
	for _, v := range normalize.URLSearchVariants(url) {
		add(v, true)
	}
	return out
}

func firstNChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func valid(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	return trimmed != "" && trimmed != "string"
}

func validKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if valid(k) {
			out = append(out, k)
		}
	}
	return out
}
