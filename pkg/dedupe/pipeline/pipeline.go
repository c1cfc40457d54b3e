// Package pipeline orchestrates the six-phase detection flow (spec §4.5):
// metadata acquisition, recruitment, at-most-once enrichment, the
// authoritative URL-exact pass, MinHash similarity scoring, and result
// assembly. Grounded on original_source/app/main.py's route handlers and
// enrich_metadata_from_candidates.
package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/minhash"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/normalize"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/recruiter"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/upstream"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
)

// enrichmentTitleThreshold is the minimum similarity a title-sourced
// candidate needs to be trusted for enrichment (spec §4.5 Phase 3).
const enrichmentTitleThreshold = 0.7

// Pipeline holds the shared, immutable dependencies (upstream client and
// MinHash engine) used across every request.
type Pipeline struct {
	client        upstream.Client
	engine        *minhash.Engine
	maxCandidates int
}

// New builds a Pipeline bound to an upstream client and the process-wide
// MinHash engine.
func New(client upstream.Client, engine *minhash.Engine, maxCandidates int) *Pipeline {
	return &Pipeline{client: client, engine: engine, maxCandidates: maxCandidates}
}

// Request is the caller-supplied input, already validated to be either
// node-id-based or metadata-based.
type Request struct {
	NodeID              string
	Metadata            dedupe.Metadata
	SimilarityThreshold float64
	SearchFields        []dedupe.Field
	MaxCandidates       int
}

// ByNode runs the full pipeline starting from Phase 1's node-id branch.
func (p *Pipeline) ByNode(ctx context.Context, req Request) (dedupe.DetectionResponse, error) {
	meta, ok, err := p.client.FetchMetadata(ctx, req.NodeID)
	if err != nil {
		return dedupe.DetectionResponse{}, apperr.Wrap(apperr.UpstreamFatal, "fetch source node metadata", err)
	}
	if !ok {
		return dedupe.DetectionResponse{}, apperr.Newf(apperr.NotFound, "node %s not found upstream", req.NodeID)
	}
	if meta.URL != "" {
		meta.RedirectURL = p.client.CheckRedirect(ctx, meta.URL)
		if meta.RedirectURL == meta.URL {
			meta.RedirectURL = ""
		}
	}
	req.Metadata = meta
	return p.run(ctx, req, req.NodeID)
}

// ByMetadata runs the full pipeline starting from Phase 1's metadata branch.
func (p *Pipeline) ByMetadata(ctx context.Context, req Request) (dedupe.DetectionResponse, error) {
	return p.run(ctx, req, "")
}

func (p *Pipeline) run(ctx context.Context, req Request, sourceNodeID string) (dedupe.DetectionResponse, error) {
	if !req.Metadata.Searchable() {
		return dedupe.DetectionResponse{}, apperr.New(apperr.InvalidRequest, "source metadata is not searchable")
	}

	fields := req.SearchFields
	if len(fields) == 0 {
		fields = dedupe.DefaultFields()
	}
	maxCandidates := req.MaxCandidates
	if maxCandidates <= 0 || maxCandidates > p.maxCandidates {
		maxCandidates = p.maxCandidates
	}

	source := req.Metadata

	// Phase 2 — initial recruitment.
	result, err := p.recruit(ctx, source, fields, maxCandidates)
	if err != nil {
		logger.Error("recruitment failed, every upstream query errored", "err", err)
		return dedupe.DetectionResponse{}, err
	}

	// Phase 3 — at-most-one enrichment pass.
	report, enriched := selectEnrichment(source, result.Candidates)
	if !report.Empty() {
		source = enriched
		result, err = p.recruit(ctx, source, fields, maxCandidates)
		if err != nil {
			logger.Error("re-recruitment after enrichment failed, every upstream query errored", "err", err)
			return dedupe.DetectionResponse{}, err
		}
	}

	// Phase 4 — URL-exact pass (authoritative, bypasses threshold).
	sourceNormURL := normalize.URL(source.URL)
	candidates := make([]dedupe.Candidate, len(result.Candidates))
	copy(candidates, result.Candidates)
	for i := range candidates {
		if sourceNormURL != "" && sourceNormURL == normalize.URL(candidates[i].Metadata.URL) {
			candidates[i].MatchSource = dedupe.MatchURLExact
			candidates[i].SimilarityScore = 1.0
		}
	}

	// Phase 5 — similarity scoring for everything not already url_exact.
	sourceText := scoringText(source)
	sourceSig := p.engine.Signature(sourceText)

	var duplicates []dedupe.Duplicate
	for i := range candidates {
		c := &candidates[i]
		if sourceNodeID != "" && c.NodeID == sourceNodeID {
			continue
		}
		if c.MatchSource == dedupe.MatchURLExact {
			duplicates = append(duplicates, dedupe.Duplicate{
				NodeID:          c.NodeID,
				Metadata:        c.Metadata,
				MatchSource:     c.MatchSource,
				SimilarityScore: c.SimilarityScore,
			})
			continue
		}

		candidateSig := p.engine.Signature(scoringText(c.Metadata))
		score := minhash.Similarity(sourceSig, candidateSig)
		c.SimilarityScore = score
		if score >= req.SimilarityThreshold {
			duplicates = append(duplicates, dedupe.Duplicate{
				NodeID:          c.NodeID,
				Metadata:        c.Metadata,
				MatchSource:     c.MatchSource,
				SimilarityScore: score,
			})
		}
	}

	// Back-fill each field's max_similarity now that every candidate has a
	// real score — recruitment happens before scoring, so the recruiter
	// itself can never compute this correctly (spec §3/§4.4).
	fieldStats := make([]dedupe.FieldSearchResult, len(result.FieldStats))
	copy(fieldStats, result.FieldStats)
	for i := range fieldStats {
		for _, c := range candidates {
			if c.DiscoveryField == fieldStats[i].Field && c.SimilarityScore > fieldStats[i].MaxSimilarity {
				fieldStats[i].MaxSimilarity = c.SimilarityScore
			}
		}
	}

	// Phase 6 — assembly.
	sort.Slice(duplicates, func(i, j int) bool {
		a, b := duplicates[i], duplicates[j]
		aExact, bExact := a.MatchSource == dedupe.MatchURLExact, b.MatchSource == dedupe.MatchURLExact
		if aExact != bExact {
			return aExact
		}
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		return a.NodeID < b.NodeID
	})

	resp := dedupe.DetectionResponse{
		SourceMetadata:         source,
		Threshold:              req.SimilarityThreshold,
		CandidateSearchResults: fieldStats,
		TotalCandidatesChecked: countDistinctNodes(result.Candidates),
		Duplicates:             duplicates,
	}
	if !report.Empty() {
		resp.Enrichment = &report
	}
	return resp, nil
}

func (p *Pipeline) recruit(ctx context.Context, source dedupe.Metadata, fields []dedupe.Field, maxCandidates int) (recruiter.Result, error) {
	return recruiter.Recruit(ctx, p.client, source, fields, maxCandidates)
}

// selectEnrichment implements Phase 3's selection: first any candidate
// whose URL is normalized-equal to the source's (a proxy for the
// authoritative url_exact check Phase 4 performs later), else the
// highest-similarity title-sourced candidate at or above the enrichment
// threshold. Ties break by highest similarity then lexicographically
// smallest node_id (spec §9 open question, resolved). Returns the
// (possibly unchanged) source metadata with missing fields copied in.
func selectEnrichment(source dedupe.Metadata, candidates []dedupe.Candidate) (dedupe.EnrichmentReport, dedupe.Metadata) {
	missing := missingFields(source)
	if len(missing) == 0 {
		return dedupe.EnrichmentReport{}, source
	}

	sourceNormURL := normalize.URL(source.URL)
	if sourceNormURL != "" {
		for _, c := range candidates {
			if normalize.URL(c.Metadata.URL) == sourceNormURL {
				return buildReport(c, dedupe.FieldURL, missing, source)
			}
		}
	}

	var best *dedupe.Candidate
	var bestScore float64
	engine := sharedEnrichmentEngine
	sourceTitleSig := engine.Signature(source.Title)
	for i := range candidates {
		c := &candidates[i]
		if c.DiscoveryField != dedupe.FieldTitle || c.Metadata.Title == "" {
			continue
		}
		score := minhash.Similarity(sourceTitleSig, engine.Signature(c.Metadata.Title))
		if score < enrichmentTitleThreshold {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && c.NodeID < best.NodeID) {
			best = c
			bestScore = score
		}
	}
	if best == nil {
		return dedupe.EnrichmentReport{}, source
	}
	return buildReport(*best, dedupe.FieldTitle, missing, source)
}

// sharedEnrichmentEngine backs the title-similarity comparison used only to
// pick an enrichment source; it is a distinct instance from the pipeline's
// scoring engine because enrichment selection happens before Phase 5 and
// does not need the full description-aware scoring text.
var sharedEnrichmentEngine = minhash.New()

func buildReport(c dedupe.Candidate, sourceField dedupe.Field, missing []string, source dedupe.Metadata) (dedupe.EnrichmentReport, dedupe.Metadata) {
	var added []string
	enriched := source
	for _, f := range missing {
		switch f {
		case "title":
			if c.Metadata.Title != "" {
				enriched.Title = c.Metadata.Title
				added = append(added, "title")
			}
		case "description":
			if c.Metadata.Description != "" {
				enriched.Description = c.Metadata.Description
				added = append(added, "description")
			}
		case "url":
			if c.Metadata.URL != "" {
				enriched.URL = c.Metadata.URL
				added = append(added, "url")
			}
		}
	}
	if len(added) == 0 {
		return dedupe.EnrichmentReport{}, source
	}
	return dedupe.EnrichmentReport{
		SourceNodeID: c.NodeID,
		SourceField:  sourceField,
		FieldsAdded:  added,
	}, enriched
}

func missingFields(m dedupe.Metadata) []string {
	var out []string
	if strings.TrimSpace(m.Title) == "" {
		out = append(out, "title")
	}
	if strings.TrimSpace(m.Description) == "" {
		out = append(out, "description")
	}
	if strings.TrimSpace(m.URL) == "" {
		out = append(out, "url")
	}
	return out
}

func countDistinctNodes(candidates []dedupe.Candidate) int {
	seen := map[string]bool{}
	for _, c := range candidates {
		seen[c.NodeID] = true
	}
	return len(seen)
}

// scoringText builds the comparison text for Phase 5: title concatenated
// with the first 200 characters of description.
func scoringText(m dedupe.Metadata) string {
	desc := m.Description
	if r := []rune(desc); len(r) > 200 {
		desc = string(r[:200])
	}
	return strings.TrimSpace(m.Title + " " + desc)
}
