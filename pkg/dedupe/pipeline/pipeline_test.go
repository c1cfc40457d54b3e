package pipeline

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/minhash"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/upstream"
)

type searchFunc func(field dedupe.Field, query string, maxResults int) []upstream.SearchHit

type fakeClient struct {
	search         searchFunc
	searchErr      error
	searchCalls    int
	lastMaxResults int
}

func (f *fakeClient) FetchMetadata(ctx context.Context, nodeID string) (dedupe.Metadata, bool, error) {
	return dedupe.Metadata{}, false, nil
}

func (f *fakeClient) Search(ctx context.Context, field dedupe.Field, query string, maxResults int) ([]upstream.SearchHit, error) {
	f.searchCalls++
	f.lastMaxResults = maxResults
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.search == nil {
		return nil, nil
	}
	return f.search(field, query, maxResults), nil
}

func (f *fakeClient) CheckRedirect(ctx context.Context, rawURL string) string {
	return rawURL
}

// Scenario (a): a url_exact hit is retained even when the caller's
// similarity threshold is too high for any title/description match to pass.
func TestPipeline_URLExactOverridesThreshold(t *testing.T) {
	client := &fakeClient{
		search: func(field dedupe.Field, query string, maxResults int) []upstream.SearchHit {
			if field != dedupe.FieldURL {
				return nil
			}
			return []upstream.SearchHit{{
				NodeID: "node-b",
				Metadata: dedupe.Metadata{
					Title: "Something Entirely Unrelated",
					URL:   "https://example.com/page",
				},
			}}
		},
	}

	p := New(client, minhash.New(), 40)
	resp, err := p.ByMetadata(context.Background(), Request{
		Metadata: dedupe.Metadata{
			Title: "Photosynthesis in Plants",
			URL:   "https://example.com/page/",
		},
		SimilarityThreshold: 0.99,
		SearchFields:        []dedupe.Field{dedupe.FieldURL},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate via url_exact override, got %d: %+v", len(resp.Duplicates), resp.Duplicates)
	}
	dup := resp.Duplicates[0]
	if dup.MatchSource != dedupe.MatchURLExact {
		t.Fatalf("expected match_source url_exact, got %q", dup.MatchSource)
	}
	if dup.SimilarityScore != 1.0 {
		t.Fatalf("expected similarity_score 1.0 for url_exact, got %v", dup.SimilarityScore)
	}
}

// Scenario (b): a candidate only discoverable through a normalized-title
// variant search is still scored on its full content and retained.
func TestPipeline_TitleVariantCandidateRetained(t *testing.T) {
	client := &fakeClient{
		search: func(field dedupe.Field, query string, maxResults int) []upstream.SearchHit {
			if field != dedupe.FieldTitle || query != "Photosynthesis in Plants" {
				return nil
			}
			return []upstream.SearchHit{{
				NodeID: "node-c",
				Metadata: dedupe.Metadata{
					Title:       "Photosynthesis in Plants",
					Description: "How plants convert sunlight into chemical energy",
				},
			}}
		},
	}

	p := New(client, minhash.New(), 40)
	resp, err := p.ByMetadata(context.Background(), Request{
		Metadata: dedupe.Metadata{
			Title:       "Photosynthesis in Plants - Wikipedia",
			Description: "How plants convert sunlight into chemical energy",
		},
		SimilarityThreshold: 0.5,
		SearchFields:        []dedupe.Field{dedupe.FieldTitle},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Duplicates) != 1 {
		t.Fatalf("expected the variant-discovered candidate to be retained, got %d duplicates: %+v", len(resp.Duplicates), resp.Duplicates)
	}
	if resp.Duplicates[0].NodeID != "node-c" {
		t.Fatalf("expected node-c, got %q", resp.Duplicates[0].NodeID)
	}
}

// Scenario (b.1): the title field's candidate_search_results entry reports
// the real post-scoring similarity, not the recruitment-time zero value.
func TestPipeline_FieldStatsBackfilledWithMaxSimilarity(t *testing.T) {
	client := &fakeClient{
		search: func(field dedupe.Field, query string, maxResults int) []upstream.SearchHit {
			if field != dedupe.FieldTitle || query != "Photosynthesis in Plants" {
				return nil
			}
			return []upstream.SearchHit{{
				NodeID: "node-c",
				Metadata: dedupe.Metadata{
					Title:       "Photosynthesis in Plants",
					Description: "How plants convert sunlight into chemical energy",
				},
			}}
		},
	}

	p := New(client, minhash.New(), 40)
	resp, err := p.ByMetadata(context.Background(), Request{
		Metadata: dedupe.Metadata{
			Title:       "Photosynthesis in Plants - Wikipedia",
			Description: "How plants convert sunlight into chemical energy",
		},
		SimilarityThreshold: 0.5,
		SearchFields:        []dedupe.Field{dedupe.FieldTitle},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.CandidateSearchResults) != 1 {
		t.Fatalf("expected 1 field stat, got %d", len(resp.CandidateSearchResults))
	}
	stat := resp.CandidateSearchResults[0]
	if stat.MaxSimilarity <= 0 {
		t.Fatalf("expected max_similarity backfilled from Phase 5 scoring, got %v", stat.MaxSimilarity)
	}
	if len(resp.Duplicates) != 1 || resp.Duplicates[0].SimilarityScore != stat.MaxSimilarity {
		t.Fatalf("expected field max_similarity to match the sole duplicate's score: field=%v duplicate=%+v", stat.MaxSimilarity, resp.Duplicates)
	}
}

// Scenario (c): a source missing description/url gets enriched from a
// strongly title-matching candidate, and the pipeline re-recruits once
// using the enriched metadata.
func TestPipeline_EnrichmentTriggersSecondRecruitment(t *testing.T) {
	client := &fakeClient{
		search: func(field dedupe.Field, query string, maxResults int) []upstream.SearchHit {
			if field == dedupe.FieldTitle {
				return []upstream.SearchHit{{
					NodeID: "node-e",
					Metadata: dedupe.Metadata{
						Title:       "Cell Division",
						Description: "Mitosis and meiosis explained",
						URL:         "https://example.com/cell-division",
					},
				}}
			}
			return nil
		},
	}

	p := New(client, minhash.New(), 40)
	resp, err := p.ByMetadata(context.Background(), Request{
		Metadata:            dedupe.Metadata{Title: "Cell Division"},
		SimilarityThreshold: 0.99,
		SearchFields:        dedupe.DefaultFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Enrichment == nil {
		t.Fatalf("expected enrichment to have occurred")
	}
	if resp.Enrichment.SourceNodeID != "node-e" {
		t.Fatalf("expected enrichment source node-e, got %q", resp.Enrichment.SourceNodeID)
	}
	if len(resp.Enrichment.FieldsAdded) != 2 {
		t.Fatalf("expected description and url added, got %+v", resp.Enrichment.FieldsAdded)
	}
	if resp.SourceMetadata.Description == "" || resp.SourceMetadata.URL == "" {
		t.Fatalf("expected enriched source metadata to carry the borrowed fields: %+v", resp.SourceMetadata)
	}
	// One recruitment pass searches title only (no description/url yet);
	// the enriched pass searches all three default fields, so the client
	// must have been queried more than once overall.
	if client.searchCalls < 2 {
		t.Fatalf("expected at least a second recruitment pass after enrichment, got %d search calls", client.searchCalls)
	}
}

// Scenario (d): a caller-requested max_candidates above the pipeline's
// ceiling is clamped rather than passed straight through to the upstream
// client.
func TestPipeline_MaxCandidatesClampedToCeiling(t *testing.T) {
	client := &fakeClient{}
	p := New(client, minhash.New(), 5)

	_, err := p.ByMetadata(context.Background(), Request{
		Metadata:            dedupe.Metadata{Title: "Anything Searchable"},
		SimilarityThreshold: 0.5,
		SearchFields:        []dedupe.Field{dedupe.FieldTitle},
		MaxCandidates:       1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastMaxResults != 5 {
		t.Fatalf("expected max_candidates clamped to pipeline ceiling 5, got %d", client.lastMaxResults)
	}
}

// Scenario (e): a total upstream outage (every launched query errors) is
// surfaced as UPSTREAM_FATAL rather than read as "zero duplicates found".
func TestPipeline_TotalUpstreamOutageIsFatal(t *testing.T) {
	client := &fakeClient{searchErr: apperr.New(apperr.UpstreamTransient, "upstream unreachable")}
	p := New(client, minhash.New(), 40)

	_, err := p.ByMetadata(context.Background(), Request{
		Metadata:            dedupe.Metadata{Title: "Anything Searchable"},
		SimilarityThreshold: 0.5,
		SearchFields:        []dedupe.Field{dedupe.FieldTitle},
	})
	if err == nil {
		t.Fatalf("expected an error when every upstream query fails")
	}
	if apperr.As(err) != apperr.UpstreamFatal {
		t.Fatalf("expected apperr.UpstreamFatal, got %v", apperr.As(err))
	}
}

func TestPipeline_UnsearchableMetadataRejected(t *testing.T) {
	p := New(&fakeClient{}, minhash.New(), 40)
	_, err := p.ByMetadata(context.Background(), Request{
		Metadata:            dedupe.Metadata{},
		SimilarityThreshold: 0.5,
	})
	if err == nil {
		t.Fatalf("expected an error for unsearchable source metadata")
	}
}
