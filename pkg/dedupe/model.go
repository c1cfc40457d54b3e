// Package dedupe holds the shared data model for the duplicate-detection
// domain: the record types that flow between normalization, MinHash scoring,
// upstream search, recruitment and pipeline assembly.
package dedupe

// MatchSource is the closed set of reasons a candidate was retained.
type MatchSource string

const (
	MatchURLExact    MatchSource = "url_exact"
	MatchTitle       MatchSource = "title"
	MatchDescription MatchSource = "description"
	MatchKeywords    MatchSource = "keywords"
	MatchURL         MatchSource = "url"
)

// Field is a search field name. The active field set defaults to
// {title, description, url}; keywords is opt-in.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldKeywords    Field = "keywords"
	FieldURL         Field = "url"
)

// DefaultFields is the recruiter's field set when the caller supplies none.
func DefaultFields() []Field {
	return []Field{FieldTitle, FieldDescription, FieldURL}
}

// Metadata is the four-field content record the whole pipeline revolves
// around. RedirectURL is derived, never supplied by a caller.
type Metadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	URL         string   `json:"url,omitempty"`
	RedirectURL string   `json:"redirect_url,omitempty"`
}

// Searchable reports whether at least one field is non-empty after trimming.
func (m Metadata) Searchable() bool {
	return trimmedNonEmpty(m.Title) || trimmedNonEmpty(m.Description) ||
		trimmedNonEmpty(m.URL) || len(nonEmptyKeywords(m.Keywords)) > 0
}

func nonEmptyKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if trimmedNonEmpty(k) {
			out = append(out, k)
		}
	}
	return out
}

func trimmedNonEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// Candidate is a repository node discovered during recruitment, before or
// after similarity scoring.
type Candidate struct {
	NodeID          string
	Metadata        Metadata
	MatchSource     MatchSource
	DiscoveryField  Field
	SimilarityScore float64
}

// Duplicate is a Candidate that survived Phase 5/6 of the pipeline.
type Duplicate struct {
	NodeID          string      `json:"node_id"`
	Metadata        Metadata    `json:"metadata"`
	MatchSource     MatchSource `json:"match_source"`
	SimilarityScore float64     `json:"similarity_score"`
}

// FieldSearchResult is the per-field breakdown described in spec §3 and
// enriched per §12 (original_count/normalized_count/normalized_search),
// mirroring original_source/app/models.py's CandidateStats.
type FieldSearchResult struct {
	Field            Field   `json:"field"`
	OriginalSearch   string  `json:"original_search"`
	OriginalCount    int     `json:"original_count"`
	NormalizedSearch string  `json:"normalized_search,omitempty"`
	NormalizedCount  int     `json:"normalized_count,omitempty"`
	CandidatesAdded  int     `json:"candidates_added"`
	MaxSimilarity    float64 `json:"max_similarity"`
}

// EnrichmentReport documents a Phase 3 completion of missing source fields.
type EnrichmentReport struct {
	SourceNodeID string   `json:"source_node_id"`
	SourceField  Field    `json:"source_field"`
	FieldsAdded  []string `json:"fields_added"`
}

// Empty reports whether no enrichment took place.
func (e *EnrichmentReport) Empty() bool {
	return e == nil || e.SourceNodeID == ""
}

// DetectionResponse is the full result of one detection request.
type DetectionResponse struct {
	SourceMetadata         Metadata            `json:"source_metadata"`
	Threshold              float64             `json:"threshold"`
	Enrichment             *EnrichmentReport   `json:"enrichment,omitempty"`
	CandidateSearchResults []FieldSearchResult `json:"candidate_search_results"`
	TotalCandidatesChecked int                 `json:"total_candidates_checked"`
	Duplicates             []Duplicate         `json:"duplicates"`
}
