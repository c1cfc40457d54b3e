// Package routes holds the Echo handlers for the detection and admin
// endpoints, grounded on the teacher's internal/server/routes handler
// style (bind, validate, call into the domain, return JSON).
package routes

import (
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
)

// defaultSimilarityThreshold is spec §4.5's documented default.
const defaultSimilarityThreshold = 0.9

// MetadataDTO is the wire shape of a caller-supplied metadata record.
type MetadataDTO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	URL         string   `json:"url,omitempty"`
}

func (m MetadataDTO) toDomain() dedupe.Metadata {
	return dedupe.Metadata{
		Title:       m.Title,
		Description: m.Description,
		Keywords:    m.Keywords,
		URL:         m.URL,
	}
}

// DetectByNodeRequest is the body of POST /detect/hash/by-node.
type DetectByNodeRequest struct {
	NodeID              string   `json:"node_id" validate:"required"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty" validate:"omitempty,min=0,max=1"`
	SearchFields        []string `json:"search_fields,omitempty" validate:"omitempty,dive,oneof=title description keywords url"`
	MaxCandidates       int      `json:"max_candidates,omitempty" validate:"omitempty,min=1"`
}

// DetectByMetadataRequest is the body of POST /detect/hash/by-metadata.
type DetectByMetadataRequest struct {
	Metadata            MetadataDTO `json:"metadata" validate:"required"`
	SimilarityThreshold *float64    `json:"similarity_threshold,omitempty" validate:"omitempty,min=0,max=1"`
	SearchFields        []string    `json:"search_fields,omitempty" validate:"omitempty,dive,oneof=title description keywords url"`
	MaxCandidates       int         `json:"max_candidates,omitempty" validate:"omitempty,min=1"`
}

func (r DetectByNodeRequest) threshold() float64 {
	if r.SimilarityThreshold != nil {
		return *r.SimilarityThreshold
	}
	return defaultSimilarityThreshold
}

func (r DetectByMetadataRequest) threshold() float64 {
	if r.SimilarityThreshold != nil {
		return *r.SimilarityThreshold
	}
	return defaultSimilarityThreshold
}

func parseFields(raw []string) ([]dedupe.Field, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]dedupe.Field, 0, len(raw))
	for _, f := range raw {
		switch dedupe.Field(strings.ToLower(f)) {
		case dedupe.FieldTitle, dedupe.FieldDescription, dedupe.FieldKeywords, dedupe.FieldURL:
			out = append(out, dedupe.Field(strings.ToLower(f)))
		default:
			return nil, apperr.Newf(apperr.InvalidRequest, "unknown search field %q", f)
		}
	}
	return out, nil
}
