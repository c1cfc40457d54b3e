// Package upstream abstracts the learning-object repository's REST API:
// node-metadata fetch, field-scoped paginated search, and best-effort
// redirect resolution. It is grounded on original_source/app/wlo_client.py.
package upstream

import (
	"context"

	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
)

// SearchHit is one result row from a field-scoped search.
type SearchHit struct {
	NodeID   string
	Metadata dedupe.Metadata
}

// Client is the upstream repository's search/metadata surface. The pipeline
// and recruiter depend only on this interface, never on the HTTP
// implementation, so tests can substitute a fake.
type Client interface {
	// FetchMetadata retrieves a node's content metadata. ok is false when
	// the upstream reports the node unknown (HTTP 404-equivalent).
	FetchMetadata(ctx context.Context, nodeID string) (meta dedupe.Metadata, ok bool, err error)

	// Search runs one field-scoped query, transparently paginating in
	// pages of 100 when maxResults exceeds a single page.
	Search(ctx context.Context, field dedupe.Field, query string, maxResults int) ([]SearchHit, error)

	// CheckRedirect returns the final URL after following redirects, or
	// the original URL on any failure. It must respect ctx's deadline and
	// never block the pipeline beyond it.
	CheckRedirect(ctx context.Context, rawURL string) string
}
