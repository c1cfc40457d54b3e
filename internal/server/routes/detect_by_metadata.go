package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/cache"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/pipeline"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
	"github.com/labstack/echo/v4"
)

// DetectByMetadataHandler implements POST /detect/hash/by-metadata,
// following spec §9's validate -> rate-limit -> cache-lookup -> handle ->
// cache-store order and §4.6's write-through-on-success-only cache policy.
func DetectByMetadataHandler(c echo.Context) error {
	var req DetectByMetadataRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.InvalidRequest, "malformed request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return apperr.Wrap(apperr.InvalidRequest, "invalid request", err)
	}

	fields, err := parseFields(req.SearchFields)
	if err != nil {
		return err
	}

	app := appFrom(c)
	if err := checkRateLimit(c, app); err != nil {
		return err
	}

	source := req.Metadata.toDomain()
	threshold := req.threshold()
	effectiveFields := fields
	if len(effectiveFields) == 0 {
		effectiveFields = dedupe.DefaultFields()
	}
	maxCandidates := req.MaxCandidates
	if maxCandidates <= 0 || maxCandidates > app.Config.MaxCandidates {
		maxCandidates = app.Config.MaxCandidates
	}

	key := cache.Key(source, threshold, effectiveFields, maxCandidates)
	if cached, ok := app.Cache.Get(key); ok {
		logger.Debug("detection cache hit", "key", key)
		return c.JSON(http.StatusOK, cached)
	}

	ctx, cancel := withRequestDeadline(c)
	defer cancel()

	resp, err := app.Pipeline.ByMetadata(ctx, pipeline.Request{
		Metadata:            source,
		SimilarityThreshold: threshold,
		SearchFields:        fields,
		MaxCandidates:       req.MaxCandidates,
	})
	if err != nil {
		return err
	}

	app.Cache.Set(key, resp)
	return c.JSON(http.StatusOK, resp)
}
