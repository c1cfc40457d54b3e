package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/pipeline"
	"github.com/labstack/echo/v4"
)

// DetectByNodeHandler implements POST /detect/hash/by-node (spec §6). The
// by-node path is never cached: the source metadata itself has to be
// fetched from upstream regardless, so a cache lookup keyed on node_id
// alone would not save the trip.
func DetectByNodeHandler(c echo.Context) error {
	var req DetectByNodeRequest
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

	ctx, cancel := withRequestDeadline(c)
	defer cancel()

	resp, err := app.Pipeline.ByNode(ctx, pipeline.Request{
		NodeID:              req.NodeID,
		SimilarityThreshold: req.threshold(),
		SearchFields:        fields,
		MaxCandidates:       req.MaxCandidates,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
