package routes

import (
	"net/http"
	"strings"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/jurisgraph/jurisgraph/internal/server/middleware"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/pipeline"
	"github.com/jurisgraph/jurisgraph/pkg/retrieval"
)

// RetrieveHandler runs the hybrid retrieval pipeline for one query and
// returns the fused documents with provenance and source counts.
func RetrieveHandler(c echo.Context) error {
	type retrieveBody struct {
		Query       string `json:"query" validate:"required"`
		TopK        int    `json:"top_k" validate:"omitempty,min=1,max=100"`
		KGLimit     int    `json:"kg_limit" validate:"omitempty,min=1,max=500"`
		StrictMatch bool   `json:"strict_match"`
	}

	type retrieveResponse struct {
		Message      string                  `json:"message,omitempty"`
		Docs         []retrieval.Doc         `json:"docs,omitempty"`
		SourceCounts *retrieval.SourceCounts `json:"source_counts,omitempty"`
		MatchedKeys  []string                `json:"kg_matched_keys,omitempty"`
	}

	data := new(retrieveBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, retrieveResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, retrieveResponse{Message: "Invalid request body"})
	}
	if strings.TrimSpace(data.Query) == "" {
		return c.JSON(http.StatusBadRequest, retrieveResponse{Message: "query must not be empty"})
	}

	cfg := pipeline.ConfigFromEnv()
	if data.TopK > 0 {
		cfg.TopK = data.TopK
	}
	if data.KGLimit > 0 {
		cfg.KGLimit = data.KGLimit
	}
	cfg.StrictMatch = data.StrictMatch

	pipe := c.(*middleware.AppContext).App.Pipeline
	state, err := pipe.Retrieve(c.Request().Context(), data.Query, cfg)
	if err != nil {
		logger.Error("Retrieval failed", "err", err)
		return c.JSON(http.StatusInternalServerError, retrieveResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, retrieveResponse{
		Docs:         state.Docs,
		SourceCounts: &state.Result.Counts,
		MatchedKeys:  state.Resolution.MatchedKeys,
	})
}
