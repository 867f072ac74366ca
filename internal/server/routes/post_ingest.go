package routes

import (
	"encoding/json"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jurisgraph/jurisgraph/internal/queue"
	"github.com/jurisgraph/jurisgraph/internal/server/middleware"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
)

// IngestHandler enqueues an ingestion job for an extractor JSONL artifact.
// The worker performs the actual graph and embedding writes.
func IngestHandler(c echo.Context) error {
	type ingestBody struct {
		Path string `json:"path" validate:"required"`
	}

	type ingestResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation id", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	job := queue.IngestJobMsg{
		Message:       "Ingest requested",
		Path:          data.Path,
		CorrelationID: correlationID,
	}
	body, err := json.Marshal(job)
	if err != nil {
		logger.Error("Failed to marshal ingest job", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.IngestQueue, body); err != nil {
		logger.Error("Failed to publish ingest job", "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
	}

	logger.Info("Queued ingest job", "path", data.Path, "correlation_id", correlationID)
	return c.JSON(http.StatusAccepted, ingestResponse{
		Message:       "Queued",
		CorrelationID: correlationID,
	})
}
