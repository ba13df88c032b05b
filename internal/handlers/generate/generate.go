// Package generate chains the prompt-refinement and code-generation stages
// behind the /generate endpoint.
package generate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"forge-api/internal/metrics"
	"forge-api/internal/records"
	"forge-api/internal/setup"
	"forge-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type Refiner interface {
	Refine(ctx context.Context, req shared.GenerationRequest) (string, error)
}

type Coder interface {
	Generate(ctx context.Context, refinedPrompt string) (string, error)
}

type Handler struct {
	Refiner Refiner
	Coder   Coder

	// Records is optional; history is only kept when a database is configured.
	Records *records.Cache
}

// Handle runs the full request state machine: preflight short-circuit, method
// and field validation, refine, generate, respond. Stage errors bubble here
// unmodified and are mapped to a 500 exactly once.
func (h *Handler) Handle(cc echo.Context) error {
	c := cc.(*setup.Context)

	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
	default:
		return c.JSON(shared.ErrMethodNotAllowed.StatusCode, shared.GenerationResponse{
			Success: false,
			Error:   shared.ErrMethodNotAllowed.Err.Error(),
		})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Log.Warnw("Failed to read request body", "error", err)
		return c.JSON(shared.ErrInvalidRequest.StatusCode, shared.GenerationResponse{
			Success: false,
			Error:   shared.ErrInvalidRequest.Err.Error(),
		})
	}

	var req shared.GenerationRequest
	if err := json.Unmarshal(body, &req); err != nil || shared.ValidateGenerationRequest(&req) != nil {
		return c.JSON(shared.ErrMissingFields.StatusCode, shared.GenerationResponse{
			Success: false,
			Error:   shared.ErrMissingFields.Err.Error(),
		})
	}

	ctx := c.Request().Context()
	start := time.Now()

	refined, err := h.Refiner.Refine(ctx, req)
	if err != nil {
		return h.respondError(c, req, err)
	}

	code, err := h.Coder.Generate(ctx, refined)
	if err != nil {
		return h.respondError(c, req, err)
	}

	duration := time.Since(start)
	if h.Records != nil {
		h.Records.Add(&shared.GenerationRecord{
			ID:          c.Reqid,
			Language:    req.Language,
			TaskType:    req.TaskType,
			PromptChars: len(refined),
			CodeChars:   len(code),
			Duration:    duration,
			CreatedAt:   time.Now(),
		})
	}
	metrics.RequestCount.WithLabelValues(req.Language, req.TaskType, "success").Inc()
	metrics.RequestDuration.WithLabelValues(req.Language, req.TaskType).Observe(duration.Seconds())

	return c.JSON(http.StatusOK, shared.GenerationResponse{
		Success: true,
		Prompt:  refined,
		Code:    code,
	})
}

func (h *Handler) respondError(c *setup.Context, req shared.GenerationRequest, err error) error {
	message := err.Error()
	if message == "" {
		message = shared.ErrInternalServerError.Err.Error()
	}
	c.Log.Warnw("Generation failed", "language", req.Language, "task_type", req.TaskType, "error", message)
	metrics.RequestCount.WithLabelValues(req.Language, req.TaskType, "error").Inc()
	return c.JSON(shared.ErrInternalServerError.StatusCode, shared.GenerationResponse{
		Success: false,
		Error:   message,
	})
}
