// Package handlers provides HTTP handlers for the site analysis API.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wasgeurtjeNL/retail-sub002/internal/logging"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
	"github.com/wasgeurtjeNL/retail-sub002/internal/pipeline"
	"github.com/wasgeurtjeNL/retail-sub002/internal/validation"
)

// AnalyzeRequest is the analyze endpoint body.
type AnalyzeRequest struct {
	URL     string                `json:"url" example:"https://www.example.nl" doc:"Website to analyze"`
	Scrape  models.ScrapeOptions  `json:"scrape,omitempty" doc:"Extraction options"`
	Analyze models.AnalyzeOptions `json:"analyze,omitempty" doc:"Analysis options"`
}

// AnalyzeInput wraps AnalyzeRequest for Huma.
type AnalyzeInput struct {
	Body AnalyzeRequest
}

// AnalyzeOutput wraps the composed result for Huma.
type AnalyzeOutput struct {
	Body models.WebsiteAnalysis
}

// AnalyzeHandler runs the analysis pipeline for one URL.
type AnalyzeHandler struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(p *pipeline.Pipeline, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: p, logger: logger}
}

// Handle validates and analyzes the requested URL. Rejected URLs map to
// 422; everything else returns a structurally valid result, with degraded
// quality signaled through the error and confidence fields.
func (h *AnalyzeHandler) Handle(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error) {
	logger := logging.FromContext(ctx, h.logger)

	start := time.Now()
	result, err := h.pipeline.Run(ctx, input.Body.URL, pipeline.Options{
		Scrape:  input.Body.Scrape,
		Analyze: input.Body.Analyze,
	})
	if err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			return nil, huma.Error422UnprocessableEntity(vErr.Reason)
		}
		return nil, huma.Error500InternalServerError("analysis failed")
	}

	logger.Info("analyze request served",
		"url", input.Body.URL,
		"confidence", result.Analysis.ConfidenceScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &AnalyzeOutput{Body: result}, nil
}
