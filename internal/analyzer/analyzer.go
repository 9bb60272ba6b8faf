// Package analyzer turns extracted website content into a validated,
// bounded business profile. It calls the LLM completion service for the
// qualitative fields and falls back to deterministic heuristics whenever the
// service is unavailable or its output is malformed; a call always ends in a
// structurally valid BusinessAnalysis.
package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/wasgeurtjeNL/retail-sub002/internal/llm"
	"github.com/wasgeurtjeNL/retail-sub002/internal/logging"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// Analyzer orchestrates prompt construction, the completion call, response
// validation, and the heuristic fallback.
type Analyzer struct {
	client llm.Client
	logger *slog.Logger
}

// New creates an analyzer backed by the given completion client.
func New(client llm.Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		client: client,
		logger: logger.With("component", "analyzer"),
	}
}

// Analyze produces a business profile for the extracted content. Service
// errors and malformed model output are absorbed into the heuristic fallback
// path; Analyze never returns an error. The confidence score is computed
// deterministically from the extracted evidence on the parsed path, so the
// model's own arithmetic is never authoritative.
func (a *Analyzer) Analyze(ctx context.Context, content models.ScrapedContent, opts models.AnalyzeOptions) models.BusinessAnalysis {
	start := time.Now()
	if opts == (models.AnalyzeOptions{}) {
		opts = models.DefaultAnalyzeOptions()
	}

	logger := logging.FromContext(ctx, a.logger)

	var analysis models.BusinessAnalysis
	switch {
	case content.Failed():
		// No content to reason over; a completion call would only burn
		// tokens on placeholders.
		logger.Warn("analyzing failed extraction heuristically", "url", content.URL, "scrape_error", content.Error)
		analysis = FallbackAnalysis(content, opts)
	default:
		raw, err := a.client.Complete(ctx, llm.CompletionRequest{
			System:      systemPrompt(opts),
			User:        userPrompt(content),
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		})
		if err != nil {
			logger.Warn("completion failed, using heuristic fallback", "url", content.URL, "error", err)
			analysis = FallbackAnalysis(content, opts)
			break
		}
		parsed, perr := parseAnalysis(raw)
		if perr != nil {
			logger.Warn("unusable model output, using heuristic fallback", "url", content.URL, "error", perr)
			analysis = FallbackAnalysis(content, opts)
			break
		}
		analysis = parsed
		analysis.ConfidenceScore = ComputeConfidence(content)
	}

	analysis.URL = content.URL
	analysis.Timestamp = time.Now()
	analysis.ProcessingTimeMs = time.Since(start).Milliseconds()
	sanitize(&analysis)

	logger.Info("analysis complete",
		"url", content.URL,
		"business_type", analysis.BusinessType,
		"confidence", analysis.ConfidenceScore,
		"duration_ms", analysis.ProcessingTimeMs,
	)
	return analysis
}
