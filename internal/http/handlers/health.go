package handlers

import (
	"context"

	"github.com/wasgeurtjeNL/retail-sub002/internal/browser"
	"github.com/wasgeurtjeNL/retail-sub002/internal/cache"
	"github.com/wasgeurtjeNL/retail-sub002/internal/pipeline"
	"github.com/wasgeurtjeNL/retail-sub002/internal/version"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Pool    *browser.Stats         `json:"pool,omitempty"`
	Caches  map[string]cache.Stats `json:"caches,omitempty"`
}

// HealthOutput is the output wrapper for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// HealthHandler reports service, pool, and cache health.
type HealthHandler struct {
	pool     *browser.Pool
	pipeline *pipeline.Pipeline
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(pool *browser.Pool, p *pipeline.Pipeline) *HealthHandler {
	return &HealthHandler{pool: pool, pipeline: p}
}

// Handle returns the health status.
func (h *HealthHandler) Handle(ctx context.Context) *HealthResponse {
	resp := &HealthResponse{
		Status:  "healthy",
		Version: version.Get().Version,
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	if h.pipeline != nil {
		resp.Caches = h.pipeline.CacheStats()
	}
	return resp
}
