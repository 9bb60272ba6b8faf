// Package pipeline composes the website analysis flow: validate the URL,
// extract content through the browser stage, analyze it into a business
// profile, and cache every expensive intermediate. Each URL's run is
// independent and safe to invoke concurrently.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/wasgeurtjeNL/retail-sub002/internal/cache"
	"github.com/wasgeurtjeNL/retail-sub002/internal/config"
	"github.com/wasgeurtjeNL/retail-sub002/internal/logging"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
	"github.com/wasgeurtjeNL/retail-sub002/internal/validation"
)

// ContentScraper is the extraction stage consumed by the pipeline.
type ContentScraper interface {
	Scrape(ctx context.Context, rawURL string, opts models.ScrapeOptions) models.ScrapedContent
}

// BusinessAnalyzer is the analysis stage consumed by the pipeline.
type BusinessAnalyzer interface {
	Analyze(ctx context.Context, content models.ScrapedContent, opts models.AnalyzeOptions) models.BusinessAnalysis
}

// Options bundles the per-stage options for one pipeline run.
type Options struct {
	Scrape  models.ScrapeOptions  `json:"scrape"`
	Analyze models.AnalyzeOptions `json:"analyze"`
}

// Pipeline wires the stages together with one cache per stage.
type Pipeline struct {
	validator *validation.Validator
	scraper   ContentScraper
	analyzer  BusinessAnalyzer

	contentCache  *cache.Cache[models.ScrapedContent]
	analysisCache *cache.Cache[models.BusinessAnalysis]
	resultCache   *cache.Cache[models.WebsiteAnalysis]

	logger *slog.Logger
}

// New builds a pipeline with stage caches sized and aged from cfg.
func New(validator *validation.Validator, scraper ContentScraper, analyzer BusinessAnalyzer, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	mk := func(name string, ttl time.Duration) cache.Config {
		return cache.Config{
			Name:          name,
			MaxEntries:    cfg.CacheMaxEntries,
			MaxBytes:      cfg.CacheMaxBytes,
			DefaultTTL:    ttl,
			SweepInterval: cfg.CacheSweep,
			Logger:        logger,
		}
	}
	return &Pipeline{
		validator:     validator,
		scraper:       scraper,
		analyzer:      analyzer,
		contentCache:  cache.New[models.ScrapedContent](mk("content", cfg.ContentCacheTTL)),
		analysisCache: cache.New[models.BusinessAnalysis](mk("analysis", cfg.AnalysisCacheTTL)),
		resultCache:   cache.New[models.WebsiteAnalysis](mk("result", cfg.ResultCacheTTL)),
		logger:        logger.With("component", "pipeline"),
	}
}

// Run executes the full flow for one URL. The only error it returns is a
// *validation.ValidationError for disallowed URLs; extraction and analysis
// failures are absorbed into the result per the stage contracts.
func (p *Pipeline) Run(ctx context.Context, rawURL string, opts Options) (models.WebsiteAnalysis, error) {
	logger := logging.FromContext(ctx, p.logger)

	if err := p.validator.Validate(rawURL); err != nil {
		logger.Warn("url rejected", "url", rawURL, "error", err)
		return models.WebsiteAnalysis{}, err
	}

	if result, ok := p.resultCache.Get(rawURL, opts); ok {
		logger.Debug("result cache hit", "url", rawURL)
		return result, nil
	}

	content, contentCached := p.contentCache.Get(rawURL, opts.Scrape)
	if !contentCached {
		content = p.scraper.Scrape(ctx, rawURL, opts.Scrape)
		if !content.Failed() {
			p.contentCache.Set(rawURL, content, opts.Scrape, 0)
		}
	}

	analysis, analysisCached := p.analysisCache.Get(rawURL, opts.Analyze)
	if !analysisCached {
		analysis = p.analyzer.Analyze(ctx, content, opts.Analyze)
		if !content.Failed() {
			p.analysisCache.Set(rawURL, analysis, opts.Analyze, 0)
		}
	}

	result := models.WebsiteAnalysis{
		Scraped:  content,
		Analysis: analysis,
		CachedAt: time.Now(),
	}
	// Errored extractions are never cached; the next run retries the site.
	if !content.Failed() {
		p.resultCache.Set(rawURL, result, opts, 0)
	}
	return result, nil
}

// StartCleanup runs the background expiry sweeps for all stage caches until
// ctx is cancelled.
func (p *Pipeline) StartCleanup(ctx context.Context) {
	go p.contentCache.StartCleanup(ctx)
	go p.analysisCache.StartCleanup(ctx)
	go p.resultCache.StartCleanup(ctx)
}

// CacheStats returns per-stage cache statistics keyed by stage name.
func (p *Pipeline) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"content":  p.contentCache.Stats(),
		"analysis": p.analysisCache.Stats(),
		"result":   p.resultCache.Stats(),
	}
}
