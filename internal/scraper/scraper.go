// Package scraper implements the content extraction stage: it drives a
// pooled headless browser to render a page, then parses the markup into a
// normalized ScrapedContent record. Extraction never returns an error to its
// caller; terminal failures are absorbed into the record's Error field.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/wasgeurtjeNL/retail-sub002/internal/browser"
	"github.com/wasgeurtjeNL/retail-sub002/internal/logging"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// Config holds scraper tuning knobs.
type Config struct {
	// RetryDelay is the base delay for linear backoff between attempts.
	RetryDelay time.Duration
	// SettleDelay is the fixed wait after load when WaitForLoad is set.
	SettleDelay time.Duration
}

type fetchResult struct {
	html       string
	statusCode int
	redirects  int
	loadTime   time.Duration
}

// fetchFunc performs one navigation attempt. Swappable in tests.
type fetchFunc func(ctx context.Context, rawURL string, opts models.ScrapeOptions) (*fetchResult, error)

// Scraper extracts structured content from live web pages.
type Scraper struct {
	pool   *browser.Pool
	cfg    Config
	logger *slog.Logger
	fetch  fetchFunc
}

// New creates a scraper backed by the given browser pool.
func New(pool *browser.Pool, cfg Config, logger *slog.Logger) *Scraper {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scraper{
		pool:   pool,
		cfg:    cfg,
		logger: logger.With("component", "scraper"),
	}
	s.fetch = s.browserFetch
	return s
}

// Scrape fetches and parses a single page. On any failure each attempt tears
// down its browser session; after exhausting retries the returned record has
// Error set and every content field at its zero value. Scrape never panics
// and never returns an error value.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts models.ScrapeOptions) models.ScrapedContent {
	if opts == (models.ScrapeOptions{}) {
		opts = models.DefaultScrapeOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	attempts := opts.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	logger := logging.FromContext(ctx, s.logger)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := s.fetch(ctx, rawURL, opts)
		if err == nil {
			content := parsePage(rawURL, res.html, opts)
			content.Technical.LoadTimeMs = res.loadTime.Milliseconds()
			content.Technical.StatusCode = res.statusCode
			content.Technical.RedirectCount = res.redirects
			content.Timestamp = time.Now()
			logger.Info("page scraped",
				"url", rawURL,
				"attempt", attempt,
				"status", res.statusCode,
				"load_ms", content.Technical.LoadTimeMs,
			)
			return content
		}

		lastErr = err
		logger.Warn("scrape attempt failed", "url", rawURL, "attempt", attempt, "error", err)

		if attempt < attempts {
			// Linear backoff: attempt × base delay.
			select {
			case <-time.After(time.Duration(attempt) * s.cfg.RetryDelay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = attempts
			}
		}
	}

	logger.Error("extraction failed", "url", rawURL, "attempts", attempts, "error", lastErr)
	return models.ScrapedContent{
		URL:       rawURL,
		Error:     fmt.Sprintf("extraction failed after %d attempts: %v", attempts, lastErr),
		Timestamp: time.Now(),
	}
}

// browserFetch performs one rendered navigation using a pooled session. The
// session is released on success and discarded on failure so a wedged
// browser never re-enters the pool.
func (s *Scraper) browserFetch(ctx context.Context, rawURL string, opts models.ScrapeOptions) (res *fetchResult, err error) {
	sess, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire browser: %w", err)
	}
	defer func() {
		if err != nil {
			s.pool.Discard(sess)
		} else {
			s.pool.Release(sess)
		}
	}()

	page, err := browser.NewStealthPage(sess.Browser)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(opts.Timeout)

	var redirects int64
	go page.EachEvent(func(e *proto.NetworkRequestWillBeSent) {
		if e.Type == proto.NetworkResourceTypeDocument && e.RedirectResponse != nil {
			atomic.AddInt64(&redirects, 1)
		}
	})()

	var resp proto.NetworkResponseReceived
	waitResp := page.WaitEvent(&resp)

	start := time.Now()
	if err := page.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	waitResp()

	if opts.WaitForLoad {
		if err := page.WaitLoad(); err != nil {
			return nil, fmt.Errorf("wait for load: %w", err)
		}
		// Best effort network idle, then a fixed settle delay for late JS.
		_ = page.WaitIdle(s.cfg.SettleDelay)
		select {
		case <-time.After(s.cfg.SettleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("capture html: %w", err)
	}

	status := 0
	if resp.Response != nil {
		status = resp.Response.Status
	}

	return &fetchResult{
		html:       html,
		statusCode: status,
		redirects:  int(atomic.LoadInt64(&redirects)),
		loadTime:   time.Since(start),
	}, nil
}
