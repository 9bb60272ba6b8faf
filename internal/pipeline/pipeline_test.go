package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wasgeurtjeNL/retail-sub002/internal/config"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
	"github.com/wasgeurtjeNL/retail-sub002/internal/validation"
)

type fakeScraper struct {
	calls  int
	result models.ScrapedContent
}

func (f *fakeScraper) Scrape(ctx context.Context, rawURL string, opts models.ScrapeOptions) models.ScrapedContent {
	f.calls++
	r := f.result
	r.URL = rawURL
	return r
}

type fakeAnalyzer struct {
	calls  int
	result models.BusinessAnalysis
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, content models.ScrapedContent, opts models.AnalyzeOptions) models.BusinessAnalysis {
	f.calls++
	r := f.result
	r.URL = content.URL
	return r
}

func newTestPipeline(t *testing.T, scr *fakeScraper, anl *fakeAnalyzer) *Pipeline {
	t.Helper()
	v, err := validation.New([]string{"*.nl"})
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	cfg := &config.Config{
		CacheMaxEntries:  100,
		CacheMaxBytes:    1 << 20,
		ContentCacheTTL:  time.Hour,
		AnalysisCacheTTL: time.Hour,
		ResultCacheTTL:   time.Hour,
	}
	return New(v, scr, anl, cfg, nil)
}

func TestRunHappyPath(t *testing.T) {
	scr := &fakeScraper{result: models.ScrapedContent{Title: "Winkel", Content: "inhoud"}}
	anl := &fakeAnalyzer{result: models.BusinessAnalysis{BusinessType: "webshop", ConfidenceScore: 45}}
	p := newTestPipeline(t, scr, anl)

	got, err := p.Run(context.Background(), "https://winkel.nl", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Scraped.Title != "Winkel" || got.Analysis.BusinessType != "webshop" {
		t.Errorf("result = %+v", got)
	}
	if got.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}
	if scr.calls != 1 || anl.calls != 1 {
		t.Errorf("calls: scraper=%d analyzer=%d", scr.calls, anl.calls)
	}
}

func TestRunRejectedURLSkipsStages(t *testing.T) {
	scr := &fakeScraper{}
	anl := &fakeAnalyzer{}
	p := newTestPipeline(t, scr, anl)

	tests := []string{
		"http://10.0.0.5/page",
		"http://localhost/admin",
		"ftp://winkel.nl",
		"https://example.de",
	}
	for _, url := range tests {
		t.Run(url, func(t *testing.T) {
			_, err := p.Run(context.Background(), url, Options{})
			var vErr *validation.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}

	if scr.calls != 0 {
		t.Errorf("scraper called %d times for rejected URLs", scr.calls)
	}
	if anl.calls != 0 {
		t.Errorf("analyzer called %d times for rejected URLs", anl.calls)
	}
}

func TestRunCachesSuccessfulResults(t *testing.T) {
	scr := &fakeScraper{result: models.ScrapedContent{Title: "Winkel"}}
	anl := &fakeAnalyzer{result: models.BusinessAnalysis{BusinessType: "webshop"}}
	p := newTestPipeline(t, scr, anl)

	for i := 0; i < 3; i++ {
		if _, err := p.Run(context.Background(), "https://winkel.nl", Options{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if scr.calls != 1 {
		t.Errorf("scraper called %d times, want 1 (result cache)", scr.calls)
	}
	if anl.calls != 1 {
		t.Errorf("analyzer called %d times, want 1 (result cache)", anl.calls)
	}
	if hits := p.CacheStats()["result"].Hits; hits != 2 {
		t.Errorf("result cache hits = %d, want 2", hits)
	}
}

func TestRunDistinctOptionsBypassCache(t *testing.T) {
	scr := &fakeScraper{result: models.ScrapedContent{Title: "Winkel"}}
	anl := &fakeAnalyzer{result: models.BusinessAnalysis{BusinessType: "webshop"}}
	p := newTestPipeline(t, scr, anl)

	ctx := context.Background()
	if _, err := p.Run(ctx, "https://winkel.nl", Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(ctx, "https://winkel.nl", Options{Analyze: models.AnalyzeOptions{Language: "nl"}}); err != nil {
		t.Fatal(err)
	}

	if anl.calls != 2 {
		t.Errorf("analyzer called %d times, want 2 for distinct analyze options", anl.calls)
	}
	// The scrape options are identical, so the content cache still serves run two.
	if scr.calls != 1 {
		t.Errorf("scraper called %d times, want 1", scr.calls)
	}
}

func TestRunFailedExtractionNotCached(t *testing.T) {
	scr := &fakeScraper{result: models.ScrapedContent{Error: "extraction failed after 2 attempts: timeout"}}
	anl := &fakeAnalyzer{result: models.BusinessAnalysis{BusinessType: "general business", ConfidenceScore: 30}}
	p := newTestPipeline(t, scr, anl)

	ctx := context.Background()
	got, err := p.Run(ctx, "https://down.nl", Options{})
	if err != nil {
		t.Fatalf("Run must absorb extraction failures, got %v", err)
	}
	if !got.Scraped.Failed() {
		t.Error("expected failed extraction in result")
	}
	if got.Analysis.ConfidenceScore != 30 {
		t.Errorf("confidence = %d", got.Analysis.ConfidenceScore)
	}

	// Every rerun hits the site again: failures are never cached.
	if _, err := p.Run(ctx, "https://down.nl", Options{}); err != nil {
		t.Fatal(err)
	}
	if scr.calls != 2 {
		t.Errorf("scraper called %d times, want 2 (no caching of failures)", scr.calls)
	}

	stats := p.CacheStats()
	for _, stage := range []string{"content", "analysis", "result"} {
		if n := stats[stage].Entries; n != 0 {
			t.Errorf("%s cache has %d entries, want 0", stage, n)
		}
	}
}

func TestCacheStatsStages(t *testing.T) {
	p := newTestPipeline(t, &fakeScraper{}, &fakeAnalyzer{})
	stats := p.CacheStats()
	for _, stage := range []string{"content", "analysis", "result"} {
		if _, ok := stats[stage]; !ok {
			t.Errorf("missing stage %q in cache stats", stage)
		}
	}
}
