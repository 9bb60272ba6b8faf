package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wasgeurtjeNL/retail-sub002/internal/llm"
	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// fakeClient returns a canned completion or error.
type fakeClient struct {
	response string
	err      error
	calls    int
	lastReq  llm.CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func sampleContent() models.ScrapedContent {
	return models.ScrapedContent{
		URL:     "https://kaaswinkel.nl",
		Title:   "Kaaswinkel",
		Content: "KvK 12345678. " + strings.Repeat("kaas ", 60),
		ContactInfo: models.ContactInfo{
			Phones: []string{"0182-123456"},
		},
		Technical: models.TechnicalInfo{HasSSL: true},
	}
}

func TestAnalyzeParsedPath(t *testing.T) {
	client := &fakeClient{response: `{"businessType": "webshop", "confidenceScore": 99, "location": "Gouda"}`}
	a := New(client, nil)

	content := sampleContent()
	got := a.Analyze(context.Background(), content, models.AnalyzeOptions{})

	if got.BusinessType != "webshop" {
		t.Errorf("businessType = %q", got.BusinessType)
	}
	// The confidence score comes from the evidence rubric, not the model.
	if want := ComputeConfidence(content); got.ConfidenceScore != want {
		t.Errorf("confidence = %d, want rubric score %d (model said 99)", got.ConfidenceScore, want)
	}
	if got.URL != content.URL {
		t.Errorf("url = %q", got.URL)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if got.Strengths == nil || got.Recommendations == nil {
		t.Error("slices must be non-nil after sanitize")
	}
}

func TestAnalyzeServiceErrorFallsBack(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	a := New(client, nil)

	got := a.Analyze(context.Background(), sampleContent(), models.AnalyzeOptions{})

	if got.ConfidenceScore != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.ConfidenceScore, fallbackConfidence)
	}
	if got.BusinessType == "" {
		t.Error("fallback must still classify the business")
	}
}

func TestAnalyzeMalformedOutputFallsBack(t *testing.T) {
	for _, response := range []string{
		"I'm sorry, I cannot analyze this website.",
		"```\nnot json\n```",
		"{}",
		"[]",
	} {
		t.Run(response, func(t *testing.T) {
			client := &fakeClient{response: response}
			a := New(client, nil)

			got := a.Analyze(context.Background(), sampleContent(), models.AnalyzeOptions{})
			if got.ConfidenceScore != fallbackConfidence {
				t.Errorf("confidence = %d, want fallback %d", got.ConfidenceScore, fallbackConfidence)
			}
		})
	}
}

func TestAnalyzeNotConfiguredFallsBack(t *testing.T) {
	client := &fakeClient{err: llm.ErrNotConfigured}
	a := New(client, nil)

	got := a.Analyze(context.Background(), sampleContent(), models.AnalyzeOptions{})
	if got.ConfidenceScore != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.ConfidenceScore, fallbackConfidence)
	}
}

func TestAnalyzeZeroOptionsUseDefaults(t *testing.T) {
	client := &fakeClient{response: `{"businessType": "webshop"}`}
	a := New(client, nil)

	a.Analyze(context.Background(), sampleContent(), models.AnalyzeOptions{})

	want := models.DefaultAnalyzeOptions()
	if client.lastReq.MaxTokens != want.MaxTokens {
		t.Errorf("maxTokens = %d, want default %d", client.lastReq.MaxTokens, want.MaxTokens)
	}
	if client.lastReq.Temperature != want.Temperature {
		t.Errorf("temperature = %v, want default %v", client.lastReq.Temperature, want.Temperature)
	}
	if !strings.Contains(client.lastReq.User, "Website: https://kaaswinkel.nl") {
		t.Error("user prompt missing website")
	}
	if client.lastReq.System == "" {
		t.Error("system prompt empty")
	}
}

func TestAnalyzeFailedExtraction(t *testing.T) {
	client := &fakeClient{response: `{"businessType": "webshop"}`}
	a := New(client, nil)

	content := models.ScrapedContent{
		URL:   "https://down.nl",
		Error: "extraction failed after 2 attempts: timeout",
	}
	got := a.Analyze(context.Background(), content, models.AnalyzeOptions{})

	if client.calls != 0 {
		t.Errorf("completion called %d times for a failed extraction, want 0", client.calls)
	}
	if got.ConfidenceScore != fallbackConfidence {
		t.Errorf("confidence = %d, want fallback %d", got.ConfidenceScore, fallbackConfidence)
	}
	if got.BusinessType != "general business" {
		t.Errorf("businessType = %q", got.BusinessType)
	}
	if got.URL != "https://down.nl" {
		t.Errorf("url = %q", got.URL)
	}
	if got.Strengths == nil || got.Recommendations == nil {
		t.Error("slices must be non-nil")
	}
}
