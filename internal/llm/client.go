package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// CompletionRequest describes one chat completion call. The response is
// requested as a JSON object; callers still must treat the returned string
// as untrusted.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client is the completion service consumed by the analyzer. Implementations
// must tolerate cancellation via ctx.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config holds OpenAI-compatible client settings.
type Config struct {
	APIKey  string
	BaseURL string // optional override for OpenAI-compatible gateways
	Model   string // default model when the request leaves Model empty
	Timeout time.Duration
	Logger  *slog.Logger
}

// OpenAIClient calls an OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	configured bool
	logger     *slog.Logger
}

// NewOpenAI creates a completion client. An empty API key yields a client
// whose calls fail with ErrNotConfigured, pushing the analyzer onto its
// heuristic fallback.
func NewOpenAI(cfg Config) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		configured: cfg.APIKey != "",
		logger:     cfg.Logger.With("component", "llm"),
	}
}

// Complete performs one chat completion requesting a JSON-only response.
// Empty choices and empty content are reported as ErrEmptyCompletion rather
// than returned to callers as usable output.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.configured {
		return "", &ServiceError{Err: ErrNotConfigured}
	}
	if req.Model == "" {
		req.Model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", Classify(err, req.Model, status)
	}

	if len(resp.Choices) == 0 {
		return "", &ServiceError{Err: ErrEmptyCompletion, Model: req.Model}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &ServiceError{Err: ErrEmptyCompletion, Model: req.Model}
	}

	c.logger.Debug("completion finished",
		"model", req.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"tokens_out", resp.Usage.CompletionTokens,
	)
	return content, nil
}
