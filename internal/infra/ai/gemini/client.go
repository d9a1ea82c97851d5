package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.7
)

type Options struct {
	APIKey      string
	Model       string
	Temperature float32

	// BaseURL overrides the Gemini API endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	client *genai.Client
	model  string
	temp   float32
	log    *zap.Logger
}

func NewClient(ctx context.Context, o Options, log *zap.Logger) (*Client, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: missing api key", domai.ErrNotConfigured)
	}
	cfg := &genai.ClientConfig{
		APIKey:  o.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.HTTPClient != nil {
		cfg.HTTPClient = o.HTTPClient
	}
	if o.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{client: client, model: o.Model, temp: o.Temperature, log: log.Named("gemini")}, nil
}

func (c *Client) Complete(ctx context.Context, in domai.CompletionRequest) (string, error) {
	var parts []*genai.Part
	if in.Image != nil {
		raw, err := base64.StdEncoding.DecodeString(in.Image.Data)
		if err != nil {
			return "", fmt.Errorf("gemini: decode image: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(raw, in.Image.MediaType))
	}
	parts = append(parts, genai.NewPartFromText(in.Prompt))

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temp),
		MaxOutputTokens: int32(in.MaxTokens),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", domai.ErrEmptyResponse
	}

	fields := []zap.Field{zap.String("step", in.Step)}
	if len(result.Candidates) > 0 {
		fields = append(fields, zap.String("finish_reason", string(result.Candidates[0].FinishReason)))
	}
	if u := result.UsageMetadata; u != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", u.PromptTokenCount),
			zap.Int32("candidate_tokens", u.CandidatesTokenCount))
	}
	c.log.Info("received response", fields...)
	return text, nil
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
