package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
)

const DefaultModel = "claude-sonnet-4-20250514"

// Client calls the Anthropic messages API directly.
type Client struct {
	client *anthropic.Client
	model  string
	log    *zap.Logger
}

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(o Options, log *zap.Logger) (*Client, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("claude: %w: missing api key", domai.ErrNotConfigured)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  o.Model,
		log:    log.Named("claude"),
	}, nil
}

func (c *Client) Complete(ctx context.Context, in domai.CompletionRequest) (string, error) {
	var blocks []anthropic.ContentBlockParamUnion
	if in.Image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(in.Image.MediaType, in.Image.Data))
	}
	blocks = append(blocks, anthropic.NewTextBlock(in.Prompt))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.Int(int64(in.MaxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		}),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("messages.new: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", domai.ErrEmptyResponse
	}

	c.log.Info("received response",
		zap.String("step", in.Step),
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))
	return resp.Content[0].Text, nil
}
