package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
)

const (
	DefaultRegion  = "us-east-1"
	DefaultModelID = "us.anthropic.claude-opus-4-5-20251101-v1:0"

	anthropicVersion = "bedrock-2023-05-31"
)

type invoker interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client sends Anthropic messages bodies through the Bedrock runtime.
type Client struct {
	api     invoker
	modelID string
	log     *zap.Logger
}

// NewClient resolves credentials from the default AWS chain
// (env, shared config, instance role).
func NewClient(ctx context.Context, region, modelID string, log *zap.Logger) (*Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	return newClient(bedrockruntime.NewFromConfig(cfg), modelID, log), nil
}

func newClient(api invoker, modelID string, log *zap.Logger) *Client {
	if modelID == "" {
		modelID = DefaultModelID
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, modelID: modelID, log: log.Named("bedrock")}
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type invokeBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type invokeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, in domai.CompletionRequest) (string, error) {
	var blocks []contentBlock
	if in.Image != nil {
		blocks = append(blocks, contentBlock{
			Type:   "image",
			Source: &imageSource{Type: "base64", MediaType: in.Image.MediaType, Data: in.Image.Data},
		})
	}
	blocks = append(blocks, contentBlock{Type: "text", Text: in.Prompt})

	body, err := json.Marshal(invokeBody{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        in.MaxTokens,
		Messages:         []message{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", err
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		var throttled *types.ThrottlingException
		var quota *types.ServiceQuotaExceededException
		if errors.As(err, &throttled) || errors.As(err, &quota) {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("invoke model: %w", err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode invoke response: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", domai.ErrEmptyResponse
	}

	c.log.Info("received response",
		zap.String("step", in.Step),
		zap.String("stop_reason", resp.StopReason),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))
	return resp.Content[0].Text, nil
}
