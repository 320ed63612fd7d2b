package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	log "github.com/sirupsen/logrus"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

// The messages API requires max_tokens on every request.
const anthropicDefaultMaxTokens = 1024

// AnthropicProvider implements CompletionService using the Claude messages API.
type AnthropicProvider struct {
	client anthropic.Client
	usage  usageRecorder
}

// NewAnthropicProvider creates an Anthropic provider. Extra request options
// are applied after the key and base URL.
func NewAnthropicProvider(apiKey, baseURL string, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo, opts ...option.RequestOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key not provided", classifier.ErrConfiguration)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	log.Debug("Anthropic provider initialized")

	return &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		usage:  usageRecorder{provider: "anthropic", tracker: tracker, pricing: pricing},
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Close() error { return nil }

func (p *AnthropicProvider) Complete(ctx context.Context, req classifier.CompletionRequest) (string, error) {
	maxTokens := int64(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic api returned no text content")
	}

	p.usage.record(ctx, req.Model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	return text.String(), nil
}

var _ CompletionService = (*AnthropicProvider)(nil)
