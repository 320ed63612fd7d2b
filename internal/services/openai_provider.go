package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

// chatCompleter is the slice of *openai.Client the provider needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements CompletionService using the chat completions API.
type OpenAIProvider struct {
	client chatCompleter
	usage  usageRecorder
}

// NewOpenAIProvider creates a provider for apiKey. A non-empty baseURL points
// the client at an OpenAI-compatible endpoint.
func NewOpenAIProvider(apiKey, baseURL string, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not provided", classifier.ErrConfiguration)
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	log.Debugf("OpenAI provider initialized (base URL %s)", clientCfg.BaseURL)
	return newOpenAIProvider(openai.NewClientWithConfig(clientCfg), tracker, pricing), nil
}

func newOpenAIProvider(client chatCompleter, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) *OpenAIProvider {
	return &OpenAIProvider{
		client: client,
		usage:  usageRecorder{provider: "openai", tracker: tracker, pricing: pricing},
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return "openai" }

// Close is a no-op; the HTTP client holds no resources.
func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) Complete(ctx context.Context, req classifier.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: openAITemperature(req.Temperature),
	}
	if req.JSONOutput {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI API returned no choices")
	}

	p.usage.record(ctx, req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

// openAITemperature keeps an explicit zero on the wire; the request field is
// omitempty and would otherwise fall back to the server default.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

var _ CompletionService = (*OpenAIProvider)(nil)
