package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

// GeminiProvider implements CompletionService using the Google Gemini API.
type GeminiProvider struct {
	client   *genai.Client
	generate func(ctx context.Context, req classifier.CompletionRequest) (*genai.GenerateContentResponse, error)
	usage    usageRecorder
}

// NewGeminiProvider creates a Gemini completion provider.
func NewGeminiProvider(ctx context.Context, apiKey string, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key not provided", classifier.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Debug("Gemini provider initialized")

	p := &GeminiProvider{
		client: client,
		usage:  usageRecorder{provider: "gemini", tracker: tracker, pricing: pricing},
	}
	p.generate = p.generateContent
	return p, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *GeminiProvider) generateContent(ctx context.Context, req classifier.CompletionRequest) (*genai.GenerateContentResponse, error) {
	model := p.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	if req.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	return model.GenerateContent(ctx, genai.Text(req.Prompt))
}

func (p *GeminiProvider) Complete(ctx context.Context, req classifier.CompletionRequest) (string, error) {
	resp, err := p.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	text, err := geminiText(resp)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		p.usage.record(ctx, req.Model, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}
	return text, nil
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("Gemini API returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("Gemini API returned no text content")
	}
	return b.String(), nil
}

var _ CompletionService = (*GeminiProvider)(nil)
