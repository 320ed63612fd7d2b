package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

// CompletionService is a remote model backend the classification engine can
// drive. Every implementation returns the raw text of the first choice.
type CompletionService interface {
	classifier.Completer
	Name() string // Provider name (e.g., "openai", "gemini")
	Close() error
}

// NewCompletionService builds the provider selected in cfg.
func NewCompletionService(cfg *config.Config, tracker costtracker.CostTracker) (CompletionService, error) {
	pricing := cfg.ProviderPricing(cfg.Classifier.Provider)
	switch cfg.Classifier.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, tracker, pricing)
	case "gemini":
		return NewGeminiProvider(context.Background(), cfg.Gemini.APIKey, tracker, pricing)
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, tracker, pricing)
	default:
		return nil, fmt.Errorf("%w: unknown or unsupported provider configured: %s", classifier.ErrConfiguration, cfg.Classifier.Provider)
	}
}

// usageRecorder turns token counts into cost events.
type usageRecorder struct {
	provider string
	tracker  costtracker.CostTracker
	pricing  map[string]config.PricingInfo
}

func (u usageRecorder) record(ctx context.Context, model string, inputTokens, outputTokens int) {
	if u.tracker == nil {
		return
	}
	var amount float64
	if price, ok := u.pricing[model]; ok {
		amount = float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken
	} else {
		log.Debugf("Pricing info not found for model '%s', recording tokens only", model)
	}

	event := costtracker.CostEvent{
		Operation:    "classification",
		Provider:     u.provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		AmountUSD:    amount,
		Timestamp:    time.Now(),
	}
	if err := u.tracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record AI usage for %s: %v", u.provider, err)
		return
	}
	log.Debugf("Recorded AI usage: Provider=%s, Model=%s, Input=%d, Output=%d, Cost=%.8f",
		u.provider, model, inputTokens, outputTokens, amount)
}
