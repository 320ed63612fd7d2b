package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

func TestNewCompletionService(t *testing.T) {
	testCases := []struct {
		name     string
		provider string
		setKey   func(c *config.Config)
		wantName string
		wantErr  bool
	}{
		{"openai", "openai", func(c *config.Config) { c.OpenAI.APIKey = "sk" }, "openai", false},
		{"anthropic", "anthropic", func(c *config.Config) { c.Anthropic.APIKey = "sk" }, "anthropic", false},
		{"openai without key", "openai", func(c *config.Config) {}, "", true},
		{"gemini without key", "gemini", func(c *config.Config) {}, "", true},
		{"anthropic without key", "anthropic", func(c *config.Config) {}, "", true},
		{"unknown provider", "cohere", func(c *config.Config) { c.OpenAI.APIKey = "sk" }, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Classifier.Provider = tc.provider
			tc.setKey(cfg)

			svc, err := NewCompletionService(cfg, costtracker.Noop())
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, classifier.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, svc.Name())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestUsageRecorder_UnknownModelRecordsTokens(t *testing.T) {
	ctx := context.Background()
	tracker := costtracker.New()
	u := usageRecorder{provider: "openai", tracker: tracker}

	u.record(ctx, "gpt-unknown", 10, 5)

	summary, err := tracker.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Calls)
	assert.Equal(t, int64(10), summary.InputTokens)
	assert.Zero(t, summary.TotalUSD)
}
