package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

func fakeGemini(resp *genai.GenerateContentResponse, err error, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) *GeminiProvider {
	return &GeminiProvider{
		generate: func(ctx context.Context, req classifier.CompletionRequest) (*genai.GenerateContentResponse, error) {
			return resp, err
		},
		usage: usageRecorder{provider: "gemini", tracker: tracker, pricing: pricing},
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	ctx := context.Background()
	tracker := costtracker.New()
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"label": `), genai.Text(`"Feedback"}`)}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 30, CandidatesTokenCount: 7},
	}
	pricing := map[string]config.PricingInfo{"gemini-1.5-flash": {InputPerToken: 0.5, OutputPerToken: 1}}
	p := fakeGemini(resp, nil, tracker, pricing)

	req := classificationRequest()
	req.Model = "gemini-1.5-flash"
	out, err := p.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, `{"label": "Feedback"}`, out)

	summary, _ := tracker.Summary(ctx)
	assert.InDelta(t, 22.0, summary.TotalUSD, 1e-9)
	assert.Equal(t, int64(7), summary.OutputTokens)
}

func TestGeminiProvider_Failures(t *testing.T) {
	testCases := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
	}{
		{"api error", nil, errors.New("quota exceeded")},
		{"no candidates", &genai.GenerateContentResponse{}, nil},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, nil},
		{"no text parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := fakeGemini(tc.resp, tc.err, costtracker.Noop(), nil)
			_, err := p.Complete(context.Background(), classificationRequest())
			assert.Error(t, err)
		})
	}
}
