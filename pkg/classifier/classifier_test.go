package classifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fake completion client ---
type fakeCompleter struct {
	mu        sync.Mutex
	responses map[string]string // keyed by a substring of the prompt
	errors    map[string]error
	response  string
	err       error
	requests  []CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for key, err := range f.errors {
		if strings.Contains(req.Prompt, key) {
			return "", err
		}
	}
	for key, resp := range f.responses {
		if strings.Contains(req.Prompt, key) {
			return resp, nil
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// --- End fake completion client ---

func newTestEngine(t *testing.T, client Completer, labels []string) *Engine {
	t.Helper()
	e, err := New(client, Config{Labels: labels, Model: "gpt-test"})
	require.NoError(t, err)
	return e
}

func TestNew_Configuration(t *testing.T) {
	client := &fakeCompleter{}

	t.Run("single label is rejected", func(t *testing.T) {
		_, err := New(client, Config{Labels: []string{"Only"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("empty label list is rejected", func(t *testing.T) {
		_, err := New(client, Config{Labels: []string{}})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("nil client is rejected", func(t *testing.T) {
		_, err := New(nil, Config{})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("two distinct labels succeed", func(t *testing.T) {
		e, err := New(client, Config{Labels: []string{"Spam", "Ham"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Spam", "Ham"}, e.Status().Labels)
	})

	t.Run("defaults", func(t *testing.T) {
		e, err := New(client, Config{})
		require.NoError(t, err)
		st := e.Status()
		assert.Equal(t, DefaultLabels(), st.Labels)
		assert.Equal(t, DefaultModel, st.Model)
		assert.Equal(t, "Other", st.Fallback)
	})
}

func TestEngine_Classify_EndToEnd(t *testing.T) {
	client := &fakeCompleter{
		response: `{"label":"Inquiry","confidence":0.95,"rationale":"The text asks a question."}`,
	}
	e := newTestEngine(t, client, []string{"Complaint", "Inquiry", "Feedback", "Other"})

	result := e.Classify(context.Background(), "What are your business hours?")

	assert.Equal(t, "What are your business hours?", result.Text)
	assert.Equal(t, "Inquiry", result.PredictedLabel)
	require.NotNil(t, result.Confidence)
	assert.Equal(t, 0.95, *result.Confidence)
	require.NotNil(t, result.Rationale)
	assert.Equal(t, "The text asks a question.", *result.Rationale)
	assert.Empty(t, result.Error)
	assert.False(t, result.Failed())

	require.Equal(t, 1, client.calls())
	req := client.requests[0]
	assert.Equal(t, "gpt-test", req.Model)
	assert.Equal(t, float32(0), req.Temperature)
	assert.Equal(t, DefaultMaxOutputTokens, req.MaxOutputTokens)
	assert.True(t, req.JSONOutput)
	assert.Contains(t, req.System, `"label"`)
	assert.Contains(t, req.Prompt, `"What are your business hours?"`)
	assert.Contains(t, req.Prompt, "Complaint, Inquiry, Feedback, Other")
}

func TestEngine_Classify_EmptyText(t *testing.T) {
	client := &fakeCompleter{response: `{"label":"Inquiry"}`}
	e := newTestEngine(t, client, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		result := e.Classify(context.Background(), text)
		assert.Equal(t, text, result.Text)
		assert.Equal(t, "Other", result.PredictedLabel)
		assert.Equal(t, "Empty text provided", result.Error)
	}
	assert.Equal(t, 0, client.calls(), "empty input must not reach the remote service")
}

func TestEngine_Classify_Failures(t *testing.T) {
	labels := []string{"Complaint", "Inquiry", "Other"}

	testCases := []struct {
		name        string
		client      *fakeCompleter
		errContains string
	}{
		{
			name:        "remote error",
			client:      &fakeCompleter{err: errors.New("simulated API error 429 Too Many Requests")},
			errContains: "429 Too Many Requests",
		},
		{
			name:        "malformed payload",
			client:      &fakeCompleter{response: "This is just plain text, not JSON."},
			errContains: "Failed to parse JSON response",
		},
		{
			name:        "missing label",
			client:      &fakeCompleter{response: `{"confidence":0.4}`},
			errContains: "missing 'label'",
		},
		{
			name:        "unknown label",
			client:      &fakeCompleter{response: `{"label":"Praise","confidence":0.7}`},
			errContains: "Invalid label 'Praise'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, tc.client, labels)
			result := e.Classify(context.Background(), "Some text")

			assert.Equal(t, "Other", result.PredictedLabel)
			assert.Contains(t, result.Error, tc.errContains)
			assert.Nil(t, result.Confidence)
			assert.Nil(t, result.Rationale)
			assert.Equal(t, 1, tc.client.calls(), "the remote call is attempted exactly once")
		})
	}
}

func TestEngine_Classify_PanickingClientIsContained(t *testing.T) {
	e := newTestEngine(t, panicCompleter{}, nil)
	result := e.Classify(context.Background(), "hello")
	assert.Equal(t, "Other", result.PredictedLabel)
	assert.Contains(t, result.Error, "boom")
}

type panicCompleter struct{}

func (panicCompleter) Complete(context.Context, CompletionRequest) (string, error) {
	panic("boom")
}

func TestEngine_Classify_CanceledContext(t *testing.T) {
	client := &fakeCompleter{response: `{"label":"Inquiry"}`}
	e := newTestEngine(t, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := e.Classify(ctx, "still here?")
	assert.Equal(t, "Other", result.PredictedLabel)
	assert.Contains(t, result.Error, "context canceled")
	assert.Equal(t, 0, client.calls())
}

func TestEngine_Classify_FallbackUsesCanonicalCatchAll(t *testing.T) {
	client := &fakeCompleter{err: errors.New("down")}
	e := newTestEngine(t, client, []string{"Spam", "OTHER"})
	assert.Equal(t, "OTHER", e.Classify(context.Background(), "x").PredictedLabel)
}

func TestEngine_ClassifyBatch_IsolationAndOrder(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		client := &fakeCompleter{
			responses: map[string]string{
				"broken":  `{"label":"Nope"}`,
				"refund":  "```json\n{\"label\":\"complaint\",\"confidence\":0.9}\n```",
				"hours":   `{"label":"Inquiry","confidence":0.8}`,
				"awesome": `{"label":"Feedback"}`,
			},
			errors: map[string]error{
				"network": errors.New("connection reset by peer"),
			},
		}
		e, err := New(client, Config{BatchConcurrency: concurrency})
		require.NoError(t, err)

		texts := []string{
			"I want a refund",
			"network please fail",
			"",
			"What are your hours?",
			"broken answer",
			"This is awesome",
		}

		results := e.ClassifyBatch(context.Background(), texts)
		require.Len(t, results, len(texts))
		for i, r := range results {
			assert.Equal(t, texts[i], r.Text, "result %d out of order", i)
		}

		assert.Equal(t, "Complaint", results[0].PredictedLabel)
		assert.Empty(t, results[0].Error)

		assert.Equal(t, "Other", results[1].PredictedLabel)
		assert.Contains(t, results[1].Error, "connection reset by peer")

		assert.Equal(t, "Empty text provided", results[2].Error)

		assert.Equal(t, "Inquiry", results[3].PredictedLabel)
		assert.Empty(t, results[3].Error)

		assert.Equal(t, "Other", results[4].PredictedLabel)
		assert.Contains(t, results[4].Error, "Invalid label")

		assert.Equal(t, "Feedback", results[5].PredictedLabel)
		assert.Empty(t, results[5].Error)

		assert.Equal(t, 5, client.calls(), "empty text is skipped, every other item is called once")
	}
}

func TestEngine_ClassifyBatch_Empty(t *testing.T) {
	e := newTestEngine(t, &fakeCompleter{}, nil)
	results := e.ClassifyBatch(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestEngine_ClassifyBatch_CanceledKeepsLength(t *testing.T) {
	client := &fakeCompleter{response: `{"label":"Inquiry"}`}
	e := newTestEngine(t, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.ClassifyBatch(ctx, []string{"a", "b", "c"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Failed())
		assert.Equal(t, "Other", r.PredictedLabel)
	}
}

func TestEngine_StatusIsSnapshot(t *testing.T) {
	e := newTestEngine(t, &fakeCompleter{}, []string{"A", "B"})
	st := e.Status()
	st.Labels[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, e.Status().Labels)
}
