package costtracker

import (
	"context"
	"sync"
	"time"
)

// CostEvent represents a single remote model call and its cost.
type CostEvent struct {
	Operation    string // e.g. "classification"
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
	Timestamp    time.Time
}

// Summary aggregates every recorded event.
type Summary struct {
	Calls        int     `json:"calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalUSD     float64 `json:"total_usd"`
}

// CostTracker provides methods to record and report costs.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
	TotalCost(ctx context.Context) (float64, error)
	Summary(ctx context.Context) (Summary, error)
}

// New returns an in-memory tracker that lives as long as the process.
func New() CostTracker {
	return &memoryTracker{}
}

type memoryTracker struct {
	mu      sync.Mutex
	summary Summary
}

func (m *memoryTracker) RecordCost(ctx context.Context, event CostEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Calls++
	m.summary.InputTokens += int64(event.InputTokens)
	m.summary.OutputTokens += int64(event.OutputTokens)
	m.summary.TotalUSD += event.AmountUSD
	return nil
}

func (m *memoryTracker) TotalCost(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary.TotalUSD, nil
}

func (m *memoryTracker) Summary(ctx context.Context) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary, nil
}

// Noop returns a tracker that discards every event.
func Noop() CostTracker {
	return noopCostTracker{}
}

type noopCostTracker struct{}

func (noopCostTracker) RecordCost(ctx context.Context, event CostEvent) error { return nil }
func (noopCostTracker) TotalCost(ctx context.Context) (float64, error)        { return 0, nil }
func (noopCostTracker) Summary(ctx context.Context) (Summary, error)          { return Summary{}, nil }
