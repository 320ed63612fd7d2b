package classifier

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultModel           = "gpt-3.5-turbo"
	DefaultMaxOutputTokens = 200

	emptyTextError = "Empty text provided"
)

// Config holds the engine's fixed settings.
type Config struct {
	Labels          []string
	PromptTemplate  string
	Model           string
	MaxOutputTokens int
	// BatchConcurrency bounds concurrent remote calls in ClassifyBatch.
	// Values below 2 process items sequentially.
	BatchConcurrency int
}

// Engine classifies texts by rendering a prompt, calling a Completer and
// validating its answer. It holds no mutable state after construction.
type Engine struct {
	client      Completer
	labels      LabelSet
	template    PromptTemplate
	parser      ResponseParser
	model       string
	maxTokens   int
	concurrency int
}

var _ Classifier = (*Engine)(nil)

// New builds an Engine. It fails with ErrConfiguration when client is nil or
// the labels are invalid. A nil Labels falls back to DefaultLabels.
func New(client Completer, cfg Config) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: no completion client configured", ErrConfiguration)
	}

	labels := cfg.Labels
	if labels == nil {
		labels = DefaultLabels()
	}
	set, err := NewLabelSet(labels)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}
	concurrency := cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Engine{
		client:      client,
		labels:      set,
		template:    NewPromptTemplate(cfg.PromptTemplate),
		parser:      NewResponseParser(set),
		model:       model,
		maxTokens:   maxTokens,
		concurrency: concurrency,
	}, nil
}

// Labels returns the engine's label set.
func (e *Engine) Labels() LabelSet { return e.labels }

// Status returns the configured labels, model and fallback label.
func (e *Engine) Status() Status {
	return Status{
		Labels:   e.labels.Labels(),
		Model:    e.model,
		Fallback: e.labels.Fallback(),
	}
}

// Classify classifies a single text. Every failure is reported through the
// returned Result; Classify never returns an error.
func (e *Engine) Classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return e.failed(text, emptyTextError)
	}
	if err := ctx.Err(); err != nil {
		return e.failed(text, err.Error())
	}

	parsed, err := e.classify(ctx, text)
	if err != nil {
		log.WithFields(log.Fields{
			"model":  e.model,
			"reason": err.Error(),
		}).Warn("classification failed")
		return e.failed(text, err.Error())
	}

	log.WithFields(log.Fields{
		"model": e.model,
		"label": parsed.Label,
	}).Debug("classified text")

	return Result{
		Text:           text,
		PredictedLabel: parsed.Label,
		Confidence:     parsed.Confidence,
		Rationale:      parsed.Rationale,
	}
}

func (e *Engine) classify(ctx context.Context, text string) (p Parsed, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRemoteService, r)
		}
	}()

	raw, err := e.client.Complete(ctx, CompletionRequest{
		Model:           e.model,
		System:          systemInstruction,
		Prompt:          e.template.Render(e.labels.Labels(), text),
		Temperature:     0,
		MaxOutputTokens: e.maxTokens,
		JSONOutput:      true,
	})
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
	return e.parser.Parse(raw)
}

// ClassifyBatch classifies texts independently. The result slice always has
// the same length and order as texts.
func (e *Engine) ClassifyBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	if e.concurrency <= 1 || len(texts) <= 1 {
		for i, text := range texts {
			results[i] = e.Classify(ctx, text)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			results[i] = e.Classify(ctx, text)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Engine) failed(text, msg string) Result {
	return Result{
		Text:           text,
		PredictedLabel: e.labels.Fallback(),
		Error:          msg,
	}
}
