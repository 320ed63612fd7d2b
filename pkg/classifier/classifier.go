package classifier

import "context"

// CompletionRequest is a single call to a remote completion model.
type CompletionRequest struct {
	Model           string
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
	// JSONOutput asks the provider to force a JSON object response.
	JSONOutput bool
}

// Completer sends a rendered prompt to a remote model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Result is the outcome of classifying one text. Error is set only when the
// classification could not be completed, in which case PredictedLabel holds
// the fallback label.
type Result struct {
	Text           string   `json:"text"`
	PredictedLabel string   `json:"predicted_label"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Rationale      *string  `json:"rationale,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool { return r.Error != "" }

// Status is a read-only snapshot of an engine's configuration.
type Status struct {
	Labels   []string `json:"labels"`
	Model    string   `json:"model"`
	Fallback string   `json:"fallback"`
}

// Classifier is implemented by Engine.
type Classifier interface {
	Classify(ctx context.Context, text string) Result
	ClassifyBatch(ctx context.Context, texts []string) []Result
	Status() Status
}
