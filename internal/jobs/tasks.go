// Package jobs runs batch classifications in the background on asynq.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TypeClassificationBatch is the task type for classifying a batch of texts.
	TypeClassificationBatch = "classification:batch"

	// QueueClassification is the queue batch tasks are enqueued on.
	QueueClassification = "classification"
)

// BatchPayload is the JSON body of a classification:batch task.
type BatchPayload struct {
	JobID      string   `json:"job_id"`
	Texts      []string `json:"texts"`
	OutputPath string   `json:"output_path,omitempty"`
}

// NewBatchTask encodes payload into an asynq task.
func NewBatchTask(payload BatchPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode batch payload: %w", err)
	}
	return asynq.NewTask(TypeClassificationBatch, b), nil
}
