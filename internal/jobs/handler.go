package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"textclassifier/internal/results"
	"textclassifier/pkg/classifier"
)

// BatchDeps holds what the batch handler needs.
type BatchDeps struct {
	Classifier classifier.Classifier
	ResultsDir string
}

// HandleBatchTask classifies the texts of a classification:batch task and
// writes the results file. Undecodable payloads are not retried.
func HandleBatchTask(deps BatchDeps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p BatchPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal batch payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.JobID == "" || len(p.Texts) == 0 {
			return fmt.Errorf("batch payload missing job_id or texts: %w", asynq.SkipRetry)
		}

		logger := log.WithFields(log.Fields{"job_id": p.JobID, "texts": len(p.Texts)})
		logger.Info("Processing classification batch")

		out := deps.Classifier.ClassifyBatch(ctx, p.Texts)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("classification batch %s interrupted: %w", p.JobID, err)
		}

		path := p.OutputPath
		if path == "" {
			path = results.PathFor(deps.ResultsDir, p.JobID)
		}
		if err := results.WriteFile(path, out); err != nil {
			return fmt.Errorf("write results for job %s: %w", p.JobID, err)
		}

		failed := 0
		for _, r := range out {
			if r.Failed() {
				failed++
			}
		}
		logger.WithFields(log.Fields{"output": path, "failed": failed}).Info("Classification batch complete")
		return nil
	}
}
