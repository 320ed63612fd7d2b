package jobs

import (
	"context"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// ServerConfig is the worker side of the job queue.
type ServerConfig struct {
	Concurrency int
	Queues      map[string]int
}

// NewServer builds an asynq server that logs through logrus.
func NewServer(redis asynq.RedisClientOpt, cfg ServerConfig) *asynq.Server {
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.Queues,
		Logger:      log.StandardLogger(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			id, _ := asynq.GetTaskID(ctx)
			log.WithFields(log.Fields{"task_id": id, "type": task.Type()}).Errorf("Asynq task failed: %v", err)
		}),
	})
}

// NewServeMux registers every job handler.
func NewServeMux(deps BatchDeps) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeClassificationBatch, HandleBatchTask(deps))
	return mux
}
