package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// maxBatchRetries bounds redelivery of a failed batch.
const maxBatchRetries = 3

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues batch classification jobs.
type Client struct {
	client enqueuer
	queue  string
}

// NewClient connects to Redis through asynq. An empty queue uses
// QueueClassification.
func NewClient(redis asynq.RedisClientOpt, queue string) *Client {
	return newClient(asynq.NewClient(redis), queue)
}

func newClient(e enqueuer, queue string) *Client {
	if queue == "" {
		queue = QueueClassification
	}
	return &Client{client: e, queue: queue}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueBatch schedules texts for classification and returns the job ID.
// An empty outputPath lets the worker pick a file under its results directory.
func (c *Client) EnqueueBatch(ctx context.Context, texts []string, outputPath string) (string, error) {
	if len(texts) == 0 {
		return "", errors.New("no texts to enqueue")
	}
	jobID := uuid.NewString()
	task, err := NewBatchTask(BatchPayload{JobID: jobID, Texts: texts, OutputPath: outputPath})
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(jobID),
		asynq.MaxRetry(maxBatchRetries),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue classification batch: %w", err)
	}
	log.WithFields(log.Fields{"job_id": jobID, "queue": info.Queue, "texts": len(texts)}).Info("Enqueued classification batch")
	return jobID, nil
}
