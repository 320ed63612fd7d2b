package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"textclassifier/internal/jobs"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background job worker",
		Long:  `Starts the asynq worker process that classifies batches enqueued with 'classify --async'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := GetAppFromContext(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get application context: %w", err)
			}
			cfg := appInstance.Config

			srv := jobs.NewServer(appInstance.RedisOpt(), jobs.ServerConfig{
				Concurrency: cfg.Worker.Concurrency,
				Queues:      cfg.Worker.Queues,
			})
			mux := jobs.NewServeMux(jobs.BatchDeps{
				Classifier: appInstance.Engine,
				ResultsDir: cfg.Results.Dir,
			})

			log.Infof("Starting asynq worker server (Concurrency: %d, Queues: %v)...", cfg.Worker.Concurrency, cfg.Worker.Queues)
			if err := srv.Start(mux); err != nil {
				return fmt.Errorf("failed to start asynq server: %w", err)
			}

			<-cmd.Context().Done()
			log.Info("Shutdown signal received. Initiating graceful shutdown...")
			srv.Shutdown()
			log.Info("Worker shutdown complete.")
			return nil
		},
	}
}
