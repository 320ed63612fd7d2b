package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"textclassifier/internal/apihandlers"
	"textclassifier/internal/clix"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classifier as an HTTP API server",
		Long: `Starts an HTTP server exposing single, batch and file classification,
status and result download endpoints under /api.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := GetAppFromContext(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.Config

			if log.GetLevel() < log.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			handler := apihandlers.NewAPIHandler(appInstance.Engine, apihandlers.Options{
				Provider:       appInstance.Provider.Name(),
				Usage:          appInstance.CostTracker,
				MaxBatchSize:   cfg.Server.MaxBatchSize,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
			})

			listenAddr := clix.ParseListenAddr(cmd.Flags(), cfg.Server.Addr, cfg.Server.Port)
			srv := &http.Server{
				Addr:              listenAddr,
				Handler:           apihandlers.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return runServer(cmd.Context(), srv)
		},
	}

	cmd.Flags().String("addr", "localhost", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	cmd.Flags().String("port", "5000", "Port to listen on")
	return cmd
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting classifier API server on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to run API server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	log.Info("API server stopped.")
	return nil
}
