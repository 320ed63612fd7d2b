package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"textclassifier/internal/app"
	"textclassifier/internal/config"
)

// AppBuilder constructs the application from loaded configuration.
type AppBuilder func(cfg *config.Config) (*app.App, error)

// NewRootCmd assembles the command tree. build is called once per run, after
// configuration is loaded and validated.
func NewRootCmd(build AppBuilder) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "textclassifier",
		Short: "Classify text into a fixed set of labels with an LLM",
		Long: `textclassifier sends each text to a chat completion model together with a
fixed label set and turns the JSON answer into a label, a confidence and a
rationale. It runs one-off from the command line, as an HTTP API or as a
background worker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is given, print help.
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipAppInit(cmd) {
				return nil
			}

			cfg, err := config.LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := setupLogging(cfg.Log.Level); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			appInstance, err := build(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store the app instance in the command's context
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to config.yaml (default ./config.yaml)")
	pf.String("classifier-config", "", "Path to a JSON or YAML file with labels and prompt_template")
	pf.String("model", "", "Model to use (default depends on --provider)")
	pf.String("provider", "", "Completion provider: openai, gemini or anthropic")
	pf.StringSlice("labels", nil, "Comma-separated labels, overrides every config file")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newClassifyCmd(),
		newServeCmd(),
		newWorkerCmd(),
		newStatusCmd(),
	)
	return rootCmd
}

// skipAppInit is true for commands that never touch a provider.
func skipAppInit(cmd *cobra.Command) bool {
	if cmd == cmd.Root() {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// setupLogging points logrus at stderr so stdout stays machine readable.
func setupLogging(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, NewRootCmd(app.NewApp))
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes root and closes whatever app the executed command built,
// including on failed runs.
func run(ctx context.Context, root *cobra.Command) error {
	executed, err := root.ExecuteContextC(ctx)
	if executed != nil {
		if appInstance, appErr := GetAppFromContext(executed.Context()); appErr == nil {
			appInstance.Close()
		}
	}
	return err
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		// This should not happen if PersistentPreRunE ran successfully
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}
