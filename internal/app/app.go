package app

import (
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"textclassifier/internal/config"
	"textclassifier/internal/costtracker"
	"textclassifier/internal/jobs"
	"textclassifier/internal/services"
	"textclassifier/pkg/classifier"
)

type App struct {
	Config      *config.Config
	CostTracker costtracker.CostTracker
	Provider    services.CompletionService
	Engine      *classifier.Engine

	jobClient *jobs.Client
}

// NewApp wires the cost tracker, the configured provider and the engine.
func NewApp(cfg *config.Config) (*App, error) {
	tracker := costtracker.New()
	provider, err := services.NewCompletionService(cfg, tracker)
	if err != nil {
		return nil, fmt.Errorf("init completion provider: %w", err)
	}
	return NewWithProvider(cfg, tracker, provider)
}

// NewWithProvider finishes construction around an already built provider.
func NewWithProvider(cfg *config.Config, tracker costtracker.CostTracker, provider services.CompletionService) (*App, error) {
	app := &App{Config: cfg, CostTracker: tracker, Provider: provider}

	if err := app.initEngine(); err != nil {
		app.Close()
		return nil, err
	}
	log.WithFields(log.Fields{
		"provider": provider.Name(),
		"model":    app.Engine.Status().Model,
		"labels":   app.Engine.Labels().Joined(),
	}).Debug("Application initialization complete.")
	return app, nil
}

func (a *App) initEngine() error {
	class, err := a.Config.ResolveClassification()
	if err != nil {
		return fmt.Errorf("load classification config: %w", err)
	}
	engine, err := classifier.New(a.Provider, classifier.Config{
		Labels:           class.Labels,
		PromptTemplate:   class.PromptTemplate,
		Model:            a.Config.Classifier.Model,
		MaxOutputTokens:  a.Config.Classifier.MaxOutputTokens,
		BatchConcurrency: a.Config.Classifier.BatchConcurrency,
	})
	if err != nil {
		return fmt.Errorf("init classification engine: %w", err)
	}
	a.Engine = engine
	return nil
}

// RedisOpt returns the asynq connection settings.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

// JobClient lazily connects the background job client.
func (a *App) JobClient() *jobs.Client {
	if a.jobClient == nil {
		a.jobClient = jobs.NewClient(a.RedisOpt(), jobs.QueueClassification)
	}
	return a.jobClient
}

// Close releases provider and queue resources.
func (a *App) Close() {
	if a.jobClient != nil {
		if err := a.jobClient.Close(); err != nil {
			log.Printf("Error closing job client: %v", err)
		}
	}
	if a.Provider != nil {
		if err := a.Provider.Close(); err != nil {
			log.Printf("Error closing completion provider: %v", err)
		}
	}
}
