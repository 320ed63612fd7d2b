package config

import (
	"errors"
	"fmt"

	"textclassifier/pkg/classifier"
)

var knownProviders = map[string]string{
	"openai":    "openai.api_key (OPENAI_API_KEY)",
	"gemini":    "gemini.api_key (GEMINI_API_KEY)",
	"anthropic": "anthropic.api_key (ANTHROPIC_API_KEY)",
}

// Validate checks that the chosen provider is usable and that every limit is
// in range. Credential problems wrap classifier.ErrConfiguration.
func (c *Config) Validate() error {
	keyName, ok := knownProviders[c.Classifier.Provider]
	if !ok {
		return fmt.Errorf("%w: unknown classifier.provider %q (want openai, gemini or anthropic)", classifier.ErrConfiguration, c.Classifier.Provider)
	}
	if c.ProviderAPIKey() == "" {
		return fmt.Errorf("%w: %s API key not found, set %s", classifier.ErrConfiguration, c.Classifier.Provider, keyName)
	}
	if c.Classifier.Model == "" {
		return errors.New("classifier.model is required")
	}
	if c.Classifier.MaxOutputTokens <= 0 {
		return errors.New("classifier.max_output_tokens must be a positive integer")
	}
	if c.Classifier.BatchConcurrency <= 0 {
		return errors.New("classifier.batch_concurrency must be a positive integer")
	}

	// Server config
	if c.Server.MaxBatchSize <= 0 {
		return errors.New("server.max_batch_size must be a positive integer")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be a positive integer")
	}

	// Worker config
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	for provider, models := range c.Pricing {
		for model, price := range models {
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}

	return nil
}
