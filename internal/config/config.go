package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TEXTCLASSIFIER"

// DefaultModels is the model used per provider when classifier.model is unset.
var DefaultModels = map[string]string{
	"openai":    "gpt-3.5-turbo",
	"gemini":    "gemini-2.0-flash",
	"anthropic": "claude-3-5-haiku-latest",
}

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Classifier struct {
		Provider         string   `mapstructure:"provider"` // "openai", "gemini" or "anthropic"
		Model            string   `mapstructure:"model"`
		MaxOutputTokens  int      `mapstructure:"max_output_tokens"`
		BatchConcurrency int      `mapstructure:"batch_concurrency"`
		Labels           []string `mapstructure:"labels"`
		// LabelOverride comes from --labels and wins over every other source.
		LabelOverride      []string `mapstructure:"label_override"`
		PromptTemplate     string   `mapstructure:"prompt_template"`
		PromptTemplateFile string   `mapstructure:"prompt_template_file"`
		// ConfigFile points at a JSON/YAML document with labels and prompt_template.
		ConfigFile string `mapstructure:"config_file"`
	} `mapstructure:"classifier"`

	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`

	Gemini struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"gemini"`

	Anthropic struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"anthropic"`

	Server struct {
		Addr           string `mapstructure:"addr"`
		Port           string `mapstructure:"port"`
		MaxBatchSize   int    `mapstructure:"max_batch_size"`
		MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	} `mapstructure:"server"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Results struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"results"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	// Decoded separately because model names such as gpt-3.5-turbo contain
	// viper's key delimiter.
	Pricing map[string]map[string]PricingInfo `mapstructure:"-"`
}

// flagKeys maps persistent CLI flags onto config keys.
var flagKeys = map[string]string{
	"provider":          "classifier.provider",
	"model":             "classifier.model",
	"labels":            "classifier.label_override",
	"classifier-config": "classifier.config_file",
	"log-level":         "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("classifier.provider", "openai")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.max_output_tokens", 200)
	v.SetDefault("classifier.batch_concurrency", 1)
	v.SetDefault("classifier.labels", []string{})
	v.SetDefault("classifier.label_override", []string{})
	v.SetDefault("classifier.prompt_template", "")
	v.SetDefault("classifier.prompt_template_file", "")
	v.SetDefault("classifier.config_file", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("server.addr", "localhost")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.max_batch_size", 100)
	v.SetDefault("server.max_upload_bytes", 16<<20)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.queues", map[string]int{"classification": 1})
	v.SetDefault("results.dir", "results")
}

// LoadConfig reads config.yaml (from path, or the working directory when path
// is empty), environment variables and any changed flags in flags.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".") // Look for config.yaml in the current directory
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys are read from their conventional variables as well.
	_ = v.BindEnv("openai.api_key", envPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini.api_key", envPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("anthropic.api_key", envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the implicit search may come up empty.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := v.UnmarshalKey("pricing", &cfg.Pricing); err != nil {
		return nil, fmt.Errorf("error decoding pricing: %w", err)
	}
	if strings.TrimSpace(cfg.Classifier.Model) == "" {
		cfg.Classifier.Model = DefaultModels[cfg.Classifier.Provider]
	}
	return &cfg, nil
}

// ProviderAPIKey returns the credential for the configured provider.
func (c *Config) ProviderAPIKey() string {
	switch c.Classifier.Provider {
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	default:
		return ""
	}
}

// ProviderPricing returns the per-model pricing table for provider.
func (c *Config) ProviderPricing(provider string) map[string]PricingInfo {
	return c.Pricing[provider]
}
