package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "CLOZE"

// ConfigFileEnv names the environment variable holding an explicit config file path.
const ConfigFileEnv = "CLOZE_CONFIG_FILE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.source = v
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules of the scoring section.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Scoring.ToScoring().Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("generator.provider", ProviderLMStudio)
	v.SetDefault("generator.base_url", "http://localhost:1234")
	v.SetDefault("generator.models", []string{
		"gemma-3-4b-it-qat",
		"gemma2-3-4b-it-qat",
		"gemma-2-7b-it-qat",
		"llama-7b-chat",
		"mistral-7b-instruct-v0.2",
	})
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.gemini_api_key", "")
	v.SetDefault("generator.gemini_model", "gemini-2.0-flash")
	v.SetDefault("generator.timeout_seconds", 90)
	v.SetDefault("generator.max_tokens", 800)
	v.SetDefault("generator.base_temperature", 0.7)
	v.SetDefault("generator.retry_temperature", 0.9)
	v.SetDefault("generator.prompt_template_path", "")
	v.SetDefault("generator.max_retries", 3)
	v.SetDefault("generator.retry_delay_seconds", 2)

	v.SetDefault("inference.base_url", "")
	v.SetDefault("inference.timeout_seconds", 30)
	v.SetDefault("inference.max_retries", 2)

	d := scoring.DefaultConfig()
	v.SetDefault("scoring.valid_threshold", d.ValidThreshold)
	v.SetDefault("scoring.target_similarity", d.TargetSimilarity)
	v.SetDefault("scoring.semantic_weight", d.SemanticWeight)
	v.SetDefault("scoring.distractor_weight", d.DistractorWeight)
	v.SetDefault("scoring.max_sentence_length", d.MaxSentenceLength)
	v.SetDefault("scoring.semantic_hint_below", d.SemanticHintBelow)
	v.SetDefault("scoring.distractor_hint_below", d.DistractorHintBelow)
	v.SetDefault("scoring.default_semantic", d.DefaultSemantic)
	v.SetDefault("scoring.default_distractor", d.DefaultDistractor)
	v.SetDefault("scoring.unavailable_confidence", d.UnavailableConfidence)
	v.SetDefault("scoring.mask_token", d.MaskToken)

	v.SetDefault("task.worker_count", 1)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.ttl_seconds", 300)
	v.SetDefault("task.max_retries", 3)

	v.SetDefault("generation.sync_max_retries", 1)
	v.SetDefault("generation.lexicon_path", "")

	v.SetDefault("translation.enabled", true)
	v.SetDefault("translation.redis_addr", "")
	v.SetDefault("translation.cache_ttl_seconds", 86400)

	v.SetDefault("database.url", "")
}
