package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Generator   GeneratorConfig   `mapstructure:"generator" validate:"required"`
	Inference   InferenceConfig   `mapstructure:"inference"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Task        TaskConfig        `mapstructure:"task"`
	Generation  GenerationConfig  `mapstructure:"generation"`
	Translation TranslationConfig `mapstructure:"translation"`
	Database    DatabaseConfig    `mapstructure:"database"`

	// source is the viper instance the config was read from; WatchScoring
	// reuses it.
	source *viper.Viper
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Generator providers.
const (
	ProviderLMStudio = "lmstudio"
	ProviderGemini   = "gemini"
)

// GeneratorConfig configures the upstream language model that writes exercises.
type GeneratorConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=lmstudio gemini"`

	// BaseURL and Models configure the OpenAI-compatible server.
	BaseURL string   `mapstructure:"base_url" validate:"required_if=Provider lmstudio,omitempty,url"`
	Models  []string `mapstructure:"models"`
	APIKey  string   `mapstructure:"api_key"`

	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	GeminiModel  string `mapstructure:"gemini_model"`

	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxTokens          int     `mapstructure:"max_tokens" validate:"gt=0"`
	BaseTemperature    float64 `mapstructure:"base_temperature" validate:"gt=0,lte=2"`
	RetryTemperature   float64 `mapstructure:"retry_temperature" validate:"gt=0,lte=2"`
	PromptTemplatePath string  `mapstructure:"prompt_template_path"`

	// MaxRetries and RetryDelaySeconds drive the Gemini client's backoff.
	MaxRetries        int `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// Timeout returns TimeoutSeconds as a duration.
func (g GeneratorConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// InferenceConfig points at the masked-LM, embedding and translation sidecar.
// An empty BaseURL disables validation and server-side translation.
type InferenceConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxRetries     int    `mapstructure:"max_retries" validate:"gte=0"`
}

// Timeout returns TimeoutSeconds as a duration.
func (i InferenceConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

// ScoringConfig mirrors scoring.Config. It can be reloaded at runtime, see
// WatchScoring.
type ScoringConfig struct {
	ValidThreshold        float64 `mapstructure:"valid_threshold"`
	TargetSimilarity      float64 `mapstructure:"target_similarity"`
	SemanticWeight        float64 `mapstructure:"semantic_weight"`
	DistractorWeight      float64 `mapstructure:"distractor_weight"`
	MaxSentenceLength     int     `mapstructure:"max_sentence_length"`
	SemanticHintBelow     float64 `mapstructure:"semantic_hint_below"`
	DistractorHintBelow   float64 `mapstructure:"distractor_hint_below"`
	DefaultSemantic       float64 `mapstructure:"default_semantic"`
	DefaultDistractor     float64 `mapstructure:"default_distractor"`
	UnavailableConfidence float64 `mapstructure:"unavailable_confidence"`
	MaskToken             string  `mapstructure:"mask_token"`
}

// ToScoring converts the section into the scorer's own config type.
func (s ScoringConfig) ToScoring() scoring.Config {
	return scoring.Config{
		ValidThreshold:        s.ValidThreshold,
		TargetSimilarity:      s.TargetSimilarity,
		SemanticWeight:        s.SemanticWeight,
		DistractorWeight:      s.DistractorWeight,
		MaxSentenceLength:     s.MaxSentenceLength,
		SemanticHintBelow:     s.SemanticHintBelow,
		DistractorHintBelow:   s.DistractorHintBelow,
		DefaultSemantic:       s.DefaultSemantic,
		DefaultDistractor:     s.DefaultDistractor,
		UnavailableConfidence: s.UnavailableConfidence,
		MaskToken:             s.MaskToken,
	}
}

// TaskConfig configures the asynchronous task manager.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
	TTLSeconds  int `mapstructure:"ttl_seconds" validate:"gt=0"`
	MaxRetries  int `mapstructure:"max_retries" validate:"gte=0"`
}

// TTL returns TTLSeconds as a duration.
func (t TaskConfig) TTL() time.Duration {
	return time.Duration(t.TTLSeconds) * time.Second
}

// GenerationConfig holds settings of the synchronous generation path.
type GenerationConfig struct {
	SyncMaxRetries int    `mapstructure:"sync_max_retries" validate:"gte=0"`
	LexiconPath    string `mapstructure:"lexicon_path"`
}

// TranslationConfig configures the translation collaborator and its cache.
// An empty RedisAddr disables caching.
type TranslationConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RedisAddr       string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (t TranslationConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

// DatabaseConfig configures the exercise archive. An empty URL disables it.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}
