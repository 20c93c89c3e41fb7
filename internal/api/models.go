package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// GenerateRequest is the body of POST /generate. Boolean flags are pointers
// so that an omitted flag can default to true.
type GenerateRequest struct {
	Word           string   `json:"word"             validate:"required"`
	HSKLevel       int      `json:"hsk_level"        validate:"omitempty,min=1,max=9"`
	SystemLanguage string   `json:"system_language"  validate:"omitempty,oneof=zh en ru"`
	Temperature    *float64 `json:"temperature"      validate:"omitempty,gt=0,lte=2"`
	Validate       *bool    `json:"validate"`
	RetryOnInvalid *bool    `json:"retry_on_invalid"`
	FastResponse   *bool    `json:"fast_response"`
}

// TaskAcceptedResponse is returned when a generation task was queued.
type TaskAcceptedResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

// TaskStatusResponse is the body of GET /task/{id}.
type TaskStatusResponse struct {
	Status    string                    `json:"status"`
	Result    *domain.GeneratedExercise `json:"result,omitempty"`
	Error     string                    `json:"error,omitempty"`
	CreatedAt *time.Time                `json:"created_at,omitempty"`
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text       string `json:"text"        validate:"required"`
	SourceLang string `json:"source_lang" validate:"omitempty,oneof=zh en ru"`
	TargetLang string `json:"target_lang" validate:"required,oneof=zh en ru"`
	NeedPinyin bool   `json:"need_pinyin"`
}

// TranslateResponse carries the translations a request produced.
type TranslateResponse struct {
	Original         string `json:"original"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	Chinese          string `json:"chinese,omitempty"`
	English          string `json:"english,omitempty"`
	Russian          string `json:"russian,omitempty"`
	Pinyin           string `json:"pinyin,omitempty"`
}

// ArchivedExerciseResponse is one entry of GET /api/exercises/{word}.
type ArchivedExerciseResponse struct {
	ID             uuid.UUID                `json:"id"`
	Word           string                   `json:"word"`
	HSKLevel       int                      `json:"hsk_level"`
	SystemLanguage string                   `json:"system_language"`
	Exercise       domain.GeneratedExercise `json:"exercise"`
	CreatedAt      time.Time                `json:"created_at"`
}

// ArchiveResponse is the body of GET /api/exercises/{word}.
type ArchiveResponse struct {
	Word      string                     `json:"word"`
	Exercises []ArchivedExerciseResponse `json:"exercises"`
}

// ServerInfo describes the running server in health responses.
type ServerInfo struct {
	APIVersion   string `json:"api_version"`
	ServerPort   int    `json:"server_port"`
	GeneratorURL string `json:"generator_url"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status            string     `json:"status"`
	ServerTime        time.Time  `json:"server_time"`
	TranslatorEnabled bool       `json:"translator_enabled"`
	ValidatorEnabled  bool       `json:"validator_enabled"`
	GeneratorEnabled  bool       `json:"generator_enabled"`
	AvailableModels   []string   `json:"available_models"`
	ServerInfo        ServerInfo `json:"server_info"`
}

// ConnectionResponse is the body of GET /test-connection.
type ConnectionResponse struct {
	Status     string   `json:"status"`
	Connection bool     `json:"connection"`
	Models     []string `json:"models,omitempty"`
	Message    string   `json:"message,omitempty"`
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
