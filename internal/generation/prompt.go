package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

//go:embed templates/exercise.tmpl
var defaultPromptTemplate string

// PromptData is the data passed to the prompt template.
type PromptData struct {
	Word           string
	HSKLevel       int
	SystemLanguage domain.Language
	LanguageName   string
}

// PromptBuilder renders exercise prompts from a text template.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the template at path, or the built-in template
// when path is empty.
func NewPromptBuilder(path string) (*PromptBuilder, error) {
	src := defaultPromptTemplate
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, path, err)
		}
		src = string(content)
	}

	tmpl, err := template.New("exercise").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for one request.
func (b *PromptBuilder) Build(word string, hskLevel int, lang domain.Language) (string, error) {
	data := PromptData{
		Word:           word,
		HSKLevel:       hskLevel,
		SystemLanguage: lang,
		LanguageName:   languageName(lang),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func languageName(lang domain.Language) string {
	switch lang {
	case domain.LanguageEnglish:
		return "English"
	case domain.LanguageChinese:
		return "Chinese"
	default:
		return "Russian"
	}
}
