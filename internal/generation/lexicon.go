package generation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

//go:embed templates/lexicon.yaml
var defaultLexicon []byte

// Lexicon holds the material for fallback exercises.
type Lexicon struct {
	// Sentence must contain the gap marker.
	Sentence    string   `yaml:"sentence"`
	CommonWords []string `yaml:"common_words"`
	// PlaceholderTranslations are keyed by language code; {word} is replaced
	// with the target word. Used only when no translator is available.
	PlaceholderTranslations map[string]string `yaml:"placeholder_translations"`
}

// LoadLexicon reads a YAML lexicon from path, or the built-in one when path
// is empty.
func LoadLexicon(path string) (Lexicon, error) {
	data := defaultLexicon
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Lexicon{}, fmt.Errorf("%w: failed to read lexicon from %s: %v", ErrInvalidConfig, path, err)
		}
		data = content
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("%w: failed to parse lexicon: %v", ErrInvalidConfig, err)
	}
	if lex.Sentence == "" {
		lex.Sentence = domain.TemplateSentence
	}
	if !strings.Contains(lex.Sentence, domain.GapMarker) {
		return Lexicon{}, fmt.Errorf("%w: lexicon sentence %q has no gap marker", ErrInvalidConfig, lex.Sentence)
	}
	return lex, nil
}

// Options returns word followed by common words other than word, padded
// with filler values to the option count.
func (l Lexicon) Options(word string) []string {
	opts := make([]string, 0, domain.OptionCount)
	opts = append(opts, word)
	for _, w := range l.CommonWords {
		if len(opts) == domain.OptionCount {
			break
		}
		if w != word {
			opts = append(opts, w)
		}
	}
	for len(opts) < domain.OptionCount {
		opts = append(opts, domain.FillerOption(len(opts)))
	}
	return opts
}

// Placeholder returns the canned translation for lang, or "".
func (l Lexicon) Placeholder(word string, lang domain.Language) string {
	tmpl, ok := l.PlaceholderTranslations[string(lang)]
	if !ok {
		tmpl = l.PlaceholderTranslations[string(domain.LanguageEnglish)]
	}
	return strings.ReplaceAll(tmpl, "{word}", word)
}
