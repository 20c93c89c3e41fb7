package translation

import (
	"context"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Translator translates text between two languages in a single step.
type Translator interface {
	Translate(ctx context.Context, text string, from, to domain.Language) (string, error)
}

// Romanizer renders Chinese text in pinyin.
type Romanizer interface {
	Romanize(text string) string
}

// PinyinRomanizer romanizes with tone marks, one syllable per Han character.
// Runs of other characters are kept as they are.
type PinyinRomanizer struct {
	args pinyin.Args
}

// NewPinyinRomanizer returns a romanizer using tone-mark style.
func NewPinyinRomanizer() *PinyinRomanizer {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	return &PinyinRomanizer{args: args}
}

// Romanize returns space-separated syllables, e.g. "你好，世界" becomes
// "nǐ hǎo ， shì jiè".
func (p *PinyinRomanizer) Romanize(text string) string {
	var (
		parts []string
		run   []rune
		han   bool
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		if han {
			for _, syllables := range pinyin.Pinyin(string(run), p.args) {
				if len(syllables) > 0 {
					parts = append(parts, syllables[0])
				}
			}
		} else if s := strings.TrimSpace(string(run)); s != "" {
			parts = append(parts, s)
		}
		run = run[:0]
	}

	for _, r := range text {
		isHan := unicode.Is(unicode.Han, r)
		if len(run) > 0 && isHan != han {
			flush()
		}
		han = isHan
		run = append(run, r)
	}
	flush()
	return strings.Join(parts, " ")
}
