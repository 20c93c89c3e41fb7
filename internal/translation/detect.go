package translation

import (
	"unicode/utf8"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// DetectLanguage guesses the language of text from its characters: more than
// 20% CJK ideographs is Chinese, more than 20% Cyrillic letters is Russian,
// anything else is English.
func DetectLanguage(text string) domain.Language {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return domain.LanguageEnglish
	}

	var cjk, cyrillic int
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			cjk++
		case r >= 0x0410 && r <= 0x044F:
			cyrillic++
		}
	}

	switch {
	case float64(cjk) > float64(total)*0.2:
		return domain.LanguageChinese
	case float64(cyrillic) > float64(total)*0.2:
		return domain.LanguageRussian
	default:
		return domain.LanguageEnglish
	}
}
