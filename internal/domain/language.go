package domain

// Language is a two-letter language code understood by the service.
type Language string

// Supported languages.
const (
	LanguageChinese Language = "zh"
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

// DefaultSystemLanguage is used when a request does not name one.
const DefaultSystemLanguage = LanguageRussian

// SupportedLanguages lists every code accepted by the translation endpoint.
var SupportedLanguages = []Language{LanguageChinese, LanguageEnglish, LanguageRussian}

// ParseLanguage returns the language for code, or false when unsupported.
func ParseLanguage(code string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}
