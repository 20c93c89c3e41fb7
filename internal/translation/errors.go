package translation

import "errors"

var (
	// ErrUnsupportedLanguage is returned for language codes other than zh, en and ru.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnavailable is returned when no translator is configured or the
	// translator failed.
	ErrUnavailable = errors.New("translation unavailable")
)
