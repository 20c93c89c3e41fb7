package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Request asks for the translations of one text. An empty Source is detected
// from the text.
type Request struct {
	Text       string
	Source     string
	Target     string
	NeedPinyin bool
}

// Result holds whatever translations a request produced. Fields the request
// did not ask for stay empty.
type Result struct {
	Original         string
	DetectedLanguage domain.Language
	Chinese          string
	English          string
	Russian          string
	Pinyin           string
}

// Service applies detection and pivot rules on top of a Translator.
type Service struct {
	translator Translator
	romanizer  Romanizer
	logger     *slog.Logger
}

// NewService creates a service. translator may be nil, in which case only
// pinyin is available.
func NewService(translator Translator, romanizer Romanizer, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if romanizer == nil {
		romanizer = NewPinyinRomanizer()
	}
	return &Service{
		translator: translator,
		romanizer:  romanizer,
		logger:     logger.With("component", "translation_service"),
	}, nil
}

// Enabled reports whether a translator is configured.
func (s *Service) Enabled() bool {
	return s.translator != nil
}

// Process translates req.Text into req.Target. Chinese and Russian pivot
// through English, and Chinese to English also yields Russian. Pinyin is added
// when requested and Chinese text is available.
func (s *Service) Process(ctx context.Context, req Request) (Result, error) {
	res := Result{Original: req.Text}

	var source domain.Language
	if req.Source == "" {
		source = DetectLanguage(req.Text)
		res.DetectedLanguage = source
	} else {
		l, ok := domain.ParseLanguage(req.Source)
		if !ok {
			return res, fmt.Errorf("%w: source %q", ErrUnsupportedLanguage, req.Source)
		}
		source = l
	}

	var target domain.Language
	if req.Target != "" {
		l, ok := domain.ParseLanguage(req.Target)
		if !ok {
			return res, fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, req.Target)
		}
		target = l
	}

	if strings.TrimSpace(req.Text) != "" && target != "" && target != source {
		if s.translator == nil {
			return res, ErrUnavailable
		}
		if err := s.translate(ctx, &res, source, target); err != nil {
			return res, err
		}
	}

	if req.NeedPinyin {
		chinese := res.Chinese
		if source == domain.LanguageChinese {
			chinese = req.Text
		}
		if strings.TrimSpace(chinese) != "" {
			res.Pinyin = s.romanizer.Romanize(chinese)
		}
	}
	return res, nil
}

func (s *Service) translate(ctx context.Context, res *Result, source, target domain.Language) error {
	var err error
	switch source {
	case domain.LanguageChinese:
		if res.English, err = s.step(ctx, res.Original, source, domain.LanguageEnglish); err != nil {
			return err
		}
		res.Russian, err = s.step(ctx, res.English, domain.LanguageEnglish, domain.LanguageRussian)

	case domain.LanguageEnglish:
		if target == domain.LanguageChinese {
			res.Chinese, err = s.step(ctx, res.Original, source, target)
		} else {
			res.Russian, err = s.step(ctx, res.Original, source, target)
		}

	case domain.LanguageRussian:
		if res.English, err = s.step(ctx, res.Original, source, domain.LanguageEnglish); err != nil {
			return err
		}
		if target == domain.LanguageChinese {
			res.Chinese, err = s.step(ctx, res.English, domain.LanguageEnglish, target)
		}
	}
	return err
}

func (s *Service) step(ctx context.Context, text string, from, to domain.Language) (string, error) {
	out, err := s.translator.Translate(ctx, text, from, to)
	if err != nil {
		s.logger.WarnContext(ctx, "translation failed", "from", from, "to", to, "error", err)
		return "", fmt.Errorf("%w: %s->%s: %w", ErrUnavailable, from, to, err)
	}
	return out, nil
}

// Enrich returns pinyin and a translation for a complete Chinese sentence.
// The translation is Russian for Russian-speaking learners and English for
// everyone else; it is empty when no translator is configured.
func (s *Service) Enrich(ctx context.Context, sentence string, lang domain.Language) (string, string, error) {
	pinyin := s.romanizer.Romanize(sentence)
	if s.translator == nil || strings.TrimSpace(sentence) == "" {
		return pinyin, "", nil
	}

	english, err := s.step(ctx, sentence, domain.LanguageChinese, domain.LanguageEnglish)
	if err != nil {
		return pinyin, "", err
	}
	if lang != domain.LanguageRussian {
		return pinyin, english, nil
	}
	russian, err := s.step(ctx, english, domain.LanguageEnglish, domain.LanguageRussian)
	if err != nil {
		return pinyin, "", err
	}
	return pinyin, russian, nil
}
