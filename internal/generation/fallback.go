package generation

import (
	"context"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// fallbackScore is reported for every sub-score of a fallback exercise.
const fallbackScore = 0.5

// fallback builds a template exercise for req.Word without the generator.
// Pinyin and translation come from the enricher when one is configured.
func (c *Controller) fallback(ctx context.Context, req Request) domain.GeneratedExercise {
	ex := domain.GeneratedExercise{
		ExerciseCandidate: domain.ExerciseCandidate{
			SentenceWithGap: c.lexicon.Sentence,
			Options:         c.lexicon.Options(req.Word),
			Answer:          req.Word,
		},
		GeneratedWith: domain.GeneratedWithFallback,
		Note:          FallbackNote,
	}

	c.enrich(ctx, &ex, req.SystemLanguage)
	if ex.Translation == "" {
		ex.Translation = c.lexicon.Placeholder(req.Word, req.SystemLanguage)
	}

	if req.Validate {
		ex.Validation = &domain.ValidationResult{
			IsValid:         true,
			Confidence:      fallbackScore,
			SemanticScore:   fallbackScore,
			DistractorScore: fallbackScore,
		}
	}
	return ex
}
