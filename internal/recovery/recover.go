package recovery

import (
	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Result is the outcome of Recover.
type Result struct {
	Candidate domain.ExerciseCandidate
	// Tier names the strategy that produced the fields.
	Tier Tier
	// Diagnostics lists schema violations of the decoded object, when a JSON
	// tier succeeded. They never affect the candidate.
	Diagnostics []string
}

// Recover extracts an exercise for word from raw generator output. It is
// total: every input, including the empty string, yields a candidate that
// satisfies the exercise invariants.
func Recover(raw, word string) Result {
	text := StripNonPrintable(raw)

	for _, t := range tiers {
		out := t.run(text, word)
		if !out.IsFound() {
			continue
		}
		return Result{
			Candidate:   normalize(out.fields, word),
			Tier:        t.name,
			Diagnostics: Diagnose(out.object),
		}
	}

	return Result{
		Candidate: normalize(rawExercise{}, word),
		Tier:      TierSynthesized,
	}
}
