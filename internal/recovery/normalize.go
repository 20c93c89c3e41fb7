package recovery

import (
	"strings"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// normalize turns recovered fields into a candidate that satisfies the
// exercise invariants. Options are deliberately not deduplicated.
func normalize(r rawExercise, word string) domain.ExerciseCandidate {
	c := domain.ExerciseCandidate{
		SentenceWithGap: strings.TrimSpace(r.sentence),
		Pinyin:          strings.TrimSpace(r.pinyin),
		Translation:     strings.TrimSpace(r.translation),
		Answer:          word,
	}
	c.Options = fitOptions(r.options, word)
	c.SentenceWithGap = repairGap(c.SentenceWithGap, word, c.Options)
	return c
}

// fitOptions truncates to OptionCount, puts the answer at index 0 when it is
// missing, then pads with filler values.
func fitOptions(in []string, answer string) []string {
	opts := make([]string, 0, domain.OptionCount)
	for _, o := range in {
		if o = cleanOption(o); o != "" {
			opts = append(opts, o)
		}
		if len(opts) == domain.OptionCount {
			break
		}
	}

	if !contains(opts, answer) {
		if len(opts) == 0 {
			opts = append(opts, answer)
		} else {
			opts[0] = answer
		}
	}

	for len(opts) < domain.OptionCount {
		opts = append(opts, domain.FillerOption(len(opts)))
	}
	return opts
}

// repairGap makes sure the sentence contains the canonical gap marker,
// replacing the word or, failing that, the first option found in it.
func repairGap(sentence, word string, options []string) string {
	sentence = gapRunRe.ReplaceAllString(sentence, domain.GapMarker)
	if strings.Contains(sentence, domain.GapMarker) {
		return sentence
	}
	if sentence != "" {
		if word != "" && strings.Contains(sentence, word) {
			return strings.Replace(sentence, word, domain.GapMarker, 1)
		}
		for _, opt := range options {
			if opt != "" && strings.Contains(sentence, opt) {
				return strings.Replace(sentence, opt, domain.GapMarker, 1)
			}
		}
	}
	return domain.TemplateSentence
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
