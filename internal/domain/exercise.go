package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// GapMarker is the placeholder a learner fills in.
const GapMarker = "____"

// OptionCount is the number of answer options every exercise carries.
const OptionCount = 4

// HSK level bounds accepted from callers.
const (
	MinHSKLevel = 1
	MaxHSKLevel = 9
)

// ExerciseCandidate is a single fill-in-the-blank exercise recovered from
// generator output. After recovery it always has exactly OptionCount options,
// Answer equals the requested word and is among Options, and SentenceWithGap
// contains GapMarker.
type ExerciseCandidate struct {
	SentenceWithGap string   `json:"sentence_with_gap"`
	Pinyin          string   `json:"pinyin"`
	Translation     string   `json:"translation"`
	Options         []string `json:"options"`
	Answer          string   `json:"answer"`
}

// HasGap reports whether the sentence contains the gap marker.
func (c ExerciseCandidate) HasGap() bool {
	return strings.Contains(c.SentenceWithGap, GapMarker)
}

// AnswerInOptions reports whether Answer is one of Options.
func (c ExerciseCandidate) AnswerInOptions() bool {
	for _, opt := range c.Options {
		if opt == c.Answer {
			return true
		}
	}
	return false
}

// FullSentence returns the sentence with the first gap replaced by the answer.
func (c ExerciseCandidate) FullSentence() string {
	return strings.Replace(c.SentenceWithGap, GapMarker, c.Answer, 1)
}

// Distractors returns the options that differ from the answer, in order.
// Duplicates of the answer are dropped; duplicates among distractors are kept.
func (c ExerciseCandidate) Distractors() []string {
	out := make([]string, 0, len(c.Options))
	for _, opt := range c.Options {
		if opt != c.Answer {
			out = append(out, opt)
		}
	}
	return out
}

// SentenceLength is the sentence length in characters, not bytes.
func (c ExerciseCandidate) SentenceLength() int {
	return utf8.RuneCountInString(c.SentenceWithGap)
}

// Clone returns a deep copy so callers can mutate options safely.
func (c ExerciseCandidate) Clone() ExerciseCandidate {
	c.Options = append([]string(nil), c.Options...)
	return c
}

// ValidationResult is the scorer's verdict on one candidate.
type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Confidence      float64  `json:"confidence"`
	SemanticScore   float64  `json:"semantic_score"`
	DistractorScore float64  `json:"distractor_score"`
	Improvements    []string `json:"improvements,omitempty"`
	IsRetry         bool     `json:"is_retry,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// GeneratedWithFallback marks exercises built from the fallback template.
const GeneratedWithFallback = "fallback"

// GeneratedExercise is what callers receive: the candidate plus provenance
// and, when validation was requested, the scorer's verdict.
type GeneratedExercise struct {
	ExerciseCandidate
	GeneratedWith string            `json:"generated_with,omitempty"`
	Note          string            `json:"note,omitempty"`
	Validation    *ValidationResult `json:"validation,omitempty"`
}

// IsFallback reports whether the exercise came from the fallback template.
func (e GeneratedExercise) IsFallback() bool {
	return e.GeneratedWith == GeneratedWithFallback
}

// Clone returns a deep copy of the exercise.
func (e GeneratedExercise) Clone() GeneratedExercise {
	e.ExerciseCandidate = e.ExerciseCandidate.Clone()
	if e.Validation != nil {
		v := *e.Validation
		v.Improvements = append([]string(nil), v.Improvements...)
		e.Validation = &v
	}
	return e
}

// Confidence returns the validation confidence, or -1 when unvalidated.
func (e GeneratedExercise) Confidence() float64 {
	if e.Validation == nil {
		return -1
	}
	return e.Validation.Confidence
}

// TemplateSentence is the sentence used when no usable sentence exists.
const TemplateSentence = "我喜欢用" + GapMarker + "。"

// FillerOption returns the placeholder used to pad options to OptionCount.
func FillerOption(n int) string {
	return "选项" + strconv.Itoa(n)
}
