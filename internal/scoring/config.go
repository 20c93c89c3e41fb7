package scoring

import (
	"fmt"
	"math"
)

// Config holds the named scoring parameters. All of them can be changed at
// runtime through Scorer.UpdateConfig.
type Config struct {
	// ValidThreshold is the confidence a candidate must exceed to be valid.
	ValidThreshold float64
	// TargetSimilarity is the mean answer/distractor cosine similarity that
	// earns a perfect distractor score.
	TargetSimilarity float64
	SemanticWeight   float64
	DistractorWeight float64
	// MaxSentenceLength is measured in characters.
	MaxSentenceLength int

	SemanticHintBelow   float64
	DistractorHintBelow float64

	// Sub-score defaults used when a model call fails.
	DefaultSemantic   float64
	DefaultDistractor float64

	// UnavailableConfidence is reported when the scorer cannot run at all.
	UnavailableConfidence float64

	MaskToken string
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		ValidThreshold:        0.6,
		TargetSimilarity:      0.6,
		SemanticWeight:        0.6,
		DistractorWeight:      0.4,
		MaxSentenceLength:     200,
		SemanticHintBelow:     0.7,
		DistractorHintBelow:   0.5,
		DefaultSemantic:       0.7,
		DefaultDistractor:     0.6,
		UnavailableConfidence: 0.5,
		MaskToken:             "[MASK]",
	}
}

// Validate checks that the parameters keep confidence within [0,1].
func (c Config) Validate() error {
	unit := map[string]float64{
		"valid_threshold":        c.ValidThreshold,
		"target_similarity":      c.TargetSimilarity,
		"semantic_weight":        c.SemanticWeight,
		"distractor_weight":      c.DistractorWeight,
		"semantic_hint_below":    c.SemanticHintBelow,
		"distractor_hint_below":  c.DistractorHintBelow,
		"default_semantic":       c.DefaultSemantic,
		"default_distractor":     c.DefaultDistractor,
		"unavailable_confidence": c.UnavailableConfidence,
	}
	for name, v := range unit {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfig, name, v)
		}
	}
	if sum := c.SemanticWeight + c.DistractorWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}
	if c.MaxSentenceLength <= 0 {
		return fmt.Errorf("%w: max_sentence_length must be positive", ErrInvalidConfig)
	}
	if c.MaskToken == "" {
		return fmt.Errorf("%w: mask_token is required", ErrInvalidConfig)
	}
	return nil
}
