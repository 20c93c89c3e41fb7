package scoring

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

// GapPosition rates one occurrence of a word as the place to cut the gap.
type GapPosition struct {
	// Position is the character offset of the occurrence.
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// AnalyzeGapPlacement masks every occurrence of word in fullSentence in turn
// and scores it by how high the model ranks word for that position
// (1 - rank/len(predictions), 0 when absent). Results are sorted best first.
// Any model failure yields nil.
func (s *Scorer) AnalyzeGapPlacement(ctx context.Context, fullSentence, word string) []GapPosition {
	if s.predictor == nil || word == "" {
		return nil
	}
	cfg := s.Config()

	ctx, span := tracer.Start(ctx, "scoring.AnalyzeGapPlacement")
	defer span.End()

	var positions []GapPosition
	for offset := 0; ; {
		idx := strings.Index(fullSentence[offset:], word)
		if idx < 0 {
			break
		}
		start := offset + idx
		masked := fullSentence[:start] + cfg.MaskToken + fullSentence[start+len(word):]

		preds, err := s.predictor.PredictMasked(ctx, masked)
		if err != nil {
			s.logger.Warn("gap placement analysis failed", "error", err, "word", word)
			return nil
		}
		positions = append(positions, GapPosition{
			Position: utf8.RuneCountInString(fullSentence[:start]),
			Score:    rankScore(preds, word),
		})
		offset = start + len(word)
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Score > positions[j].Score
	})
	return positions
}

func rankScore(preds []Prediction, word string) float64 {
	for i, p := range preds {
		if tokenMatches(word, p.Token) {
			return 1 - float64(i)/float64(len(preds))
		}
	}
	return 0
}
