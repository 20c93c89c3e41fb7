package scoring_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/hanzi-cloze/internal/mocks"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

func TestAnalyzeGapPlacement(t *testing.T) {
	t.Parallel()

	predictor := &mocks.MockPredictor{
		PredictMaskedFn: func(_ context.Context, masked string) ([]scoring.Prediction, error) {
			if strings.HasPrefix(masked, "我去[MASK]") {
				return []scoring.Prediction{{Token: "学校"}, {Token: "公司"}, {Token: "银行"}, {Token: "医院"}}, nil
			}
			return []scoring.Prediction{{Token: "银行"}, {Token: "这里"}}, nil
		},
	}
	s := scoring.NewScorer(predictor, &mocks.MockEmbedder{}, scoring.DefaultConfig(), testLogger())

	got := s.AnalyzeGapPlacement(context.Background(), "我去银行，银行很近。", "银行")

	assert.Equal(t, []scoring.GapPosition{
		{Position: 5, Score: 1},
		{Position: 2, Score: 0.5},
	}, got)
	assert.Equal(t, []string{"我去[MASK]，银行很近。", "我去银行，[MASK]很近。"}, predictor.MaskedInputs())
}

func TestAnalyzeGapPlacement_NoOccurrenceOrFailure(t *testing.T) {
	t.Parallel()

	predictor := &mocks.MockPredictor{Err: errors.New("offline")}
	s := scoring.NewScorer(predictor, nil, scoring.DefaultConfig(), testLogger())

	assert.Empty(t, s.AnalyzeGapPlacement(context.Background(), "今天天气很好。", "银行"))
	assert.Zero(t, predictor.Calls())

	assert.Nil(t, s.AnalyzeGapPlacement(context.Background(), "我去银行。", "银行"))
	assert.Equal(t, 1, predictor.Calls())

	unwired := scoring.NewScorer(nil, nil, scoring.DefaultConfig(), testLogger())
	assert.Nil(t, unwired.AnalyzeGapPlacement(context.Background(), "我去银行。", "银行"))
}
