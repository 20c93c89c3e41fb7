package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Prediction is one filler proposed by the masked-LM for a masked position.
type Prediction struct {
	Token       string  `json:"token"`
	Probability float64 `json:"probability"`
}

// MaskedPredictor ranks fillers for the single mask token in a sentence,
// most probable first.
type MaskedPredictor interface {
	PredictMasked(ctx context.Context, masked string) ([]Prediction, error)
}

// Embedder returns one context vector per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Improvement hints attached to low-scoring candidates.
const (
	HintSemantic   = "The sentence does not read naturally with the chosen word"
	HintDistractor = "The distractors are not close enough to, or too close to, the answer in context"
)

// Reasons reported alongside structural rejections and degraded results.
const (
	ReasonTooFewOptions   = "fewer than 2 options"
	ReasonTooLong         = "sentence exceeds the length limit"
	ReasonMissingGap      = "sentence has no gap marker"
	ReasonAnswerNotOption = "answer is not among the options"
	ReasonUnavailable     = "scorer unavailable"
)

var tracer = otel.Tracer("github.com/phrazzld/hanzi-cloze/internal/scoring")

// Scorer judges exercise candidates with a masked-LM and an embedding model.
// A Scorer without a predictor or embedder still works: every candidate that
// passes the structural checks is reported valid with UnavailableConfidence.
type Scorer struct {
	predictor MaskedPredictor
	embedder  Embedder
	cfg       atomic.Pointer[Config]
	logger    *slog.Logger
}

// NewScorer creates a Scorer. predictor and embedder may be nil.
func NewScorer(predictor MaskedPredictor, embedder Embedder, cfg Config, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scorer{
		predictor: predictor,
		embedder:  embedder,
		logger:    logger.With("component", "scorer"),
	}
	s.cfg.Store(&cfg)
	return s
}

// Config returns the parameters currently in effect.
func (s *Scorer) Config() Config {
	return *s.cfg.Load()
}

// UpdateConfig swaps the parameters used by subsequent Score calls.
func (s *Scorer) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg.Store(&cfg)
	s.logger.Info("scoring parameters updated",
		"valid_threshold", cfg.ValidThreshold,
		"target_similarity", cfg.TargetSimilarity)
	return nil
}

// Enabled reports whether model-backed scoring is available.
func (s *Scorer) Enabled() bool {
	return s != nil && s.predictor != nil && s.embedder != nil
}

// Score returns the verdict for c. It never fails: model errors fall back to
// default sub-scores and an unusable scorer yields a permissive result.
func (s *Scorer) Score(ctx context.Context, c domain.ExerciseCandidate) (result domain.ValidationResult) {
	cfg := s.Config()

	ctx, span := tracer.Start(ctx, "scoring.Score",
		trace.WithAttributes(attribute.String("exercise.answer", c.Answer)))
	defer func() {
		span.SetAttributes(
			attribute.Float64("exercise.confidence", result.Confidence),
			attribute.Bool("exercise.valid", result.IsValid),
		)
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scorer panicked", "panic", r, "answer", c.Answer)
			span.SetStatus(codes.Error, "scorer panic")
			result = unavailable(cfg, fmt.Sprintf("%s: %v", ReasonUnavailable, r))
		}
	}()

	if reason := precheck(c, cfg); reason != "" {
		s.logger.Warn("candidate failed structural checks",
			"reason", reason,
			"sentence", c.SentenceWithGap,
			"options", len(c.Options))
		return domain.ValidationResult{Reason: reason}
	}

	if !s.Enabled() {
		return unavailable(cfg, ReasonUnavailable)
	}

	semantic, distractor := cfg.DefaultSemantic, cfg.DefaultDistractor
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := guard(func() (float64, error) { return s.semanticScore(gctx, c, cfg) })
		if err != nil {
			s.logger.Warn("semantic score unavailable, using default",
				"error", err, "default", cfg.DefaultSemantic)
			return nil
		}
		semantic = v
		return nil
	})
	g.Go(func() error {
		v, err := guard(func() (float64, error) { return s.distractorScore(gctx, c) })
		if err != nil {
			s.logger.Warn("distractor score unavailable, using default",
				"error", err, "default", cfg.DefaultDistractor)
			return nil
		}
		distractor = clamp01(1 - math.Abs(v-cfg.TargetSimilarity))
		return nil
	})
	_ = g.Wait()

	result = combine(semantic, distractor, cfg)
	s.logger.Debug("candidate scored",
		"sentence", c.SentenceWithGap,
		"answer", c.Answer,
		"semantic_score", result.SemanticScore,
		"distractor_score", result.DistractorScore,
		"confidence", result.Confidence,
		"is_valid", result.IsValid)
	return result
}

// precheck returns a non-empty reason when c fails the cheap structural checks.
func precheck(c domain.ExerciseCandidate, cfg Config) string {
	switch {
	case len(c.Options) < 2:
		return ReasonTooFewOptions
	case c.SentenceLength() > cfg.MaxSentenceLength:
		return ReasonTooLong
	case !c.HasGap():
		return ReasonMissingGap
	case !c.AnswerInOptions():
		return ReasonAnswerNotOption
	}
	return ""
}

// semanticScore masks the answer in the full sentence and checks whether the
// model proposes it.
func (s *Scorer) semanticScore(ctx context.Context, c domain.ExerciseCandidate, cfg Config) (float64, error) {
	masked := strings.Replace(c.FullSentence(), c.Answer, cfg.MaskToken, 1)
	preds, err := s.predictor.PredictMasked(ctx, masked)
	if err != nil {
		return 0, fmt.Errorf("predict masked: %w", err)
	}
	if len(preds) == 0 {
		return 0, ErrNoPredictions
	}
	for _, p := range preds {
		if tokenMatches(c.Answer, p.Token) {
			return clamp01(p.Probability), nil
		}
	}
	return clamp01(1 - preds[0].Probability), nil
}

// distractorScore returns the mean cosine similarity between the answer and
// each distractor.
func (s *Scorer) distractorScore(ctx context.Context, c domain.ExerciseCandidate) (float64, error) {
	distractors := c.Distractors()
	if len(distractors) == 0 {
		return 0, ErrNoDistractors
	}
	texts := append([]string{c.Answer}, distractors...)
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed options: %w", err)
	}
	if len(vecs) != len(texts) {
		return 0, fmt.Errorf("%w: got %d vectors for %d texts", ErrBadEmbeddings, len(vecs), len(texts))
	}
	return meanSimilarity(vecs)
}

func combine(semantic, distractor float64, cfg Config) domain.ValidationResult {
	semantic, distractor = clamp01(semantic), clamp01(distractor)
	confidence := clamp01(cfg.SemanticWeight*semantic + cfg.DistractorWeight*distractor)

	res := domain.ValidationResult{
		IsValid:         confidence > cfg.ValidThreshold,
		Confidence:      confidence,
		SemanticScore:   semantic,
		DistractorScore: distractor,
	}
	if semantic < cfg.SemanticHintBelow {
		res.Improvements = append(res.Improvements, HintSemantic)
	}
	if distractor < cfg.DistractorHintBelow {
		res.Improvements = append(res.Improvements, HintDistractor)
	}
	return res
}

func unavailable(cfg Config, reason string) domain.ValidationResult {
	return domain.ValidationResult{
		IsValid:    true,
		Confidence: cfg.UnavailableConfidence,
		Reason:     reason,
	}
}

// tokenMatches accepts a prediction that contains the answer or is part of it.
func tokenMatches(answer, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return strings.Contains(answer, token) || strings.Contains(token, answer)
}

// guard converts a panic in fn into an error.
func guard(fn func() (float64, error)) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
