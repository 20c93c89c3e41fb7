package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/recovery"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

// Validator scores a recovered candidate. *scoring.Scorer implements it.
type Validator interface {
	Score(ctx context.Context, c domain.ExerciseCandidate) domain.ValidationResult
}

// gapAnalyzer is implemented by validators that can rate alternative gap
// positions.
type gapAnalyzer interface {
	AnalyzeGapPlacement(ctx context.Context, fullSentence, word string) []scoring.GapPosition
}

// Enricher supplies pinyin and a translation for a complete Chinese sentence.
type Enricher interface {
	Enrich(ctx context.Context, sentence string, lang domain.Language) (pinyin, translation string, err error)
}

// Config holds the sampling parameters of the controller.
type Config struct {
	BaseTemperature  float64
	RetryTemperature float64
	MaxTokens        int
}

// DefaultConfig returns the sampling defaults.
func DefaultConfig() Config {
	return Config{
		BaseTemperature:  0.7,
		RetryTemperature: 0.9,
		MaxTokens:        800,
	}
}

// Request describes one exercise to generate.
type Request struct {
	Word           string
	HSKLevel       int
	SystemLanguage domain.Language
	// Temperature overrides the base temperature of the first attempt when
	// positive.
	Temperature    float64
	Validate       bool
	RetryOnInvalid bool
	MaxRetries     int
}

// Sampling temperature bounds. A regeneration runs at least
// RetryTemperatureStep hotter than the first attempt, never above
// MaxTemperature.
const (
	MaxTemperature       = 2.0
	RetryTemperatureStep = 0.2
)

// FallbackNote is attached to exercises built without the generator.
const FallbackNote = "Generated using fallback method (generator unavailable)"

var tracer = otel.Tracer("github.com/phrazzld/hanzi-cloze/internal/generation")

// Controller runs the generate, recover, score and retry pipeline.
type Controller struct {
	generator Generator
	validator Validator
	enricher  Enricher
	prompts   *PromptBuilder
	lexicon   Lexicon
	cfg       Config
	logger    *slog.Logger
}

// NewController wires a controller. validator and enricher may be nil; the
// generator and prompt builder are required.
func NewController(
	generator Generator,
	validator Validator,
	enricher Enricher,
	prompts *PromptBuilder,
	lexicon Lexicon,
	cfg Config,
	logger *slog.Logger,
) (*Controller, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", ErrInvalidConfig)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt builder cannot be nil", ErrInvalidConfig)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.BaseTemperature <= 0 {
		cfg.BaseTemperature = DefaultConfig().BaseTemperature
	}
	if cfg.RetryTemperature <= 0 {
		cfg.RetryTemperature = DefaultConfig().RetryTemperature
	}
	if lexicon.Sentence == "" {
		lexicon.Sentence = domain.TemplateSentence
	}

	return &Controller{
		generator: generator,
		validator: validator,
		enricher:  enricher,
		prompts:   prompts,
		lexicon:   lexicon,
		cfg:       cfg,
		logger:    logger.With("component", "generation_controller"),
	}, nil
}

// ValidatorEnabled reports whether candidates can be scored.
func (c *Controller) ValidatorEnabled() bool {
	if c.validator == nil {
		return false
	}
	if s, ok := c.validator.(*scoring.Scorer); ok {
		return s.Enabled()
	}
	return true
}

// Generator returns the underlying generator.
func (c *Controller) Generator() Generator {
	return c.generator
}

// GenerateAndValidate produces an exercise for req.Word. The only error is
// ErrEmptyWord: generator failures are absorbed into a fallback exercise.
func (c *Controller) GenerateAndValidate(ctx context.Context, req Request) (domain.GeneratedExercise, error) {
	req.Word = strings.TrimSpace(req.Word)
	if req.Word == "" {
		return domain.GeneratedExercise{}, ErrEmptyWord
	}
	req = c.withDefaults(req)

	ctx, span := tracer.Start(ctx, "generation.GenerateAndValidate", trace.WithAttributes(
		attribute.String("exercise.word", req.Word),
		attribute.Int("exercise.hsk_level", req.HSKLevel),
		attribute.Int("exercise.max_retries", req.MaxRetries),
	))
	defer span.End()

	log := c.logger.With("word", req.Word, "hsk_level", req.HSKLevel)

	best, err := c.attempt(ctx, req, req.Temperature, 1)
	if err != nil {
		log.WarnContext(ctx, "generator unavailable, using fallback exercise", "error", err)
		span.SetAttributes(attribute.Bool("exercise.fallback", true))
		return c.fallback(ctx, req), nil
	}

	retryTemp := c.retryTemperature(req.Temperature)
	for n := 1; n <= req.MaxRetries && c.shouldRetry(req, best); n++ {
		log.InfoContext(ctx, "exercise failed validation, regenerating",
			"attempt", n+1,
			"confidence", best.Confidence(),
			"temperature", retryTemp)

		retry, err := c.attempt(ctx, req, retryTemp, n+1)
		if err != nil {
			log.WarnContext(ctx, "retry attempt failed", "attempt", n+1, "error", err)
			continue
		}
		if retry.Validation != nil {
			retry.Validation.IsRetry = true
		}
		if retry.Confidence() > best.Confidence() {
			log.InfoContext(ctx, "using regenerated exercise with higher confidence",
				"previous", best.Confidence(),
				"confidence", retry.Confidence())
			best = retry
		}
	}

	span.SetAttributes(
		attribute.Float64("exercise.confidence", best.Confidence()),
		attribute.String("exercise.generated_with", best.GeneratedWith),
	)
	return best, nil
}

func (c *Controller) withDefaults(req Request) Request {
	if req.Temperature <= 0 {
		req.Temperature = c.cfg.BaseTemperature
	}
	if req.HSKLevel == 0 {
		req.HSKLevel = domain.MinHSKLevel
	}
	if req.SystemLanguage == "" {
		req.SystemLanguage = domain.DefaultSystemLanguage
	}
	if req.MaxRetries < 0 {
		req.MaxRetries = 0
	}
	return req
}

// retryTemperature is the configured retry temperature, raised above first
// when the first attempt already ran hotter.
func (c *Controller) retryTemperature(first float64) float64 {
	return min(max(c.cfg.RetryTemperature, first+RetryTemperatureStep), MaxTemperature)
}

func (c *Controller) shouldRetry(req Request, ex domain.GeneratedExercise) bool {
	return req.Validate && req.RetryOnInvalid && ex.Validation != nil && !ex.Validation.IsValid
}

// attempt runs one generator round trip and everything after it.
func (c *Controller) attempt(ctx context.Context, req Request, temperature float64, n int) (domain.GeneratedExercise, error) {
	ctx, span := tracer.Start(ctx, "generation.attempt", trace.WithAttributes(
		attribute.Int("attempt", n),
		attribute.Float64("temperature", temperature),
	))
	defer span.End()

	text, err := c.prompts.Build(req.Word, req.HSKLevel, req.SystemLanguage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt rendering failed")
		return domain.GeneratedExercise{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	out, err := c.generator.Generate(ctx, Prompt{
		Text:        text,
		Temperature: temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generator call failed")
		return domain.GeneratedExercise{}, fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}

	rec := recovery.Recover(out.Text, req.Word)
	span.SetAttributes(attribute.String("recovery.tier", string(rec.Tier)))
	if len(rec.Diagnostics) > 0 {
		c.logger.DebugContext(ctx, "generator output deviated from the exercise schema",
			"word", req.Word,
			"tier", rec.Tier,
			"issues", rec.Diagnostics)
	}

	ex := domain.GeneratedExercise{
		ExerciseCandidate: rec.Candidate,
		GeneratedWith:     out.Model,
	}
	c.enrich(ctx, &ex, req.SystemLanguage)

	if req.Validate && c.validator != nil {
		v := c.validator.Score(ctx, ex.ExerciseCandidate)
		ex.Validation = &v
		span.SetAttributes(attribute.Float64("exercise.confidence", v.Confidence))
		if !v.IsValid {
			c.checkGapPlacement(ctx, ex.ExerciseCandidate)
		}
	}
	return ex, nil
}

// enrich fills a missing pinyin or translation from the enricher.
func (c *Controller) enrich(ctx context.Context, ex *domain.GeneratedExercise, lang domain.Language) {
	if c.enricher == nil || (ex.Pinyin != "" && ex.Translation != "") {
		return
	}
	pinyin, translation, err := c.enricher.Enrich(ctx, ex.FullSentence(), lang)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to enrich exercise", "error", err, "word", ex.Answer)
	}
	if ex.Pinyin == "" && pinyin != "" {
		ex.Pinyin = pinyin
	}
	if ex.Translation == "" && translation != "" {
		ex.Translation = translation
	}
}

// checkGapPlacement logs when another occurrence of the answer would make a
// better gap than the one chosen.
func (c *Controller) checkGapPlacement(ctx context.Context, cand domain.ExerciseCandidate) {
	analyzer, ok := c.validator.(gapAnalyzer)
	if !ok {
		return
	}
	positions := analyzer.AnalyzeGapPlacement(ctx, cand.FullSentence(), cand.Answer)
	if len(positions) < 2 {
		return
	}
	idx := strings.Index(cand.SentenceWithGap, domain.GapMarker)
	if idx < 0 {
		return
	}
	chosen := utf8.RuneCountInString(cand.SentenceWithGap[:idx])
	if positions[0].Position != chosen {
		c.logger.InfoContext(ctx, "a different gap position scores higher",
			"word", cand.Answer,
			"chosen_position", chosen,
			"best_position", positions[0].Position,
			"best_score", positions[0].Score)
	}
}
