package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/hanzi-cloze/internal/api"
	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/events"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/platform/gemini"
	"github.com/phrazzld/hanzi-cloze/internal/platform/inference"
	"github.com/phrazzld/hanzi-cloze/internal/platform/lmstudio"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
	"github.com/phrazzld/hanzi-cloze/internal/service"
	"github.com/phrazzld/hanzi-cloze/internal/task"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

// redisPingTimeout bounds the start-up connectivity check of the translation
// cache.
const redisPingTimeout = 2 * time.Second

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Generator
	generator    generation.Generator
	models       generation.ModelLister
	generatorURL string

	// Pipeline
	scorer     *scoring.Scorer
	translator *translation.Service
	redis      *translation.RedisCache
	controller *generation.Controller

	// Task handling and service layer
	eventEmitter    *events.InMemoryEventEmitter
	tasks           *task.Manager
	exerciseService service.ExerciseService
}

// newApplication builds every component from cfg and starts the task workers.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.generator, app.models, app.generatorURL, err = setupGenerator(ctx, cfg.Generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	logger.Info("generator initialized", "provider", cfg.Generator.Provider, "url", app.generatorURL)

	var sidecar *inference.Client
	if cfg.Inference.BaseURL != "" {
		sidecar, err = inference.New(inference.Config{
			BaseURL:    cfg.Inference.BaseURL,
			Timeout:    cfg.Inference.Timeout(),
			MaxRetries: cfg.Inference.MaxRetries,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize inference client: %w", err)
		}
	}

	app.scorer = newScorer(sidecar, cfg.Scoring.ToScoring(), logger)
	if !app.scorer.Enabled() {
		logger.Warn("no inference sidecar configured, exercises will not be scored")
	}
	if cfg.WatchScoring(logger, app.scorer.UpdateConfig) {
		logger.Info("watching configuration file for scoring changes")
	}

	app.translator, app.redis, err = setupTranslation(ctx, cfg.Translation, sidecar, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translation: %w", err)
	}

	prompts, err := generation.NewPromptBuilder(cfg.Generator.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}
	lexicon, err := generation.LoadLexicon(cfg.Generation.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback lexicon: %w", err)
	}

	app.controller, err = generation.NewController(
		app.generator,
		app.scorer,
		app.translator,
		prompts,
		lexicon,
		generation.Config{
			BaseTemperature:  cfg.Generator.BaseTemperature,
			RetryTemperature: cfg.Generator.RetryTemperature,
			MaxTokens:        cfg.Generator.MaxTokens,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation controller: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	archiveDB, archiveStore, err := setupArchive(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.db = archiveDB
	if archiveStore != nil {
		archive, err := service.NewArchiveHandler(archiveStore, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive handler: %w", err)
		}
		archive.Register(app.eventEmitter)
	}

	app.tasks, err = task.NewManager(app.controller, app.eventEmitter, task.Config{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		TTL:         cfg.Task.TTL(),
		MaxRetries:  cfg.Task.MaxRetries,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task manager: %w", err)
	}

	app.exerciseService, err = service.NewExerciseService(
		app.controller,
		app.tasks,
		archiveStore,
		app.eventEmitter,
		service.ExerciseServiceConfig{SyncMaxRetries: cfg.Generation.SyncMaxRetries},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise service: %w", err)
	}

	app.tasks.Start()

	logger.Info("application initialized",
		"validator_enabled", app.controller.ValidatorEnabled(),
		"translator_enabled", app.translator.Enabled(),
		"archive_enabled", archiveStore != nil)
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) healthDeps() api.HealthDeps {
	deps := api.HealthDeps{
		Models: app.models,
		Info: api.ServerInfo{
			ServerPort:   app.config.Server.Port,
			GeneratorURL: app.generatorURL,
		},
	}
	if app.translator != nil {
		deps.TranslatorEnabled = app.translator.Enabled
	}
	if app.controller != nil {
		deps.ValidatorEnabled = app.controller.ValidatorEnabled
	}
	return deps
}

// setupGenerator builds the generator named by cfg.Provider. The returned URL
// is reported by the health endpoint.
func setupGenerator(
	ctx context.Context,
	cfg config.GeneratorConfig,
	logger *slog.Logger,
) (generation.Generator, generation.ModelLister, string, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := gemini.NewGenerator(ctx, logger, cfg)
		if err != nil {
			return nil, nil, "", err
		}
		return g, g, "gemini:" + cfg.GeminiModel, nil
	default:
		c, err := lmstudio.New(lmstudio.Config{
			BaseURL: cfg.BaseURL,
			Models:  cfg.Models,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout(),
		}, logger)
		if err != nil {
			return nil, nil, "", err
		}
		return c, c, c.BaseURL(), nil
	}
}

// newScorer wires the sidecar into the scorer when one is configured.
func newScorer(sidecar *inference.Client, cfg scoring.Config, logger *slog.Logger) *scoring.Scorer {
	if sidecar == nil {
		return scoring.NewScorer(nil, nil, cfg, logger)
	}
	return scoring.NewScorer(sidecar, sidecar, cfg, logger)
}

// setupTranslation builds the translation service. The sidecar translates
// when translation is enabled, behind a Redis cache when one is reachable.
func setupTranslation(
	ctx context.Context,
	cfg config.TranslationConfig,
	sidecar *inference.Client,
	logger *slog.Logger,
) (*translation.Service, *translation.RedisCache, error) {
	var translator translation.Translator
	var cache *translation.RedisCache

	switch {
	case !cfg.Enabled:
		logger.Info("translation disabled")
	case sidecar == nil:
		logger.Warn("translation enabled but no inference sidecar configured")
	default:
		translator = sidecar
		if cfg.RedisAddr != "" {
			cache = translation.NewRedisCache(cfg.RedisAddr)
			pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
			err := cache.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warn("translation cache unreachable, translating uncached", "error", err)
				_ = cache.Close()
				cache = nil
			} else {
				translator = translation.NewCachedTranslator(translator, cache, cfg.CacheTTL(), logger)
			}
		}
	}

	svc, err := translation.NewService(translator, translation.NewPinyinRomanizer(), logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, cache, nil
}

// cleanup stops the workers and releases external connections.
func (app *application) cleanup() {
	if app.tasks != nil {
		app.tasks.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing translation cache", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
