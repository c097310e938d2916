// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Serve mode: scheduler loop plus HTTP server (health, metrics, manual trigger)
//   - Once mode: generate a single post and exit
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/assemble"
	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
	"github.com/jbplumbing/autopost/internal/gen"
	"github.com/jbplumbing/autopost/internal/images"
	"github.com/jbplumbing/autopost/internal/pipeline"
	"github.com/jbplumbing/autopost/internal/platform/config"
	"github.com/jbplumbing/autopost/internal/platform/observability"
	"github.com/jbplumbing/autopost/internal/scheduler"
	db "github.com/jbplumbing/autopost/internal/storage"
	"github.com/jbplumbing/autopost/internal/targeting"
)

const appEnvLocal = "local"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// RunServe runs the scheduler loop and the HTTP server until the context is
// canceled.
func (a *App) RunServe(ctx context.Context) error {
	a.logger.Info().Msg("Starting serve mode")

	pipe, err := a.buildPipeline(ctx)
	if err != nil {
		return err
	}

	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.cfg.TriggerSecret, pipe, a.logger)

	go func() {
		if err := srv.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("http server error")
		}
	}()

	sched := scheduler.New(a.database, pipe, a.cfg.SchedulerTickInterval, a.logger)

	return sched.Run(ctx)
}

// RunOnce generates a single post and exits.
func (a *App) RunOnce(ctx context.Context) error {
	a.logger.Info().Msg("Starting once mode")

	pipe, err := a.buildPipeline(ctx)
	if err != nil {
		return err
	}

	result := pipe.GeneratePost(ctx, domain.JobTypeManual)
	if !result.Success {
		return fmt.Errorf("generation failed: %s", result.Error)
	}

	a.logger.Info().
		Str("keyword", result.Keyword).
		Str("title", result.Title).
		Msg("post generated")

	return nil
}

func (a *App) buildPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	registry, err := a.newRegistry(ctx)
	if err != nil {
		return nil, err
	}

	selector := targeting.NewSelector(targeting.DefaultCatalog(), a.database, a.logger)
	prompts := gen.NewPromptBuilder(newRNG())
	assembler := assemble.New(a.cfg.BusinessName, a.cfg.BusinessPhone)

	return pipeline.New(
		selector,
		registry,
		prompts,
		a.newImageService(),
		assembler,
		a.database,
		a.cfg.GenTemperature,
		a.logger,
	), nil
}

func (a *App) newRegistry(ctx context.Context) (*gen.Registry, error) {
	registry := gen.NewRegistry(gen.Options{
		MaxRetries:   a.cfg.GenMaxRetries,
		BaseWait:     a.cfg.RetryBaseWait(),
		RateLimitRPS: a.cfg.GenRateLimitRPS,
	}, a.logger)

	registered := false

	if a.cfg.GroqAPIKey != "" {
		registry.Register(gen.NewGroqProvider(a.cfg.GroqAPIKey, a.cfg.GroqBaseURL))

		registered = true
	}

	if a.cfg.GeminiAPIKey != "" {
		gemini, err := gen.NewGeminiProvider(ctx, a.cfg.GeminiAPIKey)
		if err != nil {
			a.logger.Warn().Err(err).Msg("gemini provider init failed, continuing without it")
		} else {
			registry.Register(gemini)

			registered = true
		}
	}

	if !registered {
		if a.cfg.AppEnv != appEnvLocal {
			return nil, fmt.Errorf("generation backends: %w", apperrors.ErrMissingCredentials)
		}

		a.logger.Warn().Msg("no backend keys configured, using mock provider")
		registry.Register(gen.NewMockProvider())
	}

	return registry, nil
}

func (a *App) newImageService() *images.Service {
	compositor, err := images.NewCompositor(a.cfg.FontPath, a.cfg.BusinessName, a.cfg.BusinessPhone)
	if err != nil {
		a.logger.Warn().Err(err).Str("font_path", a.cfg.FontPath).
			Msg("compositor init failed, image fallback only")

		compositor = nil
	}

	var (
		source images.Source
		store  images.Store
	)

	if a.cfg.RemoteStorage() {
		client := images.NewSupabaseClient(images.SupabaseConfig{
			BaseURL: a.cfg.SupabaseURL,
			APIKey:  a.cfg.SupabaseKey,
			Bucket:  a.cfg.StorageBucket,
		})
		source = images.NewRemoteSource(client, a.cfg.StoragePrefix, newRNG(), a.logger)
		store = images.NewSupabaseStore(client, a.cfg.StoragePrefix)
	} else {
		source = images.NewLocalSource(a.cfg.ImageSourceDir, newRNG())
		store = images.NewLocalStore(a.cfg.ImageOutputDir, a.cfg.ImagePublicPrefix)
	}

	return images.NewService(source, store, compositor, a.cfg.FallbackImageURL, a.logger)
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // non-cryptographic variety only
}
