// Package worker provides the ticker loop the scheduler runs on.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const logFieldWorker = "worker"

// TickerConfig configures a single-task ticker loop.
type TickerConfig struct {
	// Name identifies the worker for logging.
	Name string

	// Interval between runs.
	Interval time.Duration

	// Run is invoked on every tick, and once at startup when RunOnStart
	// is set.
	Run func(ctx context.Context)

	// RunOnStart triggers an immediate first run instead of waiting a
	// full interval.
	RunOnStart bool

	// Logger for the worker.
	Logger *zerolog.Logger
}

// TickerLoop runs the task until the context is canceled. It returns the
// wrapped context error so callers can distinguish shutdown from failures.
func TickerLoop(ctx context.Context, cfg TickerConfig) error {
	logger := getLogger(cfg.Logger)
	logger.Info().
		Str(logFieldWorker, cfg.Name).
		Dur("interval", cfg.Interval).
		Msg("starting ticker loop")

	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("ticker loop stopped")

	if cfg.RunOnStart {
		runGuarded(ctx, cfg, logger)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("ticker loop %s: %w", cfg.Name, ctx.Err())
		case <-ticker.C:
			runGuarded(ctx, cfg, logger)
		}
	}
}

// runGuarded runs the task with panic recovery so one bad run cannot take
// the loop down.
func runGuarded(ctx context.Context, cfg TickerConfig, logger *zerolog.Logger) {
	defer RecoverPanic(logger, cfg.Name)

	cfg.Run(ctx)
}

// Wait sleeps for d or until the context is canceled, returning the
// context error in the latter case.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RecoverPanic logs a recovered panic. Use with defer.
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}

func getLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}

	nop := zerolog.Nop()

	return &nop
}
