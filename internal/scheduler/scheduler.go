// Package scheduler drives automatic post generation: on every tick it
// reads the automation settings, checks the daily target and posting
// window, and runs one pipeline job when due.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/core/domain"
	"github.com/jbplumbing/autopost/internal/platform/observability"
	"github.com/jbplumbing/autopost/internal/platform/schedule"
	"github.com/jbplumbing/autopost/internal/platform/worker"
)

// SettingsStore provides the automation settings and daily success count.
type SettingsStore interface {
	GetAutomationSettings(ctx context.Context) (domain.AutomationSettings, error)
	CountTodaySuccesses(ctx context.Context) (int, error)
}

// Runner runs one generation job.
type Runner interface {
	GeneratePost(ctx context.Context, jobType domain.JobType) domain.Result
}

// Scheduler gates and triggers automatic posts.
type Scheduler struct {
	store    SettingsStore
	runner   Runner
	interval time.Duration
	location *time.Location
	logger   *zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Scheduler ticking at the given interval.
func New(store SettingsStore, runner Runner, interval time.Duration, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		runner:   runner,
		interval: interval,
		location: schedule.Location(),
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	return worker.TickerLoop(ctx, worker.TickerConfig{
		Name:       "autopost-scheduler",
		Interval:   s.interval,
		Run:        s.Tick,
		RunOnStart: true,
		Logger:     s.logger,
	})
}

// Tick evaluates the gate once and runs a job when due.
func (s *Scheduler) Tick(ctx context.Context) {
	settings, err := s.store.GetAutomationSettings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load automation settings")

		return
	}

	successes, err := s.store.CountTodaySuccesses(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count today's posts")

		return
	}

	observability.SchedulerPostsToday.Set(float64(successes))

	decision := schedule.ShouldRun(
		settings.Active,
		settings.DailyTarget,
		settings.StartTime,
		settings.EndTime,
		successes,
		s.now().In(s.location),
	)

	if !decision.Run {
		s.logger.Debug().Str("reason", decision.Reason).Msg("skipping tick")

		return
	}

	result := s.runner.GeneratePost(ctx, domain.JobTypeAuto)
	if !result.Success {
		s.logger.Warn().Str("error", result.Error).Msg("scheduled generation failed")
	}
}
