package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

type fakeStore struct {
	settings    domain.AutomationSettings
	settingsErr error
	successes   int
	countErr    error
}

func (f *fakeStore) GetAutomationSettings(_ context.Context) (domain.AutomationSettings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeStore) CountTodaySuccesses(_ context.Context) (int, error) {
	return f.successes, f.countErr
}

type fakeRunner struct {
	calls  int
	result domain.Result
}

func (f *fakeRunner) GeneratePost(_ context.Context, _ domain.JobType) domain.Result {
	f.calls++

	return f.result
}

func testScheduler(store *fakeStore, runner *fakeRunner, now time.Time) *Scheduler {
	logger := zerolog.Nop()
	s := New(store, runner, time.Minute, &logger)
	s.now = func() time.Time { return now }

	return s
}

func TestTickRunsWhenDue(t *testing.T) {
	store := &fakeStore{settings: domain.DefaultAutomationSettings(), successes: 3}
	runner := &fakeRunner{result: domain.Result{Success: true}}

	noon := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	s := testScheduler(store, runner, noon)
	s.location = time.UTC

	s.Tick(context.Background())

	assert.Equal(t, 1, runner.calls)
}

func TestTickSkips(t *testing.T) {
	noon := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	night := time.Date(2026, 8, 15, 2, 0, 0, 0, time.UTC)

	inactive := domain.DefaultAutomationSettings()
	inactive.Active = false

	full := domain.DefaultAutomationSettings()

	tests := []struct {
		name  string
		store *fakeStore
		now   time.Time
	}{
		{
			name:  "automation inactive",
			store: &fakeStore{settings: inactive},
			now:   noon,
		},
		{
			name:  "daily target reached",
			store: &fakeStore{settings: full, successes: full.DailyTarget},
			now:   noon,
		},
		{
			name:  "outside posting window",
			store: &fakeStore{settings: full},
			now:   night,
		},
		{
			name:  "settings load failure",
			store: &fakeStore{settingsErr: assert.AnError},
			now:   noon,
		},
		{
			name:  "count failure",
			store: &fakeStore{settings: full, countErr: assert.AnError},
			now:   noon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: domain.Result{Success: true}}
			s := testScheduler(tt.store, runner, tt.now)
			s.location = time.UTC

			s.Tick(context.Background())

			require.Equal(t, 0, runner.calls)
		})
	}
}

func TestTickLogsFailedRun(t *testing.T) {
	store := &fakeStore{settings: domain.DefaultAutomationSettings()}
	runner := &fakeRunner{result: domain.Result{Success: false, Error: "all tiers exhausted"}}

	noon := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	s := testScheduler(store, runner, noon)
	s.location = time.UTC

	s.Tick(context.Background())

	assert.Equal(t, 1, runner.calls)
}
