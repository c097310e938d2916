package targeting

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
)

// CursorStore persists the rotation cursor. The read-modify-write is not
// transactionally guarded; concurrent jobs may skip or repeat an entry,
// which is accepted (coverage is approximate, not exactly-once).
type CursorStore interface {
	// GetRotationIndex returns the last used catalog index. found is false
	// when no cursor has been persisted yet.
	GetRotationIndex(ctx context.Context) (index int, found bool, err error)

	// SetRotationIndex stores the last used catalog index.
	SetRotationIndex(ctx context.Context, index int) error
}

// Selector derives the next (location, service, style) target from the
// rotation cursor.
type Selector struct {
	catalog []domain.Location
	store   CursorStore
	logger  *zerolog.Logger
	rng     *rand.Rand
}

// NewSelector creates a Selector over the given catalog.
func NewSelector(catalog []domain.Location, store CursorStore, logger *zerolog.Logger) *Selector {
	return &Selector{
		catalog: catalog,
		store:   store,
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // content variety, not crypto
	}
}

// SetRand overrides the random source. Intended for tests.
func (s *Selector) SetRand(rng *rand.Rand) {
	s.rng = rng
}

// SelectTarget advances the rotation cursor and resolves the next target.
// An empty catalog fails fast before any provider call is made.
func (s *Selector) SelectTarget(ctx context.Context) (domain.Target, error) {
	if len(s.catalog) == 0 {
		return domain.Target{}, apperrors.ErrEmptyCatalog
	}

	last, found, err := s.store.GetRotationIndex(ctx)
	if err != nil {
		return domain.Target{}, fmt.Errorf("read rotation cursor: %w", err)
	}

	if !found {
		last = -1
	}

	index := (last + 1) % len(s.catalog)

	// Best-effort write-back: a failed cursor write degrades rotation to
	// a repeat, it never fails the job.
	if err := s.store.SetRotationIndex(ctx, index); err != nil {
		s.logger.Warn().Err(err).Int("index", index).Msg("failed to persist rotation cursor")
	}

	loc := s.catalog[index]

	eligible := EligibleServices(loc.Region, loc.District)
	service := eligible[s.rng.Intn(len(eligible))]
	style := domain.Styles[s.rng.Intn(len(domain.Styles))]

	target := domain.Target{
		City:     loc.Region,
		District: loc.District,
		Service:  service,
		Style:    style,
		Keyword:  fmt.Sprintf("%s %s %s", loc.Region, loc.District, service),
	}

	s.logger.Info().
		Int("index", index).
		Str("keyword", target.Keyword).
		Str("style", string(style)).
		Msg("selected post target")

	return target, nil
}
