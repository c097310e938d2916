package targeting

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
)

type memCursorStore struct {
	index    int
	found    bool
	getErr   error
	setErr   error
	setCalls int
}

func (m *memCursorStore) GetRotationIndex(_ context.Context) (int, bool, error) {
	return m.index, m.found, m.getErr
}

func (m *memCursorStore) SetRotationIndex(_ context.Context, index int) error {
	m.setCalls++

	if m.setErr != nil {
		return m.setErr
	}

	m.index = index
	m.found = true

	return nil
}

func newTestSelector(catalog []domain.Location, store CursorStore, seed int64) *Selector {
	logger := zerolog.Nop()
	sel := NewSelector(catalog, store, &logger)
	sel.SetRand(rand.New(rand.NewSource(seed))) //nolint:gosec // deterministic test source

	return sel
}

func TestSelectTargetEmptyCatalog(t *testing.T) {
	sel := newTestSelector(nil, &memCursorStore{}, 1)

	_, err := sel.SelectTarget(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCatalog)
}

func TestSelectTargetFirstRun(t *testing.T) {
	store := &memCursorStore{}
	sel := newTestSelector([]domain.Location{{Region: "Seoul", District: "Gangnam"}}, store, 1)

	target, err := sel.SelectTarget(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Seoul", target.City)
	assert.Equal(t, "Gangnam", target.District)
	assert.Contains(t, Services, target.Service)
	assert.Contains(t, domain.Styles, target.Style)
	assert.Equal(t, "Seoul Gangnam "+target.Service, target.Keyword)

	// Cursor lands on the entry just used.
	assert.True(t, store.found)
	assert.Equal(t, 0, store.index)
}

func TestSelectTargetRotationCoversCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	store := &memCursorStore{}
	sel := newTestSelector(catalog, store, 42)

	seen := make(map[string]int, len(catalog))

	for i := 0; i < len(catalog)*2; i++ {
		target, err := sel.SelectTarget(context.Background())
		require.NoError(t, err)

		seen[target.City+"/"+target.District]++
	}

	// Two full cycles: every catalog entry selected exactly twice.
	require.Len(t, seen, len(catalog))

	for key, count := range seen {
		assert.Equal(t, 2, count, key)
	}
}

func TestSelectTargetRuralGetsDefaultService(t *testing.T) {
	catalog := []domain.Location{{Region: "완주군", District: "이서면"}}

	for seed := int64(0); seed < 20; seed++ {
		sel := newTestSelector(catalog, &memCursorStore{}, seed)

		target, err := sel.SelectTarget(context.Background())
		require.NoError(t, err)

		assert.Equal(t, DefaultService, target.Service)
	}
}

func TestSelectTargetCursorReadFailure(t *testing.T) {
	store := &memCursorStore{getErr: errors.New("connection refused")}
	sel := newTestSelector(DefaultCatalog(), store, 1)

	_, err := sel.SelectTarget(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, store.setCalls)
}

func TestSelectTargetCursorWriteFailureIsNonFatal(t *testing.T) {
	store := &memCursorStore{setErr: errors.New("connection refused")}
	sel := newTestSelector(DefaultCatalog(), store, 1)

	target, err := sel.SelectTarget(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, target.Keyword)
	assert.Equal(t, 1, store.setCalls)
}

func TestSelectTargetWrapsAround(t *testing.T) {
	catalog := []domain.Location{
		{Region: "전주 완산구", District: "효자동"},
		{Region: "군산", District: "수송동"},
	}
	store := &memCursorStore{index: len(catalog) - 1, found: true}
	sel := newTestSelector(catalog, store, 1)

	target, err := sel.SelectTarget(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "전주 완산구", target.City)
	assert.Equal(t, 0, store.index)
}
