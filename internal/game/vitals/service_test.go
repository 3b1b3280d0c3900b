package vitals_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

type memRepo struct {
	mu    sync.Mutex
	rows  map[int64]vitals.Stats
	saves int
}

func newMemRepo() *memRepo { return &memRepo{rows: map[int64]vitals.Stats{}} }

func (m *memRepo) Get(_ context.Context, petID int64) (*vitals.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[petID]
	if !ok {
		return nil, vitals.ErrNotFound
	}
	return &s, nil
}

func (m *memRepo) Save(_ context.Context, s *vitals.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.PetID] = *s
	m.saves++
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newService(t *testing.T) (*vitals.Service, *memRepo, *fakeClock) {
	repo := newMemRepo()
	clock := &fakeClock{t: anchor}
	return vitals.NewService(repo, zaptest.NewLogger(t)).WithClock(clock.now), repo, clock
}

func TestService_ReadTwice_NoDoubleDecay(t *testing.T) {
	svc, repo, clock := newService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, 1)
	require.NoError(t, err)

	clock.t = anchor.Add(30 * time.Hour)
	first, err := svc.Read(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Read(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 70, first.Hunger)
	assert.Equal(t, first.Hunger, second.Hunger)
	assert.Equal(t, first.Happiness, second.Happiness)
	assert.Equal(t, 2, repo.saves, "init plus one decay write")
}

func TestService_Read_NoWriteWithoutChange(t *testing.T) {
	svc, repo, clock := newService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, 1)
	require.NoError(t, err)
	clock.t = anchor.Add(20 * time.Minute)
	_, err = svc.Read(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves)
}

func TestService_Read_MissingRowCreatesDefaults(t *testing.T) {
	svc, repo, _ := newService(t)
	st, err := svc.Read(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, vitals.DefaultHunger, st.Hunger)
	assert.Equal(t, 1, repo.saves)
}

func TestService_Adjust_Clamps(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, 1)
	require.NoError(t, err)

	st, err := svc.Adjust(ctx, 1, -1000, -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Hunger)
	assert.Equal(t, 0, st.Happiness)

	st, err = svc.Adjust(ctx, 1, 1000, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, st.Hunger)
	assert.Equal(t, 100, st.Happiness)
}

func TestService_Adjust_AppliesDecayFirst(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, 1)
	require.NoError(t, err)
	clock.t = anchor.Add(10 * time.Hour)

	st, err := svc.Adjust(ctx, 1, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 95, st.Hunger)
	assert.Equal(t, anchor.Add(10*time.Hour), st.UpdatedAt)
}
