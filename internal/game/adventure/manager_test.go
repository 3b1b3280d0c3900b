package adventure_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
	"github.com/cory-johannsen/petengine/internal/testutil"
)

const owner = int64(7)

func TestStart_SingleSlot(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)

	a, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureStart.Add(time.Hour), a.EndsAt)

	_, err = f.Adventures.Start(ctx, owner, p.ID, "walk")
	assert.ErrorIs(t, err, gameerr.ErrInvalidState)

	list, err := f.Adventures.ListActive(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, time.Hour, list[0].Remaining)
	assert.False(t, list[0].Due)
}

func TestStart_Validation(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)

	_, err := f.Adventures.Start(ctx, owner, 999, "walk")
	assert.ErrorIs(t, err, gameerr.ErrNotFound)

	_, err = f.Adventures.Start(ctx, owner, p.ID, "moon_landing")
	assert.ErrorIs(t, err, gameerr.ErrNotFound)

	_, err = f.Adventures.Start(ctx, owner+1, p.ID, "walk")
	assert.ErrorIs(t, err, gameerr.ErrUnauthorized)

	_, err = f.Adventures.Start(ctx, owner, p.ID, "trial")
	require.ErrorIs(t, err, gameerr.ErrInvalidState)
	_, msg := gameerr.Describe(err)
	assert.Contains(t, msg, "level 3")
}

func TestComplete_NotYetDue(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	a, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)

	f.Clock.Advance(59 * time.Minute)
	_, err = f.Adventures.Complete(ctx, a.ID)
	assert.ErrorIs(t, err, gameerr.ErrInvalidState)

	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, rep.Completed)

	list, err := f.Adventures.ListActive(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1, "a premature completion must not delete the adventure")
}

func TestCheckUser_GrantsRewards(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)

	f.Clock.Advance(time.Hour)
	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Completed)
	assert.Equal(t, 60, rep.TotalExperience)
	assert.Equal(t, []string{"kibble", "pebble"}, rep.Items)

	got, err := f.Pets.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 60, got.Experience)

	inv := f.Store.Inventory()
	n, err := inv.Quantity(ctx, owner, "kibble")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Len(t, f.Outbox.Sent(owner, ports.NotifyAdventureDone), 1)

	// The pet is free again and a second check finds nothing.
	rep, err = f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, rep.Completed)
	_, err = f.Adventures.Start(ctx, owner, p.ID, "walk")
	assert.NoError(t, err)
}

func TestCheckUser_LevelsUp(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	p.Level, p.Experience = 2, 150
	require.NoError(t, f.Pets.Update(ctx, p))

	_, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(2 * time.Hour)

	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rep.Completions, 1)
	c := rep.Completions[0]
	assert.True(t, c.LeveledUp)
	assert.Equal(t, 3, c.NewLevel)
	assert.Equal(t, 10, c.NewExperience)
	assert.Equal(t, 1, rep.LevelUps)
}

func TestCheckUser_NoDropsWhenRollsMiss(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	f.Drops.Values = []int{9999}
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(time.Hour)

	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Completed)
	assert.Empty(t, rep.Items)
}

func TestCheckUser_ConcurrentCallsCompleteOnce(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(time.Hour)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep, err := f.Adventures.CheckUser(ctx, owner)
			assert.NoError(t, err)
			mu.Lock()
			completed += rep.Completed
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, completed)
	got, err := f.Pets.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Experience, "experience must be granted exactly once")
	n, err := f.Store.Inventory().Quantity(ctx, owner, "kibble")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestComplete_MissingAdventureIsSkipped(t *testing.T) {
	f := testutil.NewFixture(t)
	c, err := f.Adventures.Complete(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, c.Skipped)
}

func TestCheckUser_IsolatesDataIntegrityFailures(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	good := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, good.ID, "walk")
	require.NoError(t, err)

	orphan := &adventure.Active{
		ID:        uuid.New(),
		PetID:     4040,
		OwnerID:   owner,
		QuestID:   "walk",
		StartedAt: testutil.FixtureStart,
		EndsAt:    testutil.FixtureStart.Add(time.Minute),
	}
	require.NoError(t, f.Store.Adventures().Create(ctx, orphan))
	lost := f.Pet(t, owner, "Fido", pet.GenderFemale, 5)
	unknownQuest := &adventure.Active{
		ID:        uuid.New(),
		PetID:     lost.ID,
		OwnerID:   owner,
		QuestID:   "retired_quest",
		StartedAt: testutil.FixtureStart,
		EndsAt:    testutil.FixtureStart.Add(time.Minute),
	}
	require.NoError(t, f.Store.Adventures().Create(ctx, unknownQuest))

	f.Clock.Advance(time.Hour)
	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Completed)
	assert.Equal(t, 2, rep.Failed)
	for _, fl := range rep.Failures {
		assert.ErrorIs(t, fl.Err, gameerr.ErrDataIntegrity)
	}
}

func TestCheckUser_FreesPetWithRetiredQuest(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	fido := f.Pet(t, owner, "Fido", pet.GenderMale, 5)
	require.NoError(t, f.Store.Adventures().Create(ctx, &adventure.Active{
		ID:        uuid.New(),
		PetID:     fido.ID,
		OwnerID:   owner,
		QuestID:   "retired_quest",
		StartedAt: testutil.FixtureStart,
		EndsAt:    testutil.FixtureStart.Add(time.Minute),
	}))

	f.Clock.Advance(time.Hour)
	rep, err := f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)

	list, err := f.Adventures.ListActive(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.Adventures.Start(ctx, owner, fido.ID, "walk")
	require.NoError(t, err)

	rep, err = f.Adventures.CheckUser(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, rep.Failed)
}

func TestQuestsForPet(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)

	qs, err := f.Adventures.QuestsForPet(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "walk", qs[0].ID)
	assert.Len(t, f.Adventures.ListQuests(3), 2)

	_, err = f.Adventures.QuestsForPet(ctx, owner+1, p.ID)
	assert.ErrorIs(t, err, gameerr.ErrUnauthorized)
}

func TestReconciler_CompletesDueAdventures(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	for i, name := range []string{"A", "B", "C"} {
		p := f.Pet(t, owner+int64(i), name, pet.GenderMale, 5)
		_, err := f.Adventures.Start(ctx, owner+int64(i), p.ID, "walk")
		require.NoError(t, err)
	}
	f.Clock.Advance(time.Hour)

	r := adventure.NewReconciler(f.Adventures, time.Hour, 2, f.Logger)
	assert.Equal(t, 2, r.RunOnce(ctx).Completed)
	assert.Equal(t, 1, r.RunOnce(ctx).Completed)
	assert.Zero(t, r.RunOnce(ctx).Completed)
}

func TestReconciler_BrokenRowsDoNotStarveBatch(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	for i := range 2 {
		require.NoError(t, f.Store.Adventures().Create(ctx, &adventure.Active{
			ID:        uuid.New(),
			PetID:     int64(5000 + i),
			OwnerID:   owner,
			QuestID:   "walk",
			StartedAt: testutil.FixtureStart,
			EndsAt:    testutil.FixtureStart.Add(time.Minute),
		}))
	}
	p := f.Pet(t, owner, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, p.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(time.Hour)

	r := adventure.NewReconciler(f.Adventures, time.Hour, 2, f.Logger)
	rep := r.RunOnce(ctx)
	assert.Equal(t, 2, rep.Failed)
	assert.Zero(t, rep.Completed)

	rep = r.RunOnce(ctx)
	assert.Zero(t, rep.Failed)
	assert.Equal(t, 1, rep.Completed)
}

// lockFailingPets fails Lock for one pet, leaving its adventure row in place.
type lockFailingPets struct {
	pet.Repository
	petID int64
}

func (l lockFailingPets) Lock(ctx context.Context, ids ...int64) (map[int64]*pet.Pet, error) {
	for _, id := range ids {
		if id == l.petID {
			return nil, errors.New("connection reset")
		}
	}
	return l.Repository.Lock(ctx, ids...)
}

func TestReconciler_HoldsBackFailingAdventures(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	stuck := f.Pet(t, owner, "Stuck", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, owner, stuck.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(time.Minute)
	fine := f.Pet(t, owner+1, "Fine", pet.GenderFemale, 5)
	_, err = f.Adventures.Start(ctx, owner+1, fine.ID, "walk")
	require.NoError(t, err)
	f.Clock.Advance(time.Hour)

	m := adventure.NewManager(f.Store.Adventures(), lockFailingPets{Repository: f.Pets, petID: stuck.ID},
		f.Quests, f.Store.Inventory(), f.Outbox, f.Store, dice.NewLoggedRoller(f.Drops, f.Logger), f.Logger).
		WithClock(f.Clock.Now)
	r := adventure.NewReconciler(m, time.Minute, 1, f.Logger)

	rep := r.RunOnce(ctx)
	require.Equal(t, 1, rep.Failed)
	assert.ErrorIs(t, rep.Failures[0].Err, gameerr.ErrStorage)

	rep = r.RunOnce(ctx)
	assert.Zero(t, rep.Failed)
	assert.Equal(t, 1, rep.Completed)
	assert.Equal(t, fine.ID, rep.Completions[0].PetID)

	assert.Zero(t, r.RunOnce(ctx).Failed, "a failed adventure is held back between retries")

	f.Clock.Advance(10 * time.Minute)
	assert.Equal(t, 1, r.RunOnce(ctx).Failed)
}

func TestReconciler_StartStop(t *testing.T) {
	f := testutil.NewFixture(t)
	r := adventure.NewReconciler(f.Adventures, time.Millisecond, 10, f.Logger)
	done := make(chan error, 1)
	go func() { done <- r.Start() }()
	time.Sleep(5 * time.Millisecond)
	r.Stop()
	r.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
