package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/petengine/internal/engine"
	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/dna"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/testutil"
)

func TestCreatePet_CreatesAllRows(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()

	p, err := f.Engine.CreatePet(ctx, 1, engine.NewPet{Name: "  Biscuit ", Gender: pet.GenderFemale})
	require.NoError(t, err)
	assert.Equal(t, "Biscuit", p.Name)
	assert.NoError(t, dna.Validate(p.DNA))
	assert.Equal(t, pet.PlaceholderImage, p.ImageURL)
	assert.Equal(t, 1, p.Level)

	_, err = f.Store.Stats().Get(ctx, p.ID)
	assert.NoError(t, err)
	_, err = f.Store.Health().Get(ctx, p.ID)
	assert.NoError(t, err)
	_, err = f.Store.Personality().Get(ctx, p.ID)
	assert.NoError(t, err)
}

func TestCreatePet_Validation(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()

	_, err := f.Engine.CreatePet(ctx, 1, engine.NewPet{Name: " ", Gender: pet.GenderMale})
	assert.ErrorIs(t, err, gameerr.ErrInvalidState)
	_, err = f.Engine.CreatePet(ctx, 1, engine.NewPet{Name: "Rex", Gender: "other"})
	assert.ErrorIs(t, err, gameerr.ErrInvalidState)
}

func TestReadStats_AppliesDecay(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p, err := f.Engine.CreatePet(ctx, 1, engine.NewPet{Name: "Rex", Gender: pet.GenderMale})
	require.NoError(t, err)

	f.Clock.Advance(70*time.Hour + 30*time.Minute)
	v, err := f.Engine.ReadStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, v.Stats.Hunger)
	assert.Equal(t, 100, v.Stats.Happiness, "happiness only drops once the pet is starving")
	assert.Equal(t, 5, v.AgeDays)

	// Reading again within the same hour changes nothing.
	f.Clock.Advance(20 * time.Minute)
	v, err = f.Engine.ReadStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, v.Stats.Hunger)

	// The leftover half hour carried over, so ten more minutes completes an hour.
	f.Clock.Advance(10 * time.Minute)
	v, err = f.Engine.ReadStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, v.Stats.Hunger)

	f.Clock.Advance(10 * time.Hour)
	v, err = f.Engine.ReadStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 19, v.Stats.Hunger)
	assert.Equal(t, 80, v.Stats.Happiness)

	_, err = f.Engine.ReadStats(ctx, 999)
	assert.ErrorIs(t, err, gameerr.ErrNotFound)
}

func TestDispatch(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	mother := f.Pet(t, 1, "Luna", pet.GenderFemale, 20)
	father := f.Pet(t, 1, "Max", pet.GenderMale, 20)

	out := f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionBreed, UserID: 1, PetID: mother.ID, OtherPetID: father.ID})
	require.True(t, out.OK, out.Message)
	res, ok := out.Result.(breeding.Result)
	require.True(t, ok)
	assert.Contains(t, out.Message, "was born")

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionBreed, UserID: 1, PetID: mother.ID, OtherPetID: father.ID})
	assert.False(t, out.OK)
	assert.Equal(t, gameerr.KindInvalidState, out.Kind)
	assert.Contains(t, out.Message, "cooldown")
	assert.Nil(t, out.Result)

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionStartAdventure, UserID: 1, PetID: res.Offspring.ID, QuestID: "walk"})
	require.True(t, out.OK, out.Message)
	_, ok = out.Result.(*adventure.Active)
	assert.True(t, ok)

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionCheckAdventures, UserID: 1})
	require.True(t, out.OK)
	assert.Equal(t, "no adventures are ready yet", out.Message)

	f.Clock.Advance(time.Hour)
	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionCheckAdventures, UserID: 1})
	require.True(t, out.OK)
	rep := out.Result.(adventure.Report)
	assert.Equal(t, 1, rep.Completed)
	assert.Contains(t, out.Message, "kibble")

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionUseItem, UserID: 1, PetID: res.Offspring.ID, ItemID: "kibble"})
	require.True(t, out.OK, out.Message)
	assert.Equal(t, "used Kibble", out.Message)

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: engine.ActionReadStats, UserID: 1, PetID: mother.ID})
	require.True(t, out.OK, out.Message)
	view := out.Result.(*engine.View)
	assert.Equal(t, 23*time.Hour, view.CooldownRemaining)

	out = f.Engine.Dispatch(ctx, engine.Action{Kind: "dance", UserID: 1})
	assert.False(t, out.OK)
	assert.Contains(t, out.Message, "unknown action")
}

func TestReadStats_ShowsActiveAdventure(t *testing.T) {
	f := testutil.NewFixture(t)
	ctx := context.Background()
	p := f.Pet(t, 4, "Rex", pet.GenderMale, 5)
	_, err := f.Adventures.Start(ctx, 4, p.ID, "walk")
	require.NoError(t, err)

	f.Clock.Advance(15 * time.Minute)
	v, err := f.Engine.ReadStats(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, v.Adventure)
	assert.Equal(t, 45*time.Minute, v.Adventure.Remaining)
	assert.Equal(t, "walk", v.Adventure.Quest.ID)
}
