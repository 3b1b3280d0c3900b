package vitals_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

var anchor = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func TestDecay_NoElapsedHour_NoChange(t *testing.T) {
	s := &vitals.Stats{PetID: 1, Hunger: 50, Happiness: 50, UpdatedAt: anchor}
	out, dirty := vitals.Decay(s, anchor.Add(59*time.Minute))
	assert.False(t, dirty)
	assert.Equal(t, *s, out)
}

func TestDecay_HungerOnePerHour(t *testing.T) {
	s := &vitals.Stats{Hunger: 80, Happiness: 70, UpdatedAt: anchor}
	out, dirty := vitals.Decay(s, anchor.Add(5*time.Hour+30*time.Minute))
	assert.True(t, dirty)
	assert.Equal(t, 75, out.Hunger)
	assert.Equal(t, 70, out.Happiness)
	assert.Equal(t, anchor.Add(5*time.Hour), out.UpdatedAt, "anchor advances by whole hours only")
}

func TestDecay_StarvingDrainsHappiness(t *testing.T) {
	s := &vitals.Stats{Hunger: 22, Happiness: 60, UpdatedAt: anchor}
	out, _ := vitals.Decay(s, anchor.Add(4*time.Hour))
	assert.Equal(t, 18, out.Hunger)
	assert.Equal(t, 52, out.Happiness)
}

func TestDecay_FloorsAtZero(t *testing.T) {
	s := &vitals.Stats{Hunger: 3, Happiness: 5, UpdatedAt: anchor}
	out, dirty := vitals.Decay(s, anchor.Add(100*time.Hour))
	assert.True(t, dirty)
	assert.Equal(t, 0, out.Hunger)
	assert.Equal(t, 0, out.Happiness)
}

func TestDecay_AlreadyZero_NotDirty(t *testing.T) {
	s := &vitals.Stats{Hunger: 0, Happiness: 0, UpdatedAt: anchor}
	_, dirty := vitals.Decay(s, anchor.Add(10*time.Hour))
	assert.False(t, dirty)
}

func TestDecay_ZeroAnchorIsInitialised(t *testing.T) {
	s := &vitals.Stats{Hunger: 40, Happiness: 40}
	out, dirty := vitals.Decay(s, anchor)
	assert.True(t, dirty)
	assert.Equal(t, anchor, out.UpdatedAt)
	assert.Equal(t, 40, out.Hunger)
}

func TestDecay_Idempotent_WithinSameHour(t *testing.T) {
	s := &vitals.Stats{Hunger: 90, Happiness: 90, UpdatedAt: anchor}
	first, _ := vitals.Decay(s, anchor.Add(3*time.Hour+10*time.Minute))
	second, dirty := vitals.Decay(&first, anchor.Add(3*time.Hour+11*time.Minute))
	assert.False(t, dirty)
	assert.Equal(t, first, second)
}

func TestProperty_Decay_SplitEqualsWhole(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := &vitals.Stats{
			Hunger:    rapid.IntRange(0, 100).Draw(rt, "hunger"),
			Happiness: rapid.IntRange(0, 100).Draw(rt, "happiness"),
			UpdatedAt: anchor,
		}
		split := time.Duration(rapid.IntRange(0, 300).Draw(rt, "split_min")) * time.Minute
		end := split + time.Duration(rapid.IntRange(0, 300).Draw(rt, "rest_min"))*time.Minute

		whole, _ := vitals.Decay(s, anchor.Add(end))
		mid, _ := vitals.Decay(s, anchor.Add(split))
		chained, _ := vitals.Decay(&mid, anchor.Add(end))

		assert.Equal(rt, whole.UpdatedAt, chained.UpdatedAt)
		assert.Equal(rt, whole.Hunger, chained.Hunger)
		assert.GreaterOrEqual(rt, chained.Happiness, 0)
		assert.LessOrEqual(rt, chained.Happiness, 100)
	})
}

func TestProperty_Clamp(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := vitals.Clamp(rapid.Int().Draw(rt, "v"))
		assert.GreaterOrEqual(rt, v, vitals.MinStat)
		assert.LessOrEqual(rt, v, vitals.MaxStat)
	})
}
