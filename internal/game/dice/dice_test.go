package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/petengine/internal/game/dice"
)

func TestChanceToScale(t *testing.T) {
	assert.Equal(t, 0, dice.ChanceToScale(0))
	assert.Equal(t, 1, dice.ChanceToScale(0.01))
	assert.Equal(t, 1250, dice.ChanceToScale(12.5))
	assert.Equal(t, dice.PercentScale, dice.ChanceToScale(100))
	assert.Equal(t, dice.PercentScale, dice.ChanceToScale(250))
	assert.Equal(t, 0, dice.ChanceToScale(-3))
}

func TestPercentRoll_Bounds(t *testing.T) {
	src := dice.NewSeededSource(7)
	for i := 0; i < 1000; i++ {
		assert.False(t, dice.PercentRoll(src, 0))
		assert.True(t, dice.PercentRoll(src, 100))
	}
}

func TestPercentRoll_Threshold(t *testing.T) {
	// 0.01% hits only on a draw of exactly 0.
	assert.True(t, dice.PercentRoll(&dice.Fixed{Values: []int{0}}, 0.01))
	assert.False(t, dice.PercentRoll(&dice.Fixed{Values: []int{1}}, 0.01))
	assert.True(t, dice.PercentRoll(&dice.Fixed{Values: []int{4999}}, 50))
	assert.False(t, dice.PercentRoll(&dice.Fixed{Values: []int{5000}}, 50))
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSources_Panic_OnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
	assert.Panics(t, func() { dice.NewSource().Intn(-1) })
	assert.Panics(t, func() { (&dice.Fixed{}).Intn(0) })
}

func TestFixed_CyclesValues(t *testing.T) {
	f := &dice.Fixed{Values: []int{3, 12}}
	assert.Equal(t, 3, f.Intn(10))
	assert.Equal(t, 2, f.Intn(10))
	assert.Equal(t, 3, f.Intn(10))
}

func TestRoller_Percent_LogsAndMatches(t *testing.T) {
	r := dice.NewLoggedRoller(&dice.Fixed{Values: []int{10, 9999}}, zaptest.NewLogger(t))
	assert.True(t, r.Percent("apple", 0.2))
	assert.False(t, r.Percent("apple", 99.99))
}

func TestProperty_IntRange_InBounds(t *testing.T) {
	src := dice.NewSource()
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+200).Draw(rt, "hi")
		v := dice.IntRange(src, lo, hi)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestProperty_Source_InRange(t *testing.T) {
	src := dice.NewSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1<<20).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}
