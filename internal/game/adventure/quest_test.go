package adventure_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/item"
)

func TestLoadRegistry_ShippedContent(t *testing.T) {
	reg, err := adventure.LoadRegistry("../../../content/quests")
	require.NoError(t, err)
	require.Greater(t, reg.Len(), 0)

	items, err := item.LoadCatalog("../../../content/items")
	require.NoError(t, err)
	for _, q := range reg.ListForLevel(1000) {
		table, ok := reg.RewardTable(q.ID)
		require.True(t, ok)
		for _, d := range table {
			_, ok := items.Get(d.ItemID)
			assert.True(t, ok, "quest %s drops unknown item %s", q.ID, d.ItemID)
		}
	}
}

func TestLoadRegistry_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
quests:
  - id: walk
    name: Walk
    type: exploration
    min_level: 1
    duration_minutes: 10
    experience_reward: 5
    colour: blue
`), 0o644))
	_, err := adventure.LoadRegistry(dir)
	assert.Error(t, err)
}

func TestNewRegistry_Validation(t *testing.T) {
	valid := func() *adventure.Quest {
		return &adventure.Quest{ID: "q", Name: "Q", Type: adventure.QuestRescue, MinLevel: 1, DurationMinutes: 5}
	}
	_, err := adventure.NewRegistry(valid(), valid())
	assert.Error(t, err, "duplicate ids")

	bad := valid()
	bad.Type = "dungeon"
	_, err = adventure.NewRegistry(bad)
	assert.Error(t, err)

	bad = valid()
	bad.Rewards = []adventure.RewardDrop{{ItemID: "x", Chance: 120}}
	_, err = adventure.NewRegistry(bad)
	assert.Error(t, err)
}

func TestRegistry_ListForLevel(t *testing.T) {
	reg, err := adventure.NewRegistry(
		&adventure.Quest{ID: "b", Name: "B", Type: adventure.QuestHunt, MinLevel: 1, DurationMinutes: 5},
		&adventure.Quest{ID: "a", Name: "A", Type: adventure.QuestHunt, MinLevel: 1, DurationMinutes: 5},
		&adventure.Quest{ID: "c", Name: "C", Type: adventure.QuestHunt, MinLevel: 4, DurationMinutes: 5},
	)
	require.NoError(t, err)

	ids := func(qs []*adventure.Quest) []string {
		var out []string
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b"}, ids(reg.ListForLevel(3)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(reg.ListForLevel(4)))
}
