// Package adventure runs timed quests for pets: starting them, reconciling the
// ones whose end time has passed, leveling and reward drops.
package adventure

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// QuestType classifies a quest.
type QuestType string

const (
	QuestExploration QuestType = "exploration"
	QuestHunt        QuestType = "hunt"
	QuestRescue      QuestType = "rescue"
	QuestTreasure    QuestType = "treasure"
)

// Valid reports whether q is a recognised quest type.
func (q QuestType) Valid() bool {
	switch q {
	case QuestExploration, QuestHunt, QuestRescue, QuestTreasure:
		return true
	}
	return false
}

// RewardDrop is one entry of a quest's reward table.
type RewardDrop struct {
	ItemID string `yaml:"item"`
	// Chance is the drop probability in percent, with up to two decimals.
	Chance float64 `yaml:"chance"`
}

// Quest is a read-only catalog entry.
type Quest struct {
	ID               string       `yaml:"id"`
	Name             string       `yaml:"name"`
	Description      string       `yaml:"description"`
	Type             QuestType    `yaml:"type"`
	MinLevel         int          `yaml:"min_level"`
	DurationMinutes  int          `yaml:"duration_minutes"`
	ExperienceReward int          `yaml:"experience_reward"`
	Rewards          []RewardDrop `yaml:"rewards"`
}

// Duration returns the quest length.
func (q *Quest) Duration() time.Duration {
	return time.Duration(q.DurationMinutes) * time.Minute
}

// Validate checks the quest's invariants.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quest: id must not be empty")
	}
	if !q.Type.Valid() {
		return fmt.Errorf("quest %q: type must be one of [exploration, hunt, rescue, treasure], got %q", q.ID, q.Type)
	}
	if q.MinLevel < 1 {
		return fmt.Errorf("quest %q: min_level must be >= 1, got %d", q.ID, q.MinLevel)
	}
	if q.DurationMinutes < 1 {
		return fmt.Errorf("quest %q: duration_minutes must be >= 1, got %d", q.ID, q.DurationMinutes)
	}
	if q.ExperienceReward < 0 {
		return fmt.Errorf("quest %q: experience_reward must be >= 0, got %d", q.ID, q.ExperienceReward)
	}
	for i, r := range q.Rewards {
		if r.ItemID == "" {
			return fmt.Errorf("quest %q: rewards[%d] must have a non-empty item id", q.ID, i)
		}
		if r.Chance <= 0 || r.Chance > 100 {
			return fmt.Errorf("quest %q: rewards[%d] chance must be in (0, 100], got %v", q.ID, i, r.Chance)
		}
	}
	return nil
}

// Catalog is the quest catalog collaborator.
type Catalog interface {
	Get(id string) (*Quest, bool)
	// ListForLevel returns every quest a pet of the given level may attempt.
	ListForLevel(level int) []*Quest
	RewardTable(id string) ([]RewardDrop, bool)
}

// Registry is an in-memory Catalog loaded from YAML.
type Registry struct {
	quests map[string]*Quest
}

// NewRegistry builds a Registry from quests.
//
// Postcondition: returns an error if any quest is invalid or duplicated.
func NewRegistry(quests ...*Quest) (*Registry, error) {
	r := &Registry{quests: make(map[string]*Quest, len(quests))}
	for _, q := range quests {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.quests[q.ID]; dup {
			return nil, fmt.Errorf("quest %q defined twice", q.ID)
		}
		r.quests[q.ID] = q
	}
	return r, nil
}

// Get returns the quest for id, or (nil, false).
func (r *Registry) Get(id string) (*Quest, bool) {
	q, ok := r.quests[id]
	return q, ok
}

// ListForLevel returns the quests with MinLevel <= level, ordered by MinLevel then ID.
func (r *Registry) ListForLevel(level int) []*Quest {
	out := make([]*Quest, 0, len(r.quests))
	for _, q := range r.quests {
		if q.MinLevel <= level {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinLevel != out[j].MinLevel {
			return out[i].MinLevel < out[j].MinLevel
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RewardTable returns the quest's reward drops.
func (r *Registry) RewardTable(id string) ([]RewardDrop, bool) {
	q, ok := r.quests[id]
	if !ok {
		return nil, false
	}
	return q.Rewards, true
}

// Len returns the number of quests.
func (r *Registry) Len() int { return len(r.quests) }

// questFile is the on-disk layout: a file may hold several quests.
type questFile struct {
	Quests []*Quest `yaml:"quests"`
}

// LoadRegistry reads every *.yaml file in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a populated Registry or the first parse/validation error.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest dir %q: %w", dir, err)
	}
	var all []*Quest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f questFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		all = append(all, f.Quests...)
	}
	return NewRegistry(all...)
}
