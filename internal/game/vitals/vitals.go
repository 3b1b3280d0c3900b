// Package vitals models hunger and happiness as a lazily evaluated function of
// elapsed real time since the last persisted update.
package vitals

import (
	"context"
	"errors"
	"time"
)

// Bounds shared by every 0–100 stat in the engine.
const (
	MinStat = 0
	MaxStat = 100
)

// Decay tuning.
const (
	// HungerPerHour is subtracted from hunger for every whole elapsed hour.
	HungerPerHour = 1
	// StarvingThreshold is the hunger level below which happiness also decays.
	StarvingThreshold = 20
	// StarvingHappinessPerHour is subtracted from happiness per whole hour while starving.
	StarvingHappinessPerHour = 2
)

// Starting values for a new stats row.
const (
	DefaultHunger    = 100
	DefaultHappiness = 100
)

// ErrNotFound is returned by repositories when no stats row exists for a pet.
var ErrNotFound = errors.New("stats not found")

// Clamp bounds v to [MinStat, MaxStat].
//
// Postcondition: MinStat <= result <= MaxStat.
func Clamp(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// Stats is the persisted hunger/happiness pair of one pet.
//
// UpdatedAt is the decay anchor: the instant up to which decay has been applied.
type Stats struct {
	PetID     int64
	Hunger    int
	Happiness int
	UpdatedAt time.Time
}

// Defaults returns a fresh stats row for petID anchored at now.
func Defaults(petID int64, now time.Time) *Stats {
	return &Stats{PetID: petID, Hunger: DefaultHunger, Happiness: DefaultHappiness, UpdatedAt: now}
}

// Repository persists stats rows.
type Repository interface {
	// Get returns the row or an error wrapping ErrNotFound.
	Get(ctx context.Context, petID int64) (*Stats, error)
	// Save upserts the row.
	Save(ctx context.Context, s *Stats) error
}
