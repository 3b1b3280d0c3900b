package adventure

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when an adventure row does not exist.
var ErrNotFound = errors.New("adventure not found")

// ErrAlreadyActive is returned by Repository.Create when the pet already has an
// active adventure.
var ErrAlreadyActive = errors.New("pet already has an active adventure")

// Active is an in-progress adventure. It is deleted on completion.
type Active struct {
	ID      uuid.UUID
	PetID   int64
	OwnerID int64
	QuestID string

	StartedAt time.Time
	EndsAt    time.Time
}

// Due reports whether the adventure's end time has passed at now.
func (a *Active) Due(now time.Time) bool {
	return !now.Before(a.EndsAt)
}

// Remaining returns the time left until EndsAt, floored at zero.
func (a *Active) Remaining(now time.Time) time.Duration {
	if d := a.EndsAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Repository persists active adventures.
//
// Invariant: at most one row per PetID.
type Repository interface {
	// Create inserts a, returning ErrAlreadyActive if the pet already has one.
	Create(ctx context.Context, a *Active) error
	// ForPet returns the pet's active adventure or an error wrapping ErrNotFound.
	ForPet(ctx context.Context, petID int64) (*Active, error)
	// ListByOwner returns every adventure started by ownerID, ordered by EndsAt.
	ListByOwner(ctx context.Context, ownerID int64) ([]*Active, error)
	// DueByOwner returns ownerID's adventures with EndsAt <= now, ordered by EndsAt.
	DueByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*Active, error)
	// Due returns up to limit adventures of any owner with EndsAt <= now,
	// ordered by EndsAt, leaving out the ids in exclude.
	Due(ctx context.Context, now time.Time, limit int, exclude []uuid.UUID) ([]*Active, error)
	// Claim deletes the adventure and returns the deleted row, or an error
	// wrapping ErrNotFound when it no longer exists. Within a transaction the
	// deletion is the mutual-exclusion point for completion.
	Claim(ctx context.Context, id uuid.UUID) (*Active, error)
}

// Completion is the outcome of completing one adventure.
type Completion struct {
	AdventureID      uuid.UUID
	PetID            int64
	QuestID          string
	ExperienceGained int
	LeveledUp        bool
	LevelsGained     int
	NewLevel         int
	NewExperience    int
	Items            []string
	// Skipped is true when another caller already completed the adventure.
	Skipped bool
}

// Failure records an adventure that could not be completed in a batch.
type Failure struct {
	AdventureID uuid.UUID
	Reason      string
	Err         error
}

// Report aggregates a batch reconciliation.
type Report struct {
	Completed       int
	Skipped         int
	Failed          int
	TotalExperience int
	LevelUps        int
	Items           []string
	Completions     []Completion
	Failures        []Failure
}

func (r *Report) add(c Completion) {
	if c.Skipped {
		r.Skipped++
		return
	}
	r.Completed++
	r.TotalExperience += c.ExperienceGained
	r.LevelUps += c.LevelsGained
	r.Items = append(r.Items, c.Items...)
	r.Completions = append(r.Completions, c)
}

// Status is a caller-facing view of an active adventure.
type Status struct {
	Adventure *Active
	Quest     *Quest
	Remaining time.Duration
	Due       bool
}
