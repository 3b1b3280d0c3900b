package health

import (
	"context"
	"errors"
	"sort"

	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// Status is the coarse health status of a pet.
type Status string

const (
	StatusHealthy Status = "healthy"
	StatusSick    Status = "sick"
)

// Health tuning.
const (
	// DefaultHP is the health of a newly created pet.
	DefaultHP = 100
	// HealRestoreHP is added to health points by a successful paid heal.
	HealRestoreHP = 25
)

// ErrNotFound is returned by repositories when no health row exists for a pet.
var ErrNotFound = errors.New("health record not found")

// Record is the health row of one pet together with its active illnesses.
//
// Invariant: Status is StatusSick iff Illnesses is non-empty; HP is in [0, 100].
type Record struct {
	PetID     int64
	HP        int
	Status    Status
	Illnesses []string
}

// NewRecord returns the default record for petID.
func NewRecord(petID int64) *Record {
	return &Record{PetID: petID, HP: DefaultHP, Status: StatusHealthy}
}

// Has reports whether illnessID is active.
func (r *Record) Has(illnessID string) bool {
	for _, id := range r.Illnesses {
		if id == illnessID {
			return true
		}
	}
	return false
}

// Add activates illnessID. Adding an active illness is a no-op.
//
// Postcondition: Has(illnessID); Status == StatusSick. Reports whether the set changed.
func (r *Record) Add(illnessID string) bool {
	r.Status = StatusSick
	if r.Has(illnessID) {
		return false
	}
	r.Illnesses = append(r.Illnesses, illnessID)
	sort.Strings(r.Illnesses)
	return true
}

// Remove deactivates illnessID and reverts to healthy when none remain.
//
// Postcondition: !Has(illnessID). Reports whether the set changed.
func (r *Record) Remove(illnessID string) bool {
	for i, id := range r.Illnesses {
		if id == illnessID {
			r.Illnesses = append(r.Illnesses[:i], r.Illnesses[i+1:]...)
			if len(r.Illnesses) == 0 {
				r.Status = StatusHealthy
			}
			return true
		}
	}
	return false
}

// AdjustHP adds delta and clamps to [0, 100].
func (r *Record) AdjustHP(delta int) int {
	r.HP = vitals.Clamp(r.HP + delta)
	return r.HP
}

// Repository persists health records.
type Repository interface {
	// Get returns the record or an error wrapping ErrNotFound.
	Get(ctx context.Context, petID int64) (*Record, error)
	// Save upserts the health row and replaces the active illness set.
	Save(ctx context.Context, r *Record) error
}
