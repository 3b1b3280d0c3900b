// Package pet defines the pet domain model, its repository contract and the
// age model that converts real time into pet-days.
package pet

import (
	"context"
	"time"
)

// Gender is one of the two breeding genders.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is a recognised gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// LifeStatus records whether a pet is alive.
type LifeStatus string

const (
	StatusAlive    LifeStatus = "alive"
	StatusDeceased LifeStatus = "deceased"
)

// Placeholder presentation fields for pets created by breeding.
const (
	PlaceholderImage       = "images/pets/egg.png"
	PlaceholderDescription = "A newborn pet, fresh from the nest."
)

// Pet is the persistent record of one pet.
//
// ID is set by the persistence layer; zero means unsaved. DNA may be empty for
// legacy records and is backfilled on the first breeding attempt.
type Pet struct {
	ID      int64
	OwnerID int64

	Name        string
	ImageURL    string
	Description string

	DNA        string
	BirthDate  *time.Time
	Gender     Gender
	LifeStatus LifeStatus
	Level      int
	Experience int

	MotherID *int64
	FatherID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAlive reports whether the pet is alive.
func (p *Pet) IsAlive() bool {
	return p.LifeStatus != StatusDeceased
}

// Repository is the pet store collaborator.
//
// Every method participates in the ambient transaction carried by ctx, if any.
type Repository interface {
	// Get returns the pet or an error wrapping ErrNotFound.
	Get(ctx context.Context, id int64) (*Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Pet, error)
	// Create inserts p and returns the stored copy with ID and timestamps set.
	Create(ctx context.Context, p *Pet) (*Pet, error)
	// Update persists DNA, level, experience, life status, name, image and description.
	Update(ctx context.Context, p *Pet) error
	Delete(ctx context.Context, id int64) error
	// Transfer changes the owner only.
	Transfer(ctx context.Context, id, newOwnerID int64) error
	// Lock row-locks the given pets until the ambient transaction ends and
	// returns them keyed by id. Missing ids are absent from the map.
	Lock(ctx context.Context, ids ...int64) (map[int64]*Pet, error)
}
