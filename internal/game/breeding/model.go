// Package breeding implements the breeding state machine: eligibility checks,
// offspring creation, cooldowns and the mating-request flow between users.
package breeding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/petengine/internal/game/pet"
)

// Rules are the tunable breeding constants.
type Rules struct {
	// Cooldown is how long both parents must wait after breeding.
	Cooldown time.Duration
	// MinAge is the minimum parent age in pet-days.
	MinAge int
	// HappinessBonus is added to both parents' happiness after breeding.
	HappinessBonus int
}

// DefaultRules returns the standard 24h / 18 pet-day / +20 rules.
func DefaultRules() Rules {
	return Rules{Cooldown: 24 * time.Hour, MinAge: 18, HappinessBonus: 20}
}

// CooldownRepository persists per-pet breeding cooldown expiries.
type CooldownRepository interface {
	// Expiry returns the pet's cooldown expiry, or nil if none was ever set.
	Expiry(ctx context.Context, petID int64) (*time.Time, error)
	// Set upserts the pet's cooldown expiry.
	Set(ctx context.Context, petID int64, until time.Time) error
}

// RequestStatus is the state of a mating request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// ErrRequestNotFound is returned by RequestRepository when a request does not exist.
var ErrRequestNotFound = errors.New("mating request not found")

// ErrRequestResolved is returned by RequestRepository.Resolve when the request
// was accepted or declined by someone else first.
var ErrRequestResolved = errors.New("mating request already resolved")

// MatingRequest asks the owner of TargetPetID to breed it with RequesterPetID.
// Offspring of an accepted request belong to the requester.
type MatingRequest struct {
	ID             uuid.UUID
	RequesterID    int64
	RecipientID    int64
	RequesterPetID int64
	TargetPetID    int64
	Status         RequestStatus
	OffspringID    *int64
	CreatedAt      time.Time
	RespondedAt    *time.Time
}

// RequestRepository persists mating requests.
type RequestRepository interface {
	Create(ctx context.Context, r *MatingRequest) error
	// Get returns the request or an error wrapping ErrRequestNotFound.
	Get(ctx context.Context, id uuid.UUID) (*MatingRequest, error)
	// PendingBetween reports whether a pending request exists between the two
	// pets in either direction.
	PendingBetween(ctx context.Context, petA, petB int64) (bool, error)
	// ListPendingForRecipient returns pending requests addressed to userID, oldest first.
	ListPendingForRecipient(ctx context.Context, userID int64) ([]*MatingRequest, error)
	// Resolve records the final status of a pending request. It returns an
	// error wrapping ErrRequestResolved when the stored request is no longer
	// pending, so concurrent accept and decline calls cannot both succeed.
	Resolve(ctx context.Context, r *MatingRequest) error
}

// Result describes a successful breeding.
type Result struct {
	Offspring *pet.Pet
	MotherID  int64
	FatherID  int64
	// CooldownUntil is the new cooldown expiry of both parents.
	CooldownUntil time.Time
}
