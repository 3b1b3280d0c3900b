// Package engine is the entry point callers use: it wires the game services
// together, creates pets with all of their state rows, and dispatches the
// caller-facing actions.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/dna"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/item"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// MaxNameLength bounds pet names.
const MaxNameLength = 64

// Engine is the pet simulation facade.
type Engine struct {
	pets        pet.Repository
	codec       *dna.Codec
	vitals      *vitals.Service
	health      *health.Service
	personality *personality.Service
	breeding    *breeding.Service
	adventures  *adventure.Manager
	items       *item.Service
	tx          ports.Transactor
	logger      *zap.Logger
	now         func() time.Time
}

// Services groups the collaborators of an Engine.
type Services struct {
	Pets        pet.Repository
	Codec       *dna.Codec
	Vitals      *vitals.Service
	Health      *health.Service
	Personality *personality.Service
	Breeding    *breeding.Service
	Adventures  *adventure.Manager
	Items       *item.Service
	Tx          ports.Transactor
}

// New creates an Engine.
//
// Precondition: every Services field must be non-nil.
func New(s Services, logger *zap.Logger) *Engine {
	return &Engine{
		pets:        s.Pets,
		codec:       s.Codec,
		vitals:      s.Vitals,
		health:      s.Health,
		personality: s.Personality,
		breeding:    s.Breeding,
		adventures:  s.Adventures,
		items:       s.Items,
		tx:          s.Tx,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for birth dates. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Breeding returns the breeding service.
func (e *Engine) Breeding() *breeding.Service { return e.breeding }

// Adventures returns the adventure manager.
func (e *Engine) Adventures() *adventure.Manager { return e.adventures }

// Health returns the health service.
func (e *Engine) Health() *health.Service { return e.health }

// Personality returns the personality service.
func (e *Engine) Personality() *personality.Service { return e.personality }

// NewPet describes a pet adopted by a user.
type NewPet struct {
	Name        string
	Gender      pet.Gender
	ImageURL    string
	Description string
}

// CreatePet creates a pet owned by userID with fresh DNA, default stats and
// health, and a randomly rolled personality, all in one transaction.
func (e *Engine) CreatePet(ctx context.Context, userID int64, in NewPet) (*pet.Pet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, gameerr.InvalidState("a pet needs a name")
	}
	if len(name) > MaxNameLength {
		return nil, gameerr.InvalidState(fmt.Sprintf("pet names are limited to %d characters", MaxNameLength))
	}
	if !in.Gender.Valid() {
		return nil, gameerr.InvalidState(fmt.Sprintf("gender must be male or female, got %q", in.Gender))
	}
	image, desc := in.ImageURL, in.Description
	if image == "" {
		image = pet.PlaceholderImage
	}
	if desc == "" {
		desc = pet.PlaceholderDescription
	}

	var out *pet.Pet
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		born := e.now()
		p, err := e.pets.Create(ctx, &pet.Pet{
			OwnerID:     userID,
			Name:        name,
			ImageURL:    image,
			Description: desc,
			DNA:         e.codec.Generate(),
			BirthDate:   &born,
			Gender:      in.Gender,
			LifeStatus:  pet.StatusAlive,
			Level:       1,
		})
		if err != nil {
			return fmt.Errorf("creating pet: %w", err)
		}
		if _, err := e.vitals.Init(ctx, p.ID); err != nil {
			return err
		}
		if _, err := e.health.Init(ctx, p.ID); err != nil {
			return err
		}
		if _, err := e.personality.Init(ctx, p.ID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, e.fail("create_pet", err)
	}
	e.logger.Info("pet created",
		zap.Int64("pet_id", out.ID),
		zap.Int64("owner_id", userID),
		zap.String("gender", string(out.Gender)),
	)
	return out, nil
}

// View is the derived state of one pet at a point in time.
type View struct {
	Pet         *pet.Pet
	AgeDays     int
	Stats       *vitals.Stats
	Health      *health.Record
	Personality *personality.Profile
	Dominant    personality.Trait
	// Adventure is nil when the pet is not on an adventure.
	Adventure         *adventure.Status
	CooldownRemaining time.Duration
}

// ReadStats returns a pet's current derived state, applying stat decay.
func (e *Engine) ReadStats(ctx context.Context, petID int64) (*View, error) {
	p, err := pet.Load(ctx, e.pets, petID)
	if err != nil {
		return nil, e.fail("read_stats", err)
	}
	st, err := e.vitals.Read(ctx, petID)
	if err != nil {
		return nil, e.fail("read_stats", err)
	}
	rec, err := e.health.Get(ctx, petID)
	if err != nil {
		return nil, e.fail("read_stats", err)
	}
	prof, err := e.personality.Get(ctx, petID)
	if err != nil {
		return nil, e.fail("read_stats", err)
	}
	cooldown, err := e.breeding.CooldownRemaining(ctx, petID)
	if err != nil {
		return nil, err
	}
	v := &View{
		Pet:               p,
		AgeDays:           p.Age(e.now()),
		Stats:             st,
		Health:            rec,
		Personality:       prof,
		Dominant:          prof.Dominant(),
		CooldownRemaining: cooldown,
	}
	active, err := e.adventures.ListActive(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].Adventure.PetID == petID {
			v.Adventure = &active[i]
			break
		}
	}
	return v, nil
}

// UseItem consumes one item from userID's inventory and applies it to petID.
func (e *Engine) UseItem(ctx context.Context, userID, petID int64, itemID string) (item.UseResult, error) {
	return e.items.Use(ctx, userID, petID, itemID)
}

func (e *Engine) fail(op string, err error) error {
	err = gameerr.Storage(err)
	if gameerr.KindOf(err) == gameerr.KindStorage {
		e.logger.Error("engine operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
