package item

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// UseResult reports the pet's state after an item was used on it.
type UseResult struct {
	Item   *Def
	Stats  *vitals.Stats
	Health *health.Record
	Traits map[personality.Trait]int
	Cured  []string
}

// Service applies items from a user's inventory to their pets.
type Service struct {
	catalog     *Catalog
	inventory   ports.Inventory
	pets        pet.Repository
	vitals      *vitals.Service
	health      *health.Service
	personality *personality.Service
	tx          ports.Transactor
	logger      *zap.Logger
}

// NewService creates a Service.
//
// Precondition: all arguments must be non-nil.
func NewService(catalog *Catalog, inventory ports.Inventory, pets pet.Repository, vs *vitals.Service,
	hs *health.Service, ps *personality.Service, tx ports.Transactor, logger *zap.Logger) *Service {
	return &Service{
		catalog:     catalog,
		inventory:   inventory,
		pets:        pets,
		vitals:      vs,
		health:      hs,
		personality: ps,
		tx:          tx,
		logger:      logger,
	}
}

// Catalog returns the item catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Use consumes one itemID from userID's inventory and applies its effects to petID.
//
// Postcondition: either the item was consumed and every effect applied, or
// nothing changed.
func (s *Service) Use(ctx context.Context, userID, petID int64, itemID string) (UseResult, error) {
	def, ok := s.catalog.Get(itemID)
	if !ok {
		return UseResult{}, gameerr.NotFound(fmt.Sprintf("item %q not found", itemID))
	}
	var res UseResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.pets.Lock(ctx, petID)
		if err != nil {
			return err
		}
		p, ok := locked[petID]
		if !ok {
			return gameerr.NotFound(fmt.Sprintf("pet %d not found", petID))
		}
		if err := pet.RequireOwner(p, userID); err != nil {
			return err
		}
		if !p.IsAlive() {
			return gameerr.InvalidState(fmt.Sprintf("%s can no longer use items", p.DisplayName()))
		}
		if !def.Usable() {
			return gameerr.InvalidState(fmt.Sprintf("%s cannot be used on a pet", def.Name))
		}
		consumed, err := s.inventory.Consume(ctx, userID, itemID, 1)
		if err != nil {
			return fmt.Errorf("consuming %q for user %d: %w", itemID, userID, err)
		}
		if !consumed {
			return gameerr.InvalidState(fmt.Sprintf("you have no %s", def.Name))
		}

		res, err = s.apply(ctx, userID, petID, def)
		return err
	})
	if err != nil {
		err = gameerr.Storage(err)
		if gameerr.KindOf(err) == gameerr.KindStorage {
			s.logger.Error("use item failed", zap.String("item", itemID), zap.Error(err))
		}
		return UseResult{}, err
	}
	s.logger.Info("item used",
		zap.Int64("user_id", userID),
		zap.Int64("pet_id", petID),
		zap.String("item", itemID),
		zap.Strings("cured", res.Cured),
	)
	return res, nil
}

func (s *Service) apply(ctx context.Context, userID, petID int64, def *Def) (UseResult, error) {
	e := def.Effects
	res := UseResult{Item: def}

	st, err := s.vitals.Adjust(ctx, petID, e.Hunger, e.Happiness)
	if err != nil {
		return res, err
	}
	res.Stats = st

	rec, err := s.health.Get(ctx, petID)
	if err != nil {
		return res, err
	}
	for _, id := range e.Cures {
		if !rec.Has(id) {
			continue
		}
		if rec, err = s.health.Cure(ctx, userID, petID, id); err != nil {
			return res, err
		}
		res.Cured = append(res.Cured, id)
	}
	if e.HP != 0 {
		if rec, err = s.health.AdjustHP(ctx, petID, e.HP); err != nil {
			return res, err
		}
	}
	res.Health = rec

	if len(e.Traits) > 0 {
		res.Traits = make(map[personality.Trait]int, len(e.Traits))
		names := make([]string, 0, len(e.Traits))
		for name := range e.Traits {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t, err := personality.ParseTrait(name)
			if err != nil {
				return res, err
			}
			v, err := s.personality.Adjust(ctx, petID, t, e.Traits[name])
			if err != nil {
				return res, err
			}
			res.Traits[t] = v
		}
	}
	return res, nil
}
