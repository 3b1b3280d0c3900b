package health

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
)

// HealResult describes a completed paid heal.
type HealResult struct {
	Cost  int64
	HP    int
	Cured []string
}

// Service owns health points, illnesses and treatment.
type Service struct {
	repo     Repository
	pets     pet.Repository
	catalog  *Catalog
	ledger   ports.Ledger
	notifier ports.Notifier
	tx       ports.Transactor
	logger   *zap.Logger
}

// NewService creates a Service.
//
// Precondition: all arguments must be non-nil.
func NewService(repo Repository, pets pet.Repository, catalog *Catalog, ledger ports.Ledger,
	notifier ports.Notifier, tx ports.Transactor, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		pets:     pets,
		catalog:  catalog,
		ledger:   ledger,
		notifier: notifier,
		tx:       tx,
		logger:   logger,
	}
}

// Catalog returns the illness catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Init writes the default health row for a newly created pet.
func (s *Service) Init(ctx context.Context, petID int64) (*Record, error) {
	r := NewRecord(petID)
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("initialising health for pet %d: %w", petID, err)
	}
	return r, nil
}

// Get returns the pet's record; a missing row reads as the default record.
func (s *Service) Get(ctx context.Context, petID int64) (*Record, error) {
	r, err := s.repo.Get(ctx, petID)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(petID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading health for pet %d: %w", petID, err)
	}
	return r, nil
}

// AdjustHP adds delta to the pet's health points, clamped to [0, 100].
func (s *Service) AdjustHP(ctx context.Context, petID int64, delta int) (*Record, error) {
	r, err := s.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	r.AdjustHP(delta)
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("saving health for pet %d: %w", petID, err)
	}
	return r, nil
}

// Inflict makes the pet contract illnessID. Contracting an active illness is a no-op.
func (s *Service) Inflict(ctx context.Context, petID int64, illnessID string) (*Record, error) {
	def, ok := s.catalog.Get(illnessID)
	if !ok {
		return nil, gameerr.NotFound(fmt.Sprintf("illness %q not found", illnessID))
	}
	var (
		out   *Record
		owner int64
		added bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.pets.Lock(ctx, petID)
		if err != nil {
			return err
		}
		p, ok := locked[petID]
		if !ok {
			return gameerr.NotFound(fmt.Sprintf("pet %d not found", petID))
		}
		owner = p.OwnerID
		r, err := s.Get(ctx, petID)
		if err != nil {
			return err
		}
		if added = r.Add(illnessID); added {
			r.AdjustHP(-def.HPDamage)
		}
		if err := s.repo.Save(ctx, r); err != nil {
			return fmt.Errorf("saving health for pet %d: %w", petID, err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, s.fail("inflict", err)
	}
	if added {
		s.logger.Info("illness contracted",
			zap.Int64("pet_id", petID),
			zap.String("illness", illnessID),
			zap.Int("hp", out.HP),
		)
		ports.NotifyQuietly(ctx, s.notifier, s.logger, owner, ports.NotifyIllnessContracted, map[string]any{
			"pet_id":  petID,
			"illness": def.Name,
		})
	}
	return out, nil
}

// Cure removes one illness from a pet owned by userID. When no illnesses
// remain, the pet's status reverts to healthy.
func (s *Service) Cure(ctx context.Context, userID, petID int64, illnessID string) (*Record, error) {
	var out *Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.lockOwned(ctx, userID, petID); err != nil {
			return err
		}
		r, err := s.Get(ctx, petID)
		if err != nil {
			return err
		}
		if !r.Remove(illnessID) {
			return gameerr.InvalidState(fmt.Sprintf("pet does not have illness %q", illnessID))
		}
		if err := s.repo.Save(ctx, r); err != nil {
			return fmt.Errorf("saving health for pet %d: %w", petID, err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, s.fail("cure", err)
	}
	return out, nil
}

// TreatmentCost returns the summed treatment cost of every active illness.
// Illnesses no longer in the catalog contribute nothing.
func (s *Service) TreatmentCost(r *Record) int64 {
	var total int64
	for _, id := range r.Illnesses {
		if def, ok := s.catalog.Get(id); ok {
			total += def.TreatmentCost
		} else {
			s.logger.Warn("active illness missing from catalog",
				zap.Int64("pet_id", r.PetID),
				zap.String("illness", id),
			)
		}
	}
	return total
}

// Heal charges userID the summed treatment cost of every active illness, cures
// them all and restores HealRestoreHP health points.
//
// Postcondition: on success the pet is healthy and the ledger was debited by Cost;
// on failure nothing changed.
func (s *Service) Heal(ctx context.Context, userID, petID int64) (HealResult, error) {
	var res HealResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.lockOwned(ctx, userID, petID); err != nil {
			return err
		}
		r, err := s.Get(ctx, petID)
		if err != nil {
			return err
		}
		if len(r.Illnesses) == 0 {
			return gameerr.InvalidState("pet is not sick")
		}
		cost := s.TreatmentCost(r)
		if cost > 0 {
			ok, err := s.ledger.Debit(ctx, userID, cost)
			if err != nil {
				return fmt.Errorf("debiting %d from user %d: %w", cost, userID, err)
			}
			if !ok {
				return gameerr.InvalidState(fmt.Sprintf("insufficient balance: treatment costs %d", cost))
			}
		}
		cured := append([]string(nil), r.Illnesses...)
		for _, id := range cured {
			r.Remove(id)
		}
		r.AdjustHP(HealRestoreHP)
		if err := s.repo.Save(ctx, r); err != nil {
			return fmt.Errorf("saving health for pet %d: %w", petID, err)
		}
		res = HealResult{Cost: cost, HP: r.HP, Cured: cured}
		return nil
	})
	if err != nil {
		return HealResult{}, s.fail("heal", err)
	}
	s.logger.Info("pet healed",
		zap.Int64("user_id", userID),
		zap.Int64("pet_id", petID),
		zap.Int64("cost", res.Cost),
		zap.Strings("cured", res.Cured),
	)
	return res, nil
}

func (s *Service) lockOwned(ctx context.Context, userID, petID int64) (*pet.Pet, error) {
	locked, err := s.pets.Lock(ctx, petID)
	if err != nil {
		return nil, err
	}
	p, ok := locked[petID]
	if !ok {
		return nil, gameerr.NotFound(fmt.Sprintf("pet %d not found", petID))
	}
	if err := pet.RequireOwner(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) fail(op string, err error) error {
	err = gameerr.Storage(err)
	if gameerr.KindOf(err) == gameerr.KindStorage {
		s.logger.Error("health operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
