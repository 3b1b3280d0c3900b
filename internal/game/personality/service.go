package personality

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
)

// Service adjusts traits and delivers dominant-trait messages.
type Service struct {
	repo     Repository
	pets     pet.Repository
	notifier ports.Notifier
	src      dice.Source
	logger   *zap.Logger
}

// NewService creates a Service.
//
// Precondition: all arguments must be non-nil.
func NewService(repo Repository, pets pet.Repository, notifier ports.Notifier, src dice.Source, logger *zap.Logger) *Service {
	return &Service{repo: repo, pets: pets, notifier: notifier, src: src, logger: logger}
}

// Init writes a randomly rolled profile for a newly created pet.
func (s *Service) Init(ctx context.Context, petID int64) (*Profile, error) {
	p := Roll(petID, s.src)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("initialising personality for pet %d: %w", petID, err)
	}
	return p, nil
}

// Get returns the pet's profile; a missing row reads as all-Baseline.
func (s *Service) Get(ctx context.Context, petID int64) (*Profile, error) {
	p, err := s.repo.Get(ctx, petID)
	if errors.Is(err, ErrNotFound) {
		return NewBaseline(petID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading personality for pet %d: %w", petID, err)
	}
	return p, nil
}

// Adjust nudges trait by delta, clamping the result to [0, 100]. A pet with no
// row starts from Baseline.
//
// Postcondition: the persisted value is in [0, 100].
func (s *Service) Adjust(ctx context.Context, petID int64, trait Trait, delta int) (int, error) {
	if _, err := ParseTrait(string(trait)); err != nil {
		return 0, err
	}
	p, err := s.Get(ctx, petID)
	if err != nil {
		return 0, err
	}
	v := p.Apply(trait, delta)
	if err := s.repo.Save(ctx, p); err != nil {
		return 0, fmt.Errorf("saving personality for pet %d: %w", petID, err)
	}
	s.logger.Debug("trait adjusted",
		zap.Int64("pet_id", petID),
		zap.String("trait", string(trait)),
		zap.Int("delta", delta),
		zap.Int("value", v),
	)
	return v, nil
}

// Speak sends the dominant-trait message of a pet to its owner and returns it.
// Delivery failure is logged and does not fail the call.
func (s *Service) Speak(ctx context.Context, petID int64) (Trait, string, error) {
	pt, err := pet.Load(ctx, s.pets, petID)
	if err != nil {
		return "", "", s.fail("speak", err)
	}
	p, err := s.Get(ctx, petID)
	if err != nil {
		return "", "", s.fail("speak", err)
	}
	trait := p.Dominant()
	msg := Message(trait, pt.Name)
	ports.NotifyQuietly(ctx, s.notifier, s.logger, pt.OwnerID, ports.NotifyPetMessage, map[string]any{
		"pet_id":  petID,
		"trait":   string(trait),
		"message": msg,
	})
	return trait, msg, nil
}

func (s *Service) fail(op string, err error) error {
	err = gameerr.Storage(err)
	if gameerr.KindOf(err) == gameerr.KindStorage {
		s.logger.Error("personality operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
