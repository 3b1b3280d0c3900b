package breeding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/dna"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// Service runs direct breeding and the mating-request flow.
//
// Every breeding runs in one transaction that row-locks both parents in id
// order, so concurrent attempts involving the same parent serialize and at
// most one passes the cooldown check.
type Service struct {
	pets        pet.Repository
	cooldowns   CooldownRepository
	requests    RequestRepository
	codec       *dna.Codec
	src         dice.Source
	vitals      *vitals.Service
	health      *health.Service
	personality *personality.Service
	notifier    ports.Notifier
	tx          ports.Transactor
	rules       Rules
	logger      *zap.Logger
	now         func() time.Time
}

// Deps groups the Service collaborators.
type Deps struct {
	Pets        pet.Repository
	Cooldowns   CooldownRepository
	Requests    RequestRepository
	Codec       *dna.Codec
	Source      dice.Source
	Vitals      *vitals.Service
	Health      *health.Service
	Personality *personality.Service
	Notifier    ports.Notifier
	Tx          ports.Transactor
}

// NewService creates a Service.
//
// Precondition: every Deps field must be non-nil.
func NewService(d Deps, rules Rules, logger *zap.Logger) *Service {
	return &Service{
		pets:        d.Pets,
		cooldowns:   d.Cooldowns,
		requests:    d.Requests,
		codec:       d.Codec,
		src:         d.Source,
		vitals:      d.Vitals,
		health:      d.Health,
		personality: d.Personality,
		notifier:    d.Notifier,
		tx:          d.Tx,
		rules:       rules,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Breed breeds two pets owned by userID. The offspring belongs to userID.
func (s *Service) Breed(ctx context.Context, userID, petAID, petBID int64) (Result, error) {
	if err := checkDistinct(petAID, petBID); err != nil {
		return Result{}, err
	}
	var res Result
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, b, err := s.lockPair(ctx, petAID, petBID)
		if err != nil {
			return err
		}
		if err := pet.RequireOwner(a, userID); err != nil {
			return err
		}
		if err := pet.RequireOwner(b, userID); err != nil {
			return err
		}
		res, err = s.breedLocked(ctx, userID, a, b)
		return err
	})
	if err != nil {
		return Result{}, s.fail("breed", err)
	}
	s.announce(ctx, userID, res)
	return res, nil
}

// RequestMating asks the owner of targetPetID to breed it with ownPetID.
func (s *Service) RequestMating(ctx context.Context, userID, ownPetID, targetPetID int64) (*MatingRequest, error) {
	if err := checkDistinct(ownPetID, targetPetID); err != nil {
		return nil, err
	}
	var req *MatingRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		own, target, err := s.lockPair(ctx, ownPetID, targetPetID)
		if err != nil {
			return err
		}
		if err := pet.RequireOwner(own, userID); err != nil {
			return err
		}
		if target.OwnerID == userID {
			return gameerr.InvalidState(fmt.Sprintf("you already own %s; breed them directly", target.DisplayName()))
		}
		now := s.now()
		if err := checkPair(own, target, s.rules.MinAge, now); err != nil {
			return err
		}
		if err := checkCooldowns(ctx, s.cooldowns, now, own, target); err != nil {
			return err
		}
		pending, err := s.requests.PendingBetween(ctx, own.ID, target.ID)
		if err != nil {
			return fmt.Errorf("checking pending requests: %w", err)
		}
		if pending {
			return gameerr.InvalidState("a mating request between these pets is already pending")
		}
		req = &MatingRequest{
			ID:             uuid.New(),
			RequesterID:    userID,
			RecipientID:    target.OwnerID,
			RequesterPetID: own.ID,
			TargetPetID:    target.ID,
			Status:         RequestPending,
			CreatedAt:      now,
		}
		if err := s.requests.Create(ctx, req); err != nil {
			return fmt.Errorf("creating mating request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("request", err)
	}
	s.logger.Info("mating requested",
		zap.String("request_id", req.ID.String()),
		zap.Int64("requester_pet_id", req.RequesterPetID),
		zap.Int64("target_pet_id", req.TargetPetID),
	)
	ports.NotifyQuietly(ctx, s.notifier, s.logger, req.RecipientID, ports.NotifyMatingRequest, map[string]any{
		"request_id":       req.ID.String(),
		"requester_id":     req.RequesterID,
		"requester_pet_id": req.RequesterPetID,
		"target_pet_id":    req.TargetPetID,
	})
	return req, nil
}

// AcceptMating accepts a pending request addressed to userID and breeds the
// pair. Rules 1 to 5 are re-checked against current state; the offspring
// belongs to the requester.
func (s *Service) AcceptMating(ctx context.Context, userID int64, requestID uuid.UUID) (Result, error) {
	var (
		res Result
		req *MatingRequest
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = s.loadPending(ctx, userID, requestID); err != nil {
			return err
		}
		if err := checkDistinct(req.RequesterPetID, req.TargetPetID); err != nil {
			return err
		}
		own, target, err := s.lockPair(ctx, req.RequesterPetID, req.TargetPetID)
		if err != nil {
			return err
		}
		if own.OwnerID != req.RequesterID {
			return gameerr.Unauthorized(fmt.Sprintf("%s no longer belongs to the requester", own.DisplayName()))
		}
		if err := pet.RequireOwner(target, userID); err != nil {
			return err
		}
		if res, err = s.breedLocked(ctx, req.RequesterID, own, target); err != nil {
			return err
		}
		at := s.now()
		req.Status = RequestAccepted
		req.RespondedAt = &at
		req.OffspringID = &res.Offspring.ID
		return s.resolve(ctx, req)
	})
	if err != nil {
		return Result{}, s.fail("accept", err)
	}
	ports.NotifyQuietly(ctx, s.notifier, s.logger, req.RequesterID, ports.NotifyMatingAccepted, map[string]any{
		"request_id":   req.ID.String(),
		"offspring_id": res.Offspring.ID,
	})
	s.announce(ctx, req.RequesterID, res)
	return res, nil
}

// DeclineMating declines a pending request addressed to userID.
func (s *Service) DeclineMating(ctx context.Context, userID int64, requestID uuid.UUID) (*MatingRequest, error) {
	var req *MatingRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = s.loadPending(ctx, userID, requestID); err != nil {
			return err
		}
		at := s.now()
		req.Status = RequestDeclined
		req.RespondedAt = &at
		return s.resolve(ctx, req)
	})
	if err != nil {
		return nil, s.fail("decline", err)
	}
	s.logger.Info("mating declined", zap.String("request_id", req.ID.String()))
	ports.NotifyQuietly(ctx, s.notifier, s.logger, req.RequesterID, ports.NotifyMatingDeclined, map[string]any{
		"request_id":    req.ID.String(),
		"target_pet_id": req.TargetPetID,
	})
	return req, nil
}

// ListPending returns the pending requests addressed to userID.
func (s *Service) ListPending(ctx context.Context, userID int64) ([]*MatingRequest, error) {
	list, err := s.requests.ListPendingForRecipient(ctx, userID)
	if err != nil {
		return nil, s.fail("list", fmt.Errorf("listing mating requests for user %d: %w", userID, err))
	}
	return list, nil
}

// CooldownRemaining returns how long petID must wait before breeding again.
func (s *Service) CooldownRemaining(ctx context.Context, petID int64) (time.Duration, error) {
	until, err := s.cooldowns.Expiry(ctx, petID)
	if err != nil {
		return 0, s.fail("cooldown", fmt.Errorf("loading cooldown for pet %d: %w", petID, err))
	}
	if until == nil {
		return 0, nil
	}
	if d := until.Sub(s.now()); d > 0 {
		return d, nil
	}
	return 0, nil
}

func (s *Service) loadPending(ctx context.Context, userID int64, id uuid.UUID) (*MatingRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if errors.Is(err, ErrRequestNotFound) {
		return nil, gameerr.NotFound("mating request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading mating request %s: %w", id, err)
	}
	if req.RecipientID != userID {
		return nil, gameerr.Unauthorized("this mating request is not addressed to you")
	}
	if req.Status != RequestPending {
		return nil, gameerr.InvalidState(fmt.Sprintf("mating request was already %s", req.Status))
	}
	return req, nil
}

func (s *Service) resolve(ctx context.Context, req *MatingRequest) error {
	err := s.requests.Resolve(ctx, req)
	if errors.Is(err, ErrRequestResolved) {
		return gameerr.InvalidState("mating request was already answered")
	}
	if err != nil {
		return fmt.Errorf("resolving mating request %s: %w", req.ID, err)
	}
	return nil
}

// lockPair row-locks both pets and returns them in argument order.
func (s *Service) lockPair(ctx context.Context, aID, bID int64) (*pet.Pet, *pet.Pet, error) {
	locked, err := s.pets.Lock(ctx, aID, bID)
	if err != nil {
		return nil, nil, fmt.Errorf("locking pets %d and %d: %w", aID, bID, err)
	}
	a, ok := locked[aID]
	if !ok {
		return nil, nil, gameerr.NotFound(fmt.Sprintf("pet %d not found", aID))
	}
	b, ok := locked[bID]
	if !ok {
		return nil, nil, gameerr.NotFound(fmt.Sprintf("pet %d not found", bID))
	}
	return a, b, nil
}

// breedLocked applies rules 3 to 5 and every success effect. Both pets must
// already be locked by the ambient transaction.
func (s *Service) breedLocked(ctx context.Context, ownerID int64, a, b *pet.Pet) (Result, error) {
	now := s.now()
	if err := checkPair(a, b, s.rules.MinAge, now); err != nil {
		return Result{}, err
	}
	if err := checkCooldowns(ctx, s.cooldowns, now, a, b); err != nil {
		return Result{}, err
	}

	for _, p := range []*pet.Pet{a, b} {
		if dna.Validate(p.DNA) == nil {
			continue
		}
		p.DNA = s.codec.Generate()
		if err := s.pets.Update(ctx, p); err != nil {
			return Result{}, fmt.Errorf("backfilling dna for pet %d: %w", p.ID, err)
		}
		s.logger.Info("dna backfilled", zap.Int64("pet_id", p.ID))
	}

	mother, father := parents(a, b)
	genome, err := s.codec.Breed(mother.DNA, father.DNA)
	if err != nil {
		return Result{}, err
	}
	gender := pet.GenderMale
	if s.src.Intn(2) == 0 {
		gender = pet.GenderFemale
	}
	born := now
	child, err := s.pets.Create(ctx, &pet.Pet{
		OwnerID:     ownerID,
		Name:        fmt.Sprintf("Baby of %s", mother.DisplayName()),
		ImageURL:    pet.PlaceholderImage,
		Description: pet.PlaceholderDescription,
		DNA:         genome,
		BirthDate:   &born,
		Gender:      gender,
		LifeStatus:  pet.StatusAlive,
		Level:       1,
		MotherID:    &mother.ID,
		FatherID:    &father.ID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("creating offspring: %w", err)
	}

	until := now.Add(s.rules.Cooldown)
	for _, p := range []*pet.Pet{mother, father} {
		if err := s.cooldowns.Set(ctx, p.ID, until); err != nil {
			return Result{}, fmt.Errorf("setting cooldown for pet %d: %w", p.ID, err)
		}
		if _, err := s.vitals.Adjust(ctx, p.ID, 0, s.rules.HappinessBonus); err != nil {
			return Result{}, err
		}
	}

	if _, err := s.vitals.Init(ctx, child.ID); err != nil {
		return Result{}, err
	}
	if _, err := s.health.Init(ctx, child.ID); err != nil {
		return Result{}, err
	}
	if _, err := s.personality.Init(ctx, child.ID); err != nil {
		return Result{}, err
	}

	return Result{Offspring: child, MotherID: mother.ID, FatherID: father.ID, CooldownUntil: until}, nil
}

func (s *Service) announce(ctx context.Context, ownerID int64, res Result) {
	s.logger.Info("pet born",
		zap.Int64("pet_id", res.Offspring.ID),
		zap.Int64("mother_id", res.MotherID),
		zap.Int64("father_id", res.FatherID),
		zap.Int64("owner_id", ownerID),
	)
	ports.NotifyQuietly(ctx, s.notifier, s.logger, ownerID, ports.NotifyPetBorn, map[string]any{
		"pet_id":    res.Offspring.ID,
		"mother_id": res.MotherID,
		"father_id": res.FatherID,
	})
}

func (s *Service) fail(op string, err error) error {
	err = gameerr.Storage(err)
	if gameerr.KindOf(err) == gameerr.KindStorage {
		s.logger.Error("breeding operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
