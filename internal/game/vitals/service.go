package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service reads and adjusts stats with decay applied on every access.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service.
//
// Precondition: repo and logger must be non-nil.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Init writes the default stats row for a newly created pet.
func (s *Service) Init(ctx context.Context, petID int64) (*Stats, error) {
	st := Defaults(petID, s.now())
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("initialising stats for pet %d: %w", petID, err)
	}
	return st, nil
}

// Read returns the current decayed stats for petID, persisting only when the
// decay changed a value. A missing row is created with defaults.
func (s *Service) Read(ctx context.Context, petID int64) (*Stats, error) {
	st, dirty, err := s.load(ctx, petID)
	if err != nil {
		return nil, err
	}
	if dirty {
		if err := s.repo.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("saving decayed stats for pet %d: %w", petID, err)
		}
	}
	return st, nil
}

// Adjust applies decay, then adds the deltas and clamps the results.
//
// Postcondition: persisted hunger and happiness are in [MinStat, MaxStat].
func (s *Service) Adjust(ctx context.Context, petID int64, hungerDelta, happinessDelta int) (*Stats, error) {
	st, _, err := s.load(ctx, petID)
	if err != nil {
		return nil, err
	}
	st.Hunger = Clamp(st.Hunger + hungerDelta)
	st.Happiness = Clamp(st.Happiness + happinessDelta)
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("saving adjusted stats for pet %d: %w", petID, err)
	}
	s.logger.Debug("stats adjusted",
		zap.Int64("pet_id", petID),
		zap.Int("hunger_delta", hungerDelta),
		zap.Int("happiness_delta", happinessDelta),
		zap.Int("hunger", st.Hunger),
		zap.Int("happiness", st.Happiness),
	)
	return st, nil
}

func (s *Service) load(ctx context.Context, petID int64) (*Stats, bool, error) {
	now := s.now()
	stored, err := s.repo.Get(ctx, petID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("stats row missing, creating defaults", zap.Int64("pet_id", petID))
		return Defaults(petID, now), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading stats for pet %d: %w", petID, err)
	}
	out, dirty := Decay(stored, now)
	return &out, dirty, nil
}
