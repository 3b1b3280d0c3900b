package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// StatsRepo implements vitals.Repository.
type StatsRepo struct{ s *Store }

func (r *StatsRepo) Get(ctx context.Context, petID int64) (*vitals.Stats, error) {
	defer r.s.guard(ctx)()
	st, ok := r.s.state.stats[petID]
	if !ok {
		return nil, fmt.Errorf("stats for pet %d: %w", petID, vitals.ErrNotFound)
	}
	return &st, nil
}

func (r *StatsRepo) Save(ctx context.Context, st *vitals.Stats) error {
	defer r.s.guard(ctx)()
	r.s.state.stats[st.PetID] = *st
	return nil
}

// HealthRepo implements health.Repository.
type HealthRepo struct{ s *Store }

func cloneRecord(r *health.Record) *health.Record {
	c := *r
	c.Illnesses = append([]string(nil), r.Illnesses...)
	return &c
}

func (r *HealthRepo) Get(ctx context.Context, petID int64) (*health.Record, error) {
	defer r.s.guard(ctx)()
	rec, ok := r.s.state.health[petID]
	if !ok {
		return nil, fmt.Errorf("health for pet %d: %w", petID, health.ErrNotFound)
	}
	return cloneRecord(rec), nil
}

func (r *HealthRepo) Save(ctx context.Context, rec *health.Record) error {
	defer r.s.guard(ctx)()
	c := cloneRecord(rec)
	sort.Strings(c.Illnesses)
	r.s.state.health[rec.PetID] = c
	return nil
}

// PersonalityRepo implements personality.Repository.
type PersonalityRepo struct{ s *Store }

func cloneTraits(m map[personality.Trait]int) map[personality.Trait]int {
	out := make(map[personality.Trait]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *PersonalityRepo) Get(ctx context.Context, petID int64) (*personality.Profile, error) {
	defer r.s.guard(ctx)()
	v, ok := r.s.state.personality[petID]
	if !ok {
		return nil, fmt.Errorf("personality for pet %d: %w", petID, personality.ErrNotFound)
	}
	return &personality.Profile{PetID: petID, Values: cloneTraits(v)}, nil
}

func (r *PersonalityRepo) Save(ctx context.Context, p *personality.Profile) error {
	defer r.s.guard(ctx)()
	r.s.state.personality[p.PetID] = cloneTraits(p.Values)
	return nil
}

// CooldownRepo implements breeding.CooldownRepository.
type CooldownRepo struct{ s *Store }

func (r *CooldownRepo) Expiry(ctx context.Context, petID int64) (*time.Time, error) {
	defer r.s.guard(ctx)()
	t, ok := r.s.state.cooldowns[petID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *CooldownRepo) Set(ctx context.Context, petID int64, until time.Time) error {
	defer r.s.guard(ctx)()
	r.s.state.cooldowns[petID] = until
	return nil
}
