// Package memory provides in-process implementations of every engine
// repository and collaborator. It backs tests and the dev profile.
//
// A Store guards all of its maps with one mutex. WithinTx holds that mutex for
// the whole transaction and restores a snapshot when fn fails, so
// transactions are serializable and atomic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

type state struct {
	nextPetID   int64
	pets        map[int64]*pet.Pet
	stats       map[int64]vitals.Stats
	health      map[int64]*health.Record
	personality map[int64]map[personality.Trait]int
	cooldowns   map[int64]time.Time
	requests    map[uuid.UUID]breeding.MatingRequest
	adventures  map[uuid.UUID]adventure.Active
	inventory   map[int64]map[string]int
	balances    map[int64]int64
}

func newState() *state {
	return &state{
		pets:        make(map[int64]*pet.Pet),
		stats:       make(map[int64]vitals.Stats),
		health:      make(map[int64]*health.Record),
		personality: make(map[int64]map[personality.Trait]int),
		cooldowns:   make(map[int64]time.Time),
		requests:    make(map[uuid.UUID]breeding.MatingRequest),
		adventures:  make(map[uuid.UUID]adventure.Active),
		inventory:   make(map[int64]map[string]int),
		balances:    make(map[int64]int64),
	}
}

func (st *state) clone() *state {
	out := newState()
	out.nextPetID = st.nextPetID
	for k, v := range st.pets {
		out.pets[k] = clonePet(v)
	}
	for k, v := range st.stats {
		out.stats[k] = v
	}
	for k, v := range st.health {
		out.health[k] = cloneRecord(v)
	}
	for k, v := range st.personality {
		out.personality[k] = cloneTraits(v)
	}
	for k, v := range st.cooldowns {
		out.cooldowns[k] = v
	}
	for k, v := range st.requests {
		out.requests[k] = v
	}
	for k, v := range st.adventures {
		out.adventures[k] = v
	}
	for k, v := range st.inventory {
		items := make(map[string]int, len(v))
		for id, n := range v {
			items[id] = n
		}
		out.inventory[k] = items
	}
	for k, v := range st.balances {
		out.balances[k] = v
	}
	return out
}

// Store is an in-memory database.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock replaces the clock used for CreatedAt/UpdatedAt stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type txKey struct{}

// WithinTx runs fn while holding the store lock. When fn returns an error
// every change it made is discarded. A nested call joins the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// guard locks the store unless ctx already holds it and returns the release func.
func (s *Store) guard(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Pets returns the pet repository.
func (s *Store) Pets() *PetRepo { return &PetRepo{s: s} }

// Stats returns the stats repository.
func (s *Store) Stats() *StatsRepo { return &StatsRepo{s: s} }

// Health returns the health repository.
func (s *Store) Health() *HealthRepo { return &HealthRepo{s: s} }

// Personality returns the personality repository.
func (s *Store) Personality() *PersonalityRepo { return &PersonalityRepo{s: s} }

// Cooldowns returns the breeding cooldown repository.
func (s *Store) Cooldowns() *CooldownRepo { return &CooldownRepo{s: s} }

// MatingRequests returns the mating request repository.
func (s *Store) MatingRequests() *RequestRepo { return &RequestRepo{s: s} }

// Adventures returns the active adventure repository.
func (s *Store) Adventures() *AdventureRepo { return &AdventureRepo{s: s} }

// Inventory returns the item inventory.
func (s *Store) Inventory() *Inventory { return &Inventory{s: s} }

// Ledger returns the balance ledger.
func (s *Store) Ledger() *Ledger { return &Ledger{s: s} }
