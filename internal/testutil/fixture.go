package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/petengine/internal/engine"
	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/dna"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/item"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
	"github.com/cory-johannsen/petengine/internal/storage/memory"
)

// Clock is a manually advanced time source safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Fixture is a fully wired engine over an in-memory store with a simulated clock.
type Fixture struct {
	Store  *memory.Store
	Outbox *memory.Outbox
	Clock  *Clock
	Logger *zap.Logger

	// Drops scripts the reward roller; the default of 0 makes every drop hit.
	Drops *dice.Fixed

	Quests    *adventure.Registry
	Illnesses *health.Catalog
	Items     *item.Catalog

	Pets        pet.Repository
	Vitals      *vitals.Service
	Health      *health.Service
	Personality *personality.Service
	Breeding    *breeding.Service
	Adventures  *adventure.Manager
	ItemService *item.Service
	Engine      *engine.Engine
}

// FixtureStart is the initial simulated time of every Fixture.
var FixtureStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewFixture wires every service against a fresh memory.Store with small
// built-in catalogs.
//
// Postcondition: all services share one clock, one store and one outbox.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := NewClock(FixtureStart)
	store := memory.NewStore().WithClock(clock.Now)
	outbox := memory.NewOutbox()
	src := dice.NewSeededSource(42)
	drops := &dice.Fixed{Values: []int{0}}

	quests, err := adventure.NewRegistry(FixtureQuests()...)
	if err != nil {
		t.Fatalf("building quest registry: %v", err)
	}
	illnesses, err := health.NewCatalog(FixtureIllnesses()...)
	if err != nil {
		t.Fatalf("building illness catalog: %v", err)
	}
	items, err := item.NewCatalog(FixtureItems()...)
	if err != nil {
		t.Fatalf("building item catalog: %v", err)
	}

	pets := store.Pets()
	codec := dna.NewCodec(src)
	vs := vitals.NewService(store.Stats(), logger).WithClock(clock.Now)
	hs := health.NewService(store.Health(), pets, illnesses, store.Ledger(), outbox, store, logger)
	ps := personality.NewService(store.Personality(), pets, outbox, src, logger)
	bs := breeding.NewService(breeding.Deps{
		Pets:        pets,
		Cooldowns:   store.Cooldowns(),
		Requests:    store.MatingRequests(),
		Codec:       codec,
		Source:      src,
		Vitals:      vs,
		Health:      hs,
		Personality: ps,
		Notifier:    outbox,
		Tx:          store,
	}, breeding.DefaultRules(), logger).WithClock(clock.Now)
	am := adventure.NewManager(store.Adventures(), pets, quests, store.Inventory(), outbox, store,
		dice.NewLoggedRoller(drops, logger), logger).WithClock(clock.Now)
	is := item.NewService(items, store.Inventory(), pets, vs, hs, ps, store, logger)
	eng := engine.New(engine.Services{
		Pets:        pets,
		Codec:       codec,
		Vitals:      vs,
		Health:      hs,
		Personality: ps,
		Breeding:    bs,
		Adventures:  am,
		Items:       is,
		Tx:          store,
	}, logger).WithClock(clock.Now)

	return &Fixture{
		Store:       store,
		Outbox:      outbox,
		Clock:       clock,
		Logger:      logger,
		Drops:       drops,
		Quests:      quests,
		Illnesses:   illnesses,
		Items:       items,
		Pets:        pets,
		Vitals:      vs,
		Health:      hs,
		Personality: ps,
		Breeding:    bs,
		Adventures:  am,
		ItemService: is,
		Engine:      eng,
	}
}

// Pet stores an alive pet aged ageDays pet-days with default state rows.
func (f *Fixture) Pet(t testing.TB, ownerID int64, name string, gender pet.Gender, ageDays int) *pet.Pet {
	t.Helper()
	ctx := context.Background()
	born := f.Clock.Now().Add(-time.Duration(ageDays*pet.HoursPerPetDay) * time.Hour)
	p, err := f.Pets.Create(ctx, &pet.Pet{
		OwnerID:    ownerID,
		Name:       name,
		DNA:        dna.NewCodec(dice.NewSeededSource(uint64(len(name)))).Generate(),
		BirthDate:  &born,
		Gender:     gender,
		LifeStatus: pet.StatusAlive,
		Level:      1,
	})
	if err != nil {
		t.Fatalf("creating pet %q: %v", name, err)
	}
	if _, err := f.Vitals.Init(ctx, p.ID); err != nil {
		t.Fatalf("init stats: %v", err)
	}
	if _, err := f.Health.Init(ctx, p.ID); err != nil {
		t.Fatalf("init health: %v", err)
	}
	if _, err := f.Personality.Init(ctx, p.ID); err != nil {
		t.Fatalf("init personality: %v", err)
	}
	return p
}

// FixtureQuests returns the quests loaded into every Fixture.
func FixtureQuests() []*adventure.Quest {
	return []*adventure.Quest{
		{
			ID: "walk", Name: "Walk", Type: adventure.QuestExploration,
			MinLevel: 1, DurationMinutes: 60, ExperienceReward: 60,
			Rewards: []adventure.RewardDrop{{ItemID: "kibble", Chance: 50}, {ItemID: "pebble", Chance: 0.01}},
		},
		{
			ID: "trial", Name: "Trial", Type: adventure.QuestHunt,
			MinLevel: 3, DurationMinutes: 120, ExperienceReward: 300,
		},
	}
}

// FixtureIllnesses returns the illnesses loaded into every Fixture.
func FixtureIllnesses() []*health.IllnessDef {
	return []*health.IllnessDef{
		{ID: "sniffles", Name: "Sniffles", Severity: health.SeverityMild, TreatmentCost: 50, HPDamage: 5},
		{ID: "fever", Name: "Fever", Severity: health.SeverityModerate, TreatmentCost: 200, HPDamage: 20},
	}
}

// FixtureItems returns the items loaded into every Fixture.
func FixtureItems() []*item.Def {
	return []*item.Def{
		{ID: "kibble", Name: "Kibble", Kind: item.KindFood, Effects: item.Effects{Hunger: 25}},
		{ID: "pebble", Name: "Pebble", Kind: item.KindTreasure},
		{ID: "tea", Name: "Tea", Kind: item.KindMedicine, Effects: item.Effects{HP: 5, Cures: []string{"sniffles"}}},
		{ID: "ball", Name: "Ball", Kind: item.KindToy, Effects: item.Effects{
			Happiness: 15,
			Traits:    map[string]int{"laziness": -2, "bravery": 200},
		}},
	}
}
