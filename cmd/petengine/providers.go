package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/petengine/internal/config"
	"github.com/cory-johannsen/petengine/internal/engine"
	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/item"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
	"github.com/cory-johannsen/petengine/internal/observability"
	"github.com/cory-johannsen/petengine/internal/storage/memory"
	"github.com/cory-johannsen/petengine/internal/storage/postgres"
)

// Backend is one storage implementation of every repository the engine uses.
type Backend struct {
	Name        string
	Pets        pet.Repository
	Stats       vitals.Repository
	Health      health.Repository
	Personality personality.Repository
	Cooldowns   breeding.CooldownRepository
	Requests    breeding.RequestRepository
	Adventures  adventure.Repository
	Inventory   ports.Inventory
	Ledger      ports.Ledger
	Tx          ports.Transactor
	// Durable persists notifications; nil when the backend keeps none.
	Durable ports.Notifier
	// Ping reports whether storage is reachable.
	Ping func(ctx context.Context) error
}

// pingTimeout bounds each storage health probe.
const pingTimeout = 5 * time.Second

// provideBackend opens the configured storage backend.
//
// Postcondition: the cleanup func releases every resource the backend holds.
func provideBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store := memory.NewStore()
		logger.Warn("using in-memory storage; state is lost on exit")
		return &Backend{
			Name:        config.BackendMemory,
			Pets:        store.Pets(),
			Stats:       store.Stats(),
			Health:      store.Health(),
			Personality: store.Personality(),
			Cooldowns:   store.Cooldowns(),
			Requests:    store.MatingRequests(),
			Adventures:  store.Adventures(),
			Inventory:   store.Inventory(),
			Ledger:      store.Ledger(),
			Tx:          store,
			Ping:        func(context.Context) error { return nil },
		}, func() {}, nil

	case config.BackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("connected to database", zap.Duration("elapsed", time.Since(dbStart)))
		db := pool.DB()
		return &Backend{
			Name:        config.BackendPostgres,
			Pets:        postgres.NewPetRepository(db),
			Stats:       postgres.NewStatsRepository(db),
			Health:      postgres.NewHealthRepository(db),
			Personality: postgres.NewPersonalityRepository(db),
			Cooldowns:   postgres.NewCooldownRepository(db),
			Requests:    postgres.NewRequestRepository(db),
			Adventures:  postgres.NewAdventureRepository(db),
			Inventory:   postgres.NewInventoryRepository(db),
			Ledger:      postgres.NewLedgerRepository(db),
			Tx:          postgres.NewTransactor(db),
			Durable:     postgres.NewNotificationStore(db),
			Ping:        func(ctx context.Context) error { return pool.Health(ctx, pingTimeout) },
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// provideNotifier logs every notification and, when the backend has one,
// also stores it.
func provideNotifier(b *Backend, logger *zap.Logger) ports.Notifier {
	logged := ports.LogNotifier{Logger: observability.Component(logger, "notify")}
	if b.Durable == nil {
		return logged
	}
	return ports.MultiNotifier{b.Durable, logged}
}

// Content holds the YAML catalogs.
type Content struct {
	Quests    *adventure.Registry
	Illnesses *health.Catalog
	Items     *item.Catalog
}

// provideContent loads every catalog and checks the references between them.
//
// Postcondition: every quest reward and every item cure names a known entry.
func provideContent(cfg config.Config, logger *zap.Logger) (*Content, error) {
	start := time.Now()
	quests, err := adventure.LoadRegistry(cfg.Content.QuestsDir)
	if err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}
	illnesses, err := health.LoadCatalog(cfg.Content.IllnessesDir)
	if err != nil {
		return nil, fmt.Errorf("loading illnesses: %w", err)
	}
	items, err := item.LoadCatalog(cfg.Content.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	c := &Content{Quests: quests, Illnesses: illnesses, Items: items}
	if err := c.check(); err != nil {
		return nil, err
	}
	logger.Info("loaded content",
		zap.Int("quests", quests.Len()),
		zap.Int("illnesses", len(illnesses.All())),
		zap.Int("items", len(items.All())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

func (c *Content) check() error {
	var rewards []string
	for _, q := range c.Quests.ListForLevel(math.MaxInt) {
		for _, r := range q.Rewards {
			rewards = append(rewards, r.ItemID)
		}
	}
	if missing := c.Items.Missing(rewards...); len(missing) > 0 {
		return fmt.Errorf("quest rewards reference unknown items: %v", missing)
	}
	var unknown []string
	for _, def := range c.Items.All() {
		for _, id := range def.Effects.Cures {
			if _, ok := c.Illnesses.Get(id); !ok {
				unknown = append(unknown, def.ID+"->"+id)
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("items cure unknown illnesses: %v", unknown)
	}
	return nil
}

// provideSource returns the simulation random source.
func provideSource(cfg config.Config) dice.Source {
	if cfg.Engine.Seed != 0 {
		return dice.NewSeededSource(cfg.Engine.Seed)
	}
	return dice.NewSource()
}

func provideRoller(src dice.Source, logger *zap.Logger) adventure.PercentRoller {
	return dice.NewLoggedRoller(src, observability.Component(logger, "rewards"))
}

func provideVitals(repo vitals.Repository, logger *zap.Logger) *vitals.Service {
	return vitals.NewService(repo, observability.Component(logger, "vitals"))
}

func provideHealth(repo health.Repository, pets pet.Repository, catalog *health.Catalog, ledger ports.Ledger,
	notifier ports.Notifier, tx ports.Transactor, logger *zap.Logger) *health.Service {
	return health.NewService(repo, pets, catalog, ledger, notifier, tx, observability.Component(logger, "health"))
}

func providePersonality(repo personality.Repository, pets pet.Repository, notifier ports.Notifier,
	src dice.Source, logger *zap.Logger) *personality.Service {
	return personality.NewService(repo, pets, notifier, src, observability.Component(logger, "personality"))
}

func provideBreeding(d breeding.Deps, cfg config.Config, logger *zap.Logger) *breeding.Service {
	rules := breeding.Rules{
		Cooldown:       cfg.Engine.BreedingCooldown,
		MinAge:         cfg.Engine.MinBreedingAge,
		HappinessBonus: cfg.Engine.BreedingHappinessBonus,
	}
	return breeding.NewService(d, rules, observability.Component(logger, "breeding"))
}

func provideAdventures(repo adventure.Repository, pets pet.Repository, catalog adventure.Catalog,
	inventory ports.Inventory, notifier ports.Notifier, tx ports.Transactor, roller adventure.PercentRoller,
	logger *zap.Logger) *adventure.Manager {
	return adventure.NewManager(repo, pets, catalog, inventory, notifier, tx, roller,
		observability.Component(logger, "adventure"))
}

func provideItems(catalog *item.Catalog, inventory ports.Inventory, pets pet.Repository, vs *vitals.Service,
	hs *health.Service, ps *personality.Service, tx ports.Transactor, logger *zap.Logger) *item.Service {
	return item.NewService(catalog, inventory, pets, vs, hs, ps, tx, observability.Component(logger, "item"))
}

func provideEngine(s engine.Services, logger *zap.Logger) *engine.Engine {
	return engine.New(s, observability.Component(logger, "engine"))
}

// provideReconciler returns nil when background reconciliation is disabled.
func provideReconciler(cfg config.Config, m *adventure.Manager, logger *zap.Logger) *adventure.Reconciler {
	if cfg.Engine.ReconcileInterval <= 0 {
		return nil
	}
	return adventure.NewReconciler(m, cfg.Engine.ReconcileInterval, cfg.Engine.ReconcileBatch,
		observability.Component(logger, "reconciler"))
}

// provideHealthServer returns a health server that reports NOT_SERVING until
// the first successful storage probe.
func provideHealthServer() *grpchealth.Server {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

func provideGRPCServer(hs *grpchealth.Server) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// App is the assembled process.
type App struct {
	Config     config.Config
	Backend    *Backend
	Engine     *engine.Engine
	Reconciler *adventure.Reconciler
	Health     *grpchealth.Server
	GRPC       *grpc.Server
}

// probe updates the health status from one storage ping.
func (a *App) probe(ctx context.Context, logger *zap.Logger) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := a.Backend.Ping(ctx); err != nil {
		logger.Warn("storage health check failed", zap.String("backend", a.Backend.Name), zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	a.Health.SetServingStatus("", status)
	a.Health.SetServingStatus(observability.ServiceName, status)
}
