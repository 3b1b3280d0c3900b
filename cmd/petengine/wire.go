//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/config"
	"github.com/cory-johannsen/petengine/internal/engine"
	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/dna"
)

var storageSet = wire.NewSet(
	provideBackend,
	wire.FieldsOf(new(*Backend),
		"Pets", "Stats", "Health", "Personality", "Cooldowns",
		"Requests", "Adventures", "Inventory", "Ledger", "Tx"),
	provideNotifier,
)

var contentSet = wire.NewSet(
	provideContent,
	wire.FieldsOf(new(*Content), "Quests", "Illnesses", "Items"),
	wire.Bind(new(adventure.Catalog), new(*adventure.Registry)),
)

var gameSet = wire.NewSet(
	provideSource,
	provideRoller,
	dna.NewCodec,
	provideVitals,
	provideHealth,
	providePersonality,
	wire.Struct(new(breeding.Deps), "*"),
	provideBreeding,
	provideAdventures,
	provideItems,
	wire.Struct(new(engine.Services), "*"),
	provideEngine,
	provideReconciler,
)

var serverSet = wire.NewSet(
	provideHealthServer,
	provideGRPCServer,
	wire.Struct(new(App), "*"),
)

// initializeApp assembles the process from its configuration.
func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(storageSet, contentSet, gameSet, serverSet)
	return nil, nil, nil
}
