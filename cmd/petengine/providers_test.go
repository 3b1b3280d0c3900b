package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/petengine/internal/config"
	"github.com/cory-johannsen/petengine/internal/engine"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/observability"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	v := config.Defaults()
	v.Set("storage.backend", config.BackendMemory)
	v.Set("engine.seed", 7)
	v.Set("content.quests_dir", "../../content/quests")
	v.Set("content.illnesses_dir", "../../content/illnesses")
	v.Set("content.items_dir", "../../content/items")
	cfg, err := config.LoadFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestInitializeApp_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, memoryConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.Equal(t, config.BackendMemory, app.Backend.Name)
	assert.Nil(t, app.Backend.Durable)
	require.NotNil(t, app.Reconciler)

	p, err := app.Engine.CreatePet(ctx, 1, engine.NewPet{Name: "Biscuit", Gender: pet.GenderFemale})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.OwnerID)

	quests := app.Engine.Adventures().ListQuests(1)
	assert.NotEmpty(t, quests)
}

func TestInitializeApp_ReconcilerDisabled(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Engine.ReconcileInterval = 0
	app, cleanup, err := initializeApp(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.Nil(t, app.Reconciler)
}

func TestInitializeApp_UnknownBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Backend = "sqlite"
	_, _, err := initializeApp(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, `unknown storage backend "sqlite"`)
}

func TestProvideContent_RejectsUnknownRewardItem(t *testing.T) {
	cfg := memoryConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`quests:
  - id: bad
    name: Bad
    type: hunt
    min_level: 1
    duration_minutes: 5
    experience_reward: 1
    rewards:
      - item: unobtainium
        chance: 10
`), 0o644))
	cfg.Content.QuestsDir = dir

	_, err := provideContent(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unobtainium")
}

func TestApp_ProbeTracksStorage(t *testing.T) {
	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, memoryConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := app.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: observability.ServiceName})
		require.NoError(t, err)
		return resp.Status
	}

	app.probe(ctx, zaptest.NewLogger(t))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status())

	app.Backend.Ping = func(context.Context) error { return errors.New("connection refused") }
	app.probe(ctx, zaptest.NewLogger(t))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())
}
