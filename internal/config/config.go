// Package config provides Viper-based configuration loading for the pet engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// StorageConfig selects where engine state lives.
type StorageConfig struct {
	// Backend is "postgres" or "memory". The memory backend loses state on exit.
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds the tunable game rules and background work settings.
type EngineConfig struct {
	// BreedingCooldown is how long both parents wait after breeding.
	BreedingCooldown time.Duration `mapstructure:"breeding_cooldown"`
	// MinBreedingAge is the minimum parent age in pet-days.
	MinBreedingAge int `mapstructure:"min_breeding_age"`
	// BreedingHappinessBonus is added to both parents' happiness after breeding.
	BreedingHappinessBonus int `mapstructure:"breeding_happiness_bonus"`
	// ReconcileInterval is the background adventure reconciliation period.
	// Zero disables the background reconciler.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	// ReconcileBatch bounds the adventures completed per background pass.
	ReconcileBatch int `mapstructure:"reconcile_batch"`
	// Seed seeds the simulation random source. Zero seeds from crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// ContentConfig locates the YAML catalogs.
type ContentConfig struct {
	QuestsDir    string `mapstructure:"quests_dir"`
	IllnessesDir string `mapstructure:"illnesses_dir"`
	ItemsDir     string `mapstructure:"items_dir"`
}

// HealthConfig holds the gRPC health endpoint settings.
type HealthConfig struct {
	// GRPCHost is the bind address of the health service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port of the health service.
	GRPCPort int `mapstructure:"grpc_port"`
	// CheckInterval is how often storage health is probed.
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HealthConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.GRPCHost, h.GRPCPort)
}

// Config is the top-level application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Content  ContentConfig  `mapstructure:"content"`
	Health   HealthConfig   `mapstructure:"health"`
}

// Validate checks all configuration invariants. Database settings are only
// checked for the postgres backend.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHealth(c.Health); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	if s.Backend != BackendPostgres && s.Backend != BackendMemory {
		return fmt.Errorf("storage.backend must be one of [postgres, memory], got %q", s.Backend)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.BreedingCooldown < 0 {
		errs = append(errs, "engine.breeding_cooldown must not be negative")
	}
	if e.MinBreedingAge < 0 {
		errs = append(errs, fmt.Sprintf("engine.min_breeding_age must be >= 0, got %d", e.MinBreedingAge))
	}
	if e.BreedingHappinessBonus < 0 || e.BreedingHappinessBonus > 100 {
		errs = append(errs, fmt.Sprintf("engine.breeding_happiness_bonus must be 0-100, got %d", e.BreedingHappinessBonus))
	}
	if e.ReconcileInterval < 0 {
		errs = append(errs, "engine.reconcile_interval must not be negative")
	}
	if e.ReconcileInterval > 0 && e.ReconcileBatch < 1 {
		errs = append(errs, fmt.Sprintf("engine.reconcile_batch must be >= 1 when reconciliation is enabled, got %d", e.ReconcileBatch))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.QuestsDir == "" {
		errs = append(errs, "content.quests_dir must not be empty")
	}
	if c.IllnessesDir == "" {
		errs = append(errs, "content.illnesses_dir must not be empty")
	}
	if c.ItemsDir == "" {
		errs = append(errs, "content.items_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHealth(h HealthConfig) error {
	var errs []string
	if h.GRPCHost == "" {
		errs = append(errs, "health.grpc_host must not be empty")
	}
	if h.GRPCPort < 1 || h.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("health.grpc_port must be 1-65535, got %d", h.GRPCPort))
	}
	if h.CheckInterval <= 0 {
		errs = append(errs, "health.check_interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// PETENGINE_DATABASE_HOST overrides database.host, and so on.
	v.SetEnvPrefix("PETENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendPostgres)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "petengine")
	v.SetDefault("database.password", "petengine")
	v.SetDefault("database.name", "petengine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.breeding_cooldown", "24h")
	v.SetDefault("engine.min_breeding_age", 18)
	v.SetDefault("engine.breeding_happiness_bonus", 20)
	v.SetDefault("engine.reconcile_interval", "1m")
	v.SetDefault("engine.reconcile_batch", 500)
	v.SetDefault("engine.seed", 0)

	v.SetDefault("content.quests_dir", "content/quests")
	v.SetDefault("content.illnesses_dir", "content/illnesses")
	v.SetDefault("content.items_dir", "content/items")

	v.SetDefault("health.grpc_host", "0.0.0.0")
	v.SetDefault("health.grpc_port", 50051)
	v.SetDefault("health.check_interval", "10s")
}
