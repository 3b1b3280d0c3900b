package postgres

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationState is the schema version after a Migrate call.
type MigrationState struct {
	Version uint
	Dirty   bool
	// Changed is false when the schema was already at the requested version.
	Changed bool
}

// Migrate applies the migrations in dir to the database at dsn.
// steps == 0 applies every pending migration in the given direction.
//
// Precondition: dir holds golang-migrate NNNNNN_name.{up,down}.sql files.
// Postcondition: the schema is at the requested version, or an error is returned.
func Migrate(dsn, dir string, direction Direction, steps int) (MigrationState, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return MigrationState{}, fmt.Errorf("resolving migrations dir %q: %w", dir, err)
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return MigrationState{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case Down:
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return MigrationState{}, fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}

	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed, err = false, nil
	}
	if err != nil {
		return MigrationState{}, fmt.Errorf("migrating %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return MigrationState{}, fmt.Errorf("reading schema version: %w", verr)
	}
	return MigrationState{Version: version, Dirty: dirty, Changed: changed}, nil
}
