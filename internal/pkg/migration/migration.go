// Package migration applies the embedded SQL migrations with golang-migrate.
package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var files embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var (
	ErrNoChange         = migrate.ErrNoChange
	ErrDSNRequired      = errors.New("migration: database url is required")
	ErrInvalidDirection = errors.New("migration: direction must be up or down")
)

// Run migrates dsn in the given direction. Being already at the target
// version is not an error.
func Run(dsn string, dir Direction) error {
	if dsn == "" {
		return ErrDSNRequired
	}
	if dir != Up && dir != Down {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	src, err := iofs.New(files, "migrations")
	if err != nil {
		return fmt.Errorf("migration: source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migration: open: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if dir == Up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: %s: %w", dir, err)
	}
	return nil
}
