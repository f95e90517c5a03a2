package database

import (
	"embed"
	"errors"
	"fmt"

	"study-deck/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator expects a pgx5:// database URL.
func NewMigrator(databaseURL string) (*Migrator, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	m.Log = migrateLogger{}
	return &Migrator{m: m}, nil
}

func (mg *Migrator) Up() error {
	return ignoreNoChange(mg.m.Up())
}

func (mg *Migrator) Down() error {
	return ignoreNoChange(mg.m.Down())
}

// Steps migrates n versions forward, or backward when n is negative.
func (mg *Migrator) Steps(n int) error {
	return ignoreNoChange(mg.m.Steps(n))
}

// Version returns the current schema version. ok is false when no migration has run.
func (mg *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("could not read schema version: %w", err)
	}
	return version, dirty, true, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations brings the schema up to date. Used by the API at startup when enabled.
func RunMigrations(databaseURL string) error {
	mg, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		return fmt.Errorf("could not apply migrations: %w", err)
	}
	if v, dirty, ok, err := mg.Version(); err == nil && ok {
		logger.Get().Info("Schema is up to date", zap.Uint("version", v), zap.Bool("dirty", dirty))
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Get().Sugar().Infof(format, v...)
}

func (migrateLogger) Verbose() bool { return false }
