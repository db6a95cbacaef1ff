// Package migration aplica los scripts embebidos de postgres/migrations con golang-migrate.
package migration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/erp-core/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Migrator envuelve migrate.Migrate con el logger de la app.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logger.Logger
}

// New crea el migrador sobre la URL postgres:// (o postgresql://) de la base.
func New(databaseURL string, log *logger.Logger) (*Migrator, error) {
	if log == nil {
		log = logger.Nop()
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
	}
	dbURL, err := driverURL(databaseURL)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	m.Log = migrateLogger{log: log}
	return &Migrator{migrate: m, log: log}, nil
}

// driverURL cambia el esquema al del driver pgx/v5 de golang-migrate.
func driverURL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("URL de base de datos inválida: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
	default:
		return "", fmt.Errorf("esquema %q no soportado para migraciones", u.Scheme)
	}
	u.Scheme = "pgx5"
	return u.String(), nil
}

// Up aplica las migraciones pendientes.
func (m *Migrator) Up() error {
	m.log.Info().Msg("aplicando migraciones")
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	return m.logVersion("migraciones aplicadas")
}

// Down revierte todas.
func (m *Migrator) Down() error {
	m.log.Warn().Msg("revirtiendo todas las migraciones")
	err := m.migrate.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down: %w", err)
	}
	return nil
}

// Steps aplica n migraciones (positivo sube, negativo baja).
func (m *Migrator) Steps(n int) error {
	err := m.migrate.Steps(n)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration steps %d: %w", n, err)
	}
	return m.logVersion("pasos aplicados")
}

// Force fija la versión sin ejecutar scripts; sirve para sacar la base del estado dirty.
func (m *Migrator) Force(version int) error {
	m.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force %d: %w", version, err)
	}
	return nil
}

// Version devuelve la versión actual; 0 si nunca se migró.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("version: %w", err)
	}
	return v, dirty, nil
}

// Close libera fuente y conexión.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) logVersion(msg string) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
	return nil
}

// migrateLogger adapta logger.Logger a migrate.Logger.
type migrateLogger struct {
	log *logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }
