package postgres

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones del esquema con golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator crea el migrador. Si migrationsPath está vacío usa las migraciones embebidas.
func NewMigrator(dsn, migrationsPath string, log *logger.Logger) (*Migrator, error) {
	dbURL, err := pgx5URL(dsn)
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if migrationsPath != "" {
		m, err = migrate.New("file://"+migrationsPath, dbURL)
	} else {
		src, srcErr := iofs.New(migrationsFS, "migrations")
		if srcErr != nil {
			return nil, fmt.Errorf("migrations source: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, dbURL)
	}
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log.Named("migrate")}, nil
}

// Up aplica todas las migraciones pendientes.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	v, dirty, _ := mg.Version()
	mg.log.Info().Uint("version", v).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte todas las migraciones.
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down: %w", err)
	}
	mg.log.Warn().Msg("migraciones revertidas")
	return nil
}

// Steps aplica n migraciones (positivo sube, negativo baja).
func (mg *Migrator) Steps(n int) error {
	err := mg.m.Steps(n)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration steps: %w", err)
	}
	v, dirty, _ := mg.Version()
	mg.log.Info().Int("steps", n).Uint("version", v).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Version devuelve la versión actual; 0 si no hay ninguna aplicada.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return v, dirty, nil
}

// Close libera la fuente y la conexión.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// pgx5URL adapta un DSN postgres:// al esquema del driver pgx/v5 de golang-migrate.
func pgx5URL(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
	case "pgx5":
	default:
		return "", fmt.Errorf("esquema de DSN no soportado: %q", u.Scheme)
	}
	return u.String(), nil
}
