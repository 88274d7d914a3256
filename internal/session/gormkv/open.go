package gormkv

import (
	"context"
	"fmt"

	"github.com/frahmantamala/resource-dashboard/db"
	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured SQL database, applies pending migrations
// and returns the gorm-backed store together with the raw connection for
// health checks.
func Open(ctx context.Context, cfg internal.SessionStoreConfig) (session.KeyValueStore, *sqlx.DB, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := Migrate(ctx, conn, cfg.Driver); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.SessionDriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn.DB})
	default:
		dialector = &sqlite.Dialector{Conn: conn.DB}
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm session store: %w", err)
	}

	return New(gdb), conn, nil
}

// Connect opens the raw connection for the sqlite or postgres driver.
func Connect(cfg internal.SessionStoreConfig) (*sqlx.DB, error) {
	driver, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect session database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return conn, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, conn *sqlx.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	if err := goose.UpContext(ctx, conn.DB, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback reverts the latest migration.
func Rollback(ctx context.Context, conn *sqlx.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	if err := goose.DownContext(ctx, conn.DB, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case internal.SessionDriverSQLite:
		return "sqlite3", nil
	case internal.SessionDriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("driver %q is not a SQL session store", driver)
	}
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case internal.SessionDriverSQLite:
		return "sqlite3", nil
	case internal.SessionDriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("driver %q has no migrations", driver)
	}
}
