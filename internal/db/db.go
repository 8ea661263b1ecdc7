package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/upascal/fast-api-backend-template/internal/config"
	"github.com/upascal/fast-api-backend-template/internal/db/migrations"
)

// Connect opens a Postgres connection pool via the pgx stdlib adapter
// and verifies connectivity before returning.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	pgxCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}

	// Fail fast on startup if Postgres is unreachable
	pgxCfg.ConnectTimeout = 5 * time.Second

	sqlDB := stdlib.OpenDB(*pgxCfg)

	// Wrap in sqlx for struct scanning
	conn := sqlx.NewDb(sqlDB, "pgx")

	conn.SetMaxOpenConns(cfg.DBMaxOpen)
	conn.SetMaxIdleConns(cfg.DBMaxIdle)
	conn.SetConnMaxLifetime(time.Duration(cfg.DBMaxLifetime) * time.Second)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("db: failed to connect to Postgres: %w", err)
	}

	return conn, nil
}

// Migrate brings the schema up to date using the embedded migrations.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	if err := goose.UpContext(ctx, conn.DB, "."); err != nil {
		return fmt.Errorf("db: migrations failed: %w", err)
	}

	return nil
}
