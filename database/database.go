// Package database wires a configured metadata backend: it opens the
// connection, runs migrations and hands back the repos.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/database/postgres"
	"github.com/sagarc03/vana/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
}

// Repos bundles the object and group repos backed by one connection.
type Repos struct {
	Objects vana.ObjectRepo
	Groups  vana.GroupRepo
	Ping    func(ctx context.Context) error
}

// Connect establishes a connection to the configured database backend, runs
// migrations and returns the repos. The returned cleanup function closes the
// connection.
func Connect(ctx context.Context, cfg Config) (Repos, func(), error) {
	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN)
	default:
		return Repos{}, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func connectSQLite(ctx context.Context, dsn string) (Repos, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Repos{}, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return Repos{}, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = sqlite.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return Repos{}, nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	repo := sqlite.NewRepo(db)
	cleanup := func() { _ = db.Close() }

	return Repos{
		Objects: repo,
		Groups:  sqlite.NewGroupRepo(repo),
		Ping:    repo.Ping,
	}, cleanup, nil
}

func connectPostgres(ctx context.Context, dsn string) (Repos, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return Repos{}, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return Repos{}, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err = postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return Repos{}, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	repo := postgres.NewRepo(pool)

	return Repos{
		Objects: repo,
		Groups:  postgres.NewGroupRepo(repo),
		Ping:    repo.Ping,
	}, pool.Close, nil
}
