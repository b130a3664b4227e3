package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/database/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
)

// getSharedTestDatabase returns a shared, migrated database pool for all
// tests in the package. Reusing one container keeps the suite fast; each test
// starts by truncating the tables.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			t.Fatalf("failed to get connection string: %v", err)
		}

		pool, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			t.Fatalf("could not connect to database: %v", err)
		}

		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			_ = testcontainers.TerminateContainer(pgContainer)
			t.Fatalf("failed to migrate: %v", err)
		}

		testPool = pool
	})

	return testPool
}

// setupTestRepo hands back repos over the shared database with all tables
// emptied.
func setupTestRepo(t *testing.T) (*postgres.Repo, *postgres.GroupRepo) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		TRUNCATE objects, object_readers, object_writers,
		         groups, group_readers, group_writers CASCADE
	`)
	require.NoError(t, err, "truncate tables")

	repo := postgres.NewRepo(pool)
	return repo, postgres.NewGroupRepo(repo)
}

func testObject() vana.Object {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return vana.Object{
		ID:                uuid.New(),
		Name:              "results.csv",
		OwnerID:           "alice",
		Platform:          "gcs-prod",
		Location:          uuid.NewString(),
		SizeEstimateBytes: 1024,
		Active:            true,
		CreatedAt:         now,
		ModifiedAt:        now,
		Readers:           []string{"alice", "bob"},
		Writers:           []string{"alice"},
	}
}
