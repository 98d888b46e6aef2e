// Package testdb hands tests a migrated Postgres pool. TEST_DATABASE_URL is
// used when set; otherwise a disposable container is started. Tests are
// skipped when neither is available or when running with -short.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"freightdesk/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const EnvDatabaseURL = "TEST_DATABASE_URL"

// Open returns a pool on a schema migrated to the latest version. The pool
// and any container are released when t finishes.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in short mode")
	}

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		dsn = startContainer(t)
	}

	require.NoError(t, database.Migrate(dsn, zap.NewNop()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := database.NewPool(ctx, dsn, 8, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func startContainer(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("freightdesk"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}
