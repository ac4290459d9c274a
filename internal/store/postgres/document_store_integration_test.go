//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wolfeidau/gasdesk/internal/store"
	"github.com/wolfeidau/gasdesk/internal/store/storetest"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}

func newTestStore(t *testing.T, ctx context.Context, connString string, cfg *DocumentStoreConfig) *DocumentStore {
	t.Helper()

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)

	st, err := NewDocumentStore(ctx, pool, cfg)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "TRUNCATE documents")
	require.NoError(t, err)

	return st
}

func TestIntegration_DocumentStore(t *testing.T) {
	ctx := context.Background()
	connString := setupPostgresContainer(t, ctx)

	storetest.Run(t, func(t *testing.T) store.DocumentStore {
		return newTestStore(t, ctx, connString, &DocumentStoreConfig{AutoMigrate: true})
	})

	t.Run("walk crosses page boundaries", func(t *testing.T) {
		st := newTestStore(t, ctx, connString, &DocumentStoreConfig{AutoMigrate: true, PageSize: 2})
		defer func() { _ = st.Close() }()

		var added []string
		for i := range 5 {
			key, err := st.Add(ctx, "tokens", store.Document{"token": fmt.Sprintf("T%d", i), "busiRegNo": "B1"})
			require.NoError(t, err)
			added = append(added, key)
		}

		var seen []string
		for entry, err := range st.Find(ctx, "tokens", "busiRegNo", "B1") {
			require.NoError(t, err)
			seen = append(seen, entry.Key)
		}
		require.Equal(t, added, seen)
	})

	t.Run("find ignores non string fields", func(t *testing.T) {
		st := newTestStore(t, ctx, connString, &DocumentStoreConfig{AutoMigrate: true})
		defer func() { _ = st.Close() }()

		require.NoError(t, st.Put(ctx, "tokens", "a", store.Document{"cylinderCount": 5}))

		for _, err := range st.Find(ctx, "tokens", "cylinderCount", "5") {
			require.NoError(t, err)
			t.Fatal("numeric field matched a string value")
		}
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		pool, err := NewPool(ctx, &PoolConfig{ConnString: connString, MaxConns: 2, MinConns: 1})
		require.NoError(t, err)
		defer pool.Close()

		require.NoError(t, RunMigrations(ctx, pool))
		require.NoError(t, RunMigrations(ctx, pool))
	})
}
