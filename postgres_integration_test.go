package migrationverify

import (
	"context"
	"testing"
	"time"

	"github.com/Maksumys/migration-verify/revision"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres поднимает контейнер PostgreSQL и возвращает строку подключения к нему.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("verify"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate postgres container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return uri
}

func TestPostgresMigrations(t *testing.T) {
	serverURI := startPostgres(t)
	location, err := ScriptLocation(testIni)
	require.NoError(t, err)

	t.Run("databases", func(t *testing.T) {
		ctx := context.Background()
		uri := TemporaryURI(serverURI)

		err := WithNewDatabase(ctx, uri, func() error {
			exists, err := DatabaseExists(ctx, uri)
			require.NoError(t, err)
			require.True(t, exists)
			return nil
		})
		require.NoError(t, err)

		exists, err := DatabaseExists(ctx, uri)
		require.NoError(t, err)
		require.False(t, exists)
	})

	for _, rev := range branchRevisions {
		t.Run("downgrade trace "+rev, func(t *testing.T) {
			uri := TemporaryURI(serverURI)
			NewDatabase(t, uri)
			cfg := MakeConfig(uri, location)

			h, err := Apply(context.Background(), uri, cfg, rev+"@head")
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, h.Close()) })

			require.Equal(t, expectedTrace(rev), downgradeTrace(t, cfg, h))
		})
	}

	t.Run("is_mobile default", func(t *testing.T) {
		ctx := context.Background()
		uri := TemporaryURI(serverURI)
		NewDatabase(t, uri)
		cfg := MakeConfig(uri, location)

		h, err := Apply(ctx, uri, cfg, isMobileDownRevision)
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, h.Close()) })

		seedEmployee(t, h.DB, "INSERT INTO mobile_numbers (id, number, owner) VALUES (1, '+44-7911-123456', 1)")
		require.NoError(t, revision.Upgrade(ctx, cfg, isMobileRevision))

		var row mobileNumber
		require.NoError(t, h.DB.Raw("SELECT id, number, owner, is_mobile FROM mobile_numbers WHERE id = 1").Scan(&row).Error)
		require.Equal(t, mobileNumber{ID: 1, Number: "+44-7911-123456", Owner: 1}, row)

		current, err := CurrentRevision(ctx, cfg, h)
		require.NoError(t, err)
		require.Equal(t, revision.Identifier{isMobileRevision}, current)
	})
}
