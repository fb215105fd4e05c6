package migrationverify

import (
	"path/filepath"
	"testing"

	"github.com/Maksumys/migration-verify/revision"
	"github.com/stretchr/testify/require"
)

const (
	testIni     = "testdata/revision.ini"
	testScripts = "testdata/migrations"
)

// sqliteURI возвращает адрес еще не созданной базы во временном каталоге теста.
func sqliteURI(t *testing.T) string {
	t.Helper()
	return TemporaryURI("sqlite://" + filepath.Join(t.TempDir(), "app.db"))
}

// newDatabaseConfig создает базу на время теста и конфигурацию для нее.
func newDatabaseConfig(t *testing.T) (string, *revision.Config) {
	t.Helper()

	uri := sqliteURI(t)
	NewDatabase(t, uri)

	location, err := ScriptLocation(testIni)
	require.NoError(t, err)

	return uri, MakeConfig(uri, location)
}
