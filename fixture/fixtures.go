package fixture

import (
	"testing"

	"github.com/Maksumys/migration-verify/revision"
)

// Готовые фикстуры реестра Default. Фикстуры migration_db_uri и
// migration_ini_location (а для устаревших - uri_left и uri_right)
// объявляет сам тестовый пакет.
var (
	MigrationNewDB = DatabaseFactory(
		WithURIFixture(DefaultURIFixture),
		WithName("migration_new_db"),
	)

	MigrationConfig = ConfigFactory(
		WithURIFixture(DefaultURIFixture),
		WithIniLocationFixture(DefaultIniLocationFixture),
		WithName("migration_config"),
	)
)

// Устаревшие фикстуры для пары баз left/right.
var (
	NewDBLeft  = DeprecatedDatabaseFactory(WithURIFixture("uri_left"), WithName("new_db_left"))
	NewDBRight = DeprecatedDatabaseFactory(WithURIFixture("uri_right"), WithName("new_db_right"))

	MigrationConfigLeft = DeprecatedConfigFactory(
		WithURIFixture("uri_left"),
		WithIniLocationFixture(DefaultIniLocationFixture),
		WithName("migration_config_left"),
	)
	MigrationConfigRight = DeprecatedConfigFactory(
		WithURIFixture("uri_right"),
		WithIniLocationFixture(DefaultIniLocationFixture),
		WithName("migration_config_right"),
	)
)

// Use вычисляет фикстуры реестра Default.
func Use(tb testing.TB, names ...string) {
	tb.Helper()
	Default.Use(tb, names...)
}

// Config возвращает конфигурацию из фикстуры name реестра Default.
func Config(tb testing.TB, name string) *revision.Config {
	tb.Helper()

	cfg, ok := Default.Value(tb, name).(*revision.Config)
	if !ok {
		tb.Fatalf("fixture %q is not a config", name)
	}
	return cfg
}
