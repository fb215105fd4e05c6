package revision

import (
	"log/slog"

	"github.com/Maksumys/migration-verify/internal/dialect"
	"github.com/Maksumys/migration-verify/internal/repository"
	"gorm.io/gorm"
)

// migrationManager выполняет скрипты одного каталога над одной базой.
type migrationManager struct {
	db     *gorm.DB
	logger *slog.Logger
	script *Directory

	versionTable string
}

// newMigrationsManager загружает каталог скриптов из cfg и открывает соединение
// с cfg.DatabaseURI. Соединение закрывается через close.
func newMigrationsManager(cfg *Config, opts ...Option) (*migrationManager, error) {
	script, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := dialect.Open(cfg.DatabaseURI)
	if err != nil {
		return nil, err
	}

	manager := migrationManager{
		db:           db,
		logger:       slog.Default(),
		script:       script,
		versionTable: DefaultVersionTable,
	}
	for _, opt := range opts {
		opt(&manager)
	}

	return &manager, nil
}

func (m *migrationManager) close() error {
	return dialect.Close(m.db)
}

func (m *migrationManager) initSystemTables(db *gorm.DB) error {
	if repository.HasVersionTable(db, m.versionTable) {
		return nil
	}

	m.logger.Debug("Version table not found, creating", "table", m.versionTable)
	return repository.CreateVersionTable(db, m.versionTable)
}
