package revision

import (
	"context"

	"github.com/Maksumys/migration-verify/internal/repository"
	"gorm.io/gorm"
)

// Environment связывает конфигурацию и каталог скриптов с транзакцией на чужом
// соединении. Используется для чтения состояния без выполнения миграций.
//
//	env := NewEnvironment(cfg, script)
//	if err := env.Configure(ctx, db, DefaultVersionTable); err != nil { ... }
//	defer env.Close()
//	current, err := env.Context().CurrentRevision(ctx)
type Environment struct {
	config *Config
	script *Directory

	tx           *gorm.DB
	versionTable string
}

func NewEnvironment(cfg *Config, script *Directory) *Environment {
	return &Environment{
		config: cfg,
		script: script,
	}
}

// Configure открывает транзакцию на conn. Транзакция откатывается в Close.
func (e *Environment) Configure(ctx context.Context, conn *gorm.DB, versionTable string) error {
	tx := conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	e.tx = tx
	e.versionTable = versionTable
	return nil
}

// HeadRevision возвращает головы дерева скриптов. База данных не читается.
func (e *Environment) HeadRevision() Identifier {
	return newIdentifier(e.script.Heads())
}

func (e *Environment) Context() *MigrationContext {
	return &MigrationContext{
		tx:           e.tx,
		versionTable: e.versionTable,
	}
}

func (e *Environment) Close() error {
	if e.tx == nil {
		return nil
	}

	err := e.tx.Rollback().Error
	e.tx = nil
	return err
}

// MigrationContext читает состояние базы внутри транзакции окружения.
type MigrationContext struct {
	tx           *gorm.DB
	versionTable string
}

// CurrentRevision возвращает записанные в базе головы или nil, если миграции не применялись.
func (c *MigrationContext) CurrentRevision(ctx context.Context) (Identifier, error) {
	if c.tx == nil {
		return nil, ErrNotConfigured
	}

	tx := c.tx.WithContext(ctx)
	if !repository.HasVersionTable(tx, c.versionTable) {
		return nil, nil
	}

	heads, err := repository.GetHeads(tx, c.versionTable)
	if err != nil {
		return nil, err
	}
	return newIdentifier(heads), nil
}
