package migrationverify

import (
	"context"

	"github.com/Maksumys/migration-verify/revision"
	"gorm.io/gorm"
)

// VersionTable - таблица версий, которую читают CurrentRevision и HeadRevision.
const VersionTable = revision.DefaultVersionTable

type revisionType int

const (
	revisionCurrent revisionType = iota
	revisionHead
)

// CurrentRevision возвращает ревизию, записанную в базе; nil, если миграции не применялись.
func CurrentRevision(ctx context.Context, cfg *revision.Config, h *Handle) (revision.Identifier, error) {
	return getRevision(ctx, cfg, h, revisionCurrent)
}

// HeadRevision возвращает голову дерева скриптов; при ветвлении - все головы.
func HeadRevision(ctx context.Context, cfg *revision.Config, h *Handle) (revision.Identifier, error) {
	return getRevision(ctx, cfg, h, revisionHead)
}

func getRevision(ctx context.Context, cfg *revision.Config, h *Handle, kind revisionType) (rev revision.Identifier, err error) {
	env := revision.NewEnvironment(cfg, h.Script)
	if err := env.Configure(ctx, h.DB, VersionTable); err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := env.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if kind == revisionHead {
		return env.HeadRevision(), nil
	}
	return env.Context().CurrentRevision(ctx)
}

// WithSession выполняет fn в транзакции на db: commit при успехе, rollback при ошибке.
// Удобно для подготовки данных до и проверки после миграции.
func WithSession(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// Columns возвращает имена колонок таблицы в порядке их объявления.
func Columns(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	rows, err := db.WithContext(ctx).Table(table).Where("1 = 0").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows.Columns()
}
