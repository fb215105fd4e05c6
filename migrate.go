package migrationverify

import (
	"context"
	"errors"

	"github.com/Maksumys/migration-verify/internal/dialect"
	"github.com/Maksumys/migration-verify/revision"
	"gorm.io/gorm"
)

// Handle - результат Apply: соединение с базой и каталог скриптов.
// Закрывается вызовом Close; после этого использовать его нельзя.
type Handle struct {
	DB     *gorm.DB
	Script *revision.Directory
}

// Unpack возвращает соединение и каталог скриптов.
func (h *Handle) Unpack() (*gorm.DB, *revision.Directory) {
	return h.DB, h.Script
}

// Close закрывает пул соединений. Пригоден и для defer, и для tb.Cleanup.
func (h *Handle) Close() error {
	return dialect.Close(h.DB)
}

// Apply открывает соединение с uri, загружает каталог скриптов из cfg и применяет
// ревизии до target. Пустой target означает revision.Head. При ошибке движка
// соединение закрывается, ошибка закрытия объединяется с ошибкой движка.
func Apply(ctx context.Context, uri string, cfg *revision.Config, target string) (*Handle, error) {
	if target == "" {
		target = revision.Head
	}

	db, err := dialect.Open(uri)
	if err != nil {
		return nil, err
	}

	script, err := revision.FromConfig(cfg)
	if err != nil {
		return nil, errors.Join(err, dialect.Close(db))
	}

	if err := revision.Upgrade(ctx, cfg, target); err != nil {
		return nil, errors.Join(err, dialect.Close(db))
	}

	return &Handle{DB: db, Script: script}, nil
}

// WithMigrations вызывает Apply, передает соединение и каталог в fn и закрывает
// соединение после выхода из fn. Ошибка закрытия объединяется с ошибкой fn.
func WithMigrations(
	ctx context.Context,
	uri string,
	cfg *revision.Config,
	target string,
	fn func(db *gorm.DB, script *revision.Directory) error,
) (err error) {
	h, err := Apply(ctx, uri, cfg, target)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, h.Close())
	}()

	return fn(h.Unpack())
}
