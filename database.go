package migrationverify

import (
	"context"
	"errors"
	"testing"

	"github.com/Maksumys/migration-verify/internal/dialect"
)

// ErrDatabaseExists возвращает CreateDatabase, если sqlite-файл уже существует.
var ErrDatabaseExists = dialect.ErrDatabaseExists

// CreateDatabase создает пустую базу, на которую указывает uri.
func CreateDatabase(ctx context.Context, uri string) error {
	return dialect.CreateDatabase(ctx, uri)
}

// DropDatabase удаляет базу. Для postgres открытые подключения к ней
// предварительно завершаются.
func DropDatabase(ctx context.Context, uri string) error {
	return dialect.DropDatabase(ctx, uri)
}

// DatabaseExists сообщает, существует ли база, на которую указывает uri.
func DatabaseExists(ctx context.Context, uri string) (bool, error) {
	return dialect.DatabaseExists(ctx, uri)
}

// WithNewDatabase создает базу, выполняет fn и удаляет базу при любом выходе из fn,
// в том числе при панике. Ошибка удаления объединяется с ошибкой fn.
func WithNewDatabase(ctx context.Context, uri string, fn func() error) (err error) {
	if err := CreateDatabase(ctx, uri); err != nil {
		return err
	}
	defer func() {
		if dropErr := DropDatabase(ctx, uri); dropErr != nil {
			err = errors.Join(err, dropErr)
		}
	}()

	return fn()
}

// NewDatabase создает базу на время теста tb и удаляет ее в tb.Cleanup.
func NewDatabase(tb testing.TB, uri string) {
	tb.Helper()

	if err := CreateDatabase(context.Background(), uri); err != nil {
		tb.Fatalf("create database %s: %v", uri, err)
	}
	tb.Cleanup(func() {
		if err := DropDatabase(context.Background(), uri); err != nil {
			tb.Errorf("drop database %s: %v", uri, err)
		}
	})
}
