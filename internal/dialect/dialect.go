// Package dialect открывает соединения и управляет жизненным циклом баз данных
// по URI, выбирая реализацию по схеме.
package dialect

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported database uri scheme")
	ErrDatabaseExists    = errors.New("database already exists")
)

type backend interface {
	dialector() gorm.Dialector
	create(ctx context.Context) error
	drop(ctx context.Context) error
	exists(ctx context.Context) (bool, error)
}

func resolve(uri string) (backend, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return newPostgres(uri)
	case "sqlite":
		return newSqlite(u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Open открывает пул соединений gorm к базе по uri. Собственный логгер gorm отключен.
func Open(uri string) (*gorm.DB, error) {
	b, err := resolve(uri)
	if err != nil {
		return nil, err
	}

	return gorm.Open(b.dialector(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// Close закрывает пул соединений, лежащий под db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateDatabase создает новую пустую базу данных.
func CreateDatabase(ctx context.Context, uri string) error {
	b, err := resolve(uri)
	if err != nil {
		return err
	}
	return b.create(ctx)
}

// DropDatabase уничтожает базу данных со всем содержимым.
func DropDatabase(ctx context.Context, uri string) error {
	b, err := resolve(uri)
	if err != nil {
		return err
	}
	return b.drop(ctx)
}

func DatabaseExists(ctx context.Context, uri string) (bool, error) {
	b, err := resolve(uri)
	if err != nil {
		return false, err
	}
	return b.exists(ctx)
}
