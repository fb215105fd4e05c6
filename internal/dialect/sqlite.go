package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// sqlite-файлы, которые движок может оставить рядом с базой.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

type sqliteBackend struct {
	path string
}

// newSqlite принимает sqlite:///abs/path.db и sqlite://rel/path.db.
func newSqlite(u *url.URL) (*sqliteBackend, error) {
	path := u.Host + u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite uri has no file path")
	}

	return &sqliteBackend{path: path}, nil
}

func (b *sqliteBackend) dsn() string {
	return b.path + sqlitePragmas
}

func (b *sqliteBackend) dialector() gorm.Dialector {
	return sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        b.dsn(),
	}
}

func (b *sqliteBackend) create(ctx context.Context) error {
	exists, err := b.exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDatabaseExists, b.path)
	}

	db, err := sql.Open("sqlite", b.dsn())
	if err != nil {
		return err
	}
	defer db.Close()

	// файл базы появляется при первом соединении
	return db.PingContext(ctx)
}

func (b *sqliteBackend) drop(_ context.Context) error {
	if err := os.Remove(b.path); err != nil {
		return err
	}

	for _, suffix := range sqliteSidecars {
		err := os.Remove(b.path + suffix)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (b *sqliteBackend) exists(_ context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
