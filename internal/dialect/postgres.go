package dialect

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maintenanceDatabase = "postgres"

type postgresBackend struct {
	uri    string
	config *pgx.ConnConfig
}

func newPostgres(uri string) (*postgresBackend, error) {
	config, err := pgx.ParseConfig(uri)
	if err != nil {
		return nil, err
	}
	if config.Database == "" {
		return nil, fmt.Errorf("database name is missing in %q", uri)
	}

	return &postgresBackend{uri: uri, config: config}, nil
}

func (b *postgresBackend) dialector() gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  b.uri,
		PreferSimpleProtocol: true,
	})
}

// maintenance подключается к служебной базе того же сервера: создавать и удалять
// базу, к которой подключен сам клиент, нельзя.
func (b *postgresBackend) maintenance(ctx context.Context) (*pgx.Conn, error) {
	config := b.config.Copy()
	config.Database = maintenanceDatabase
	return pgx.ConnectConfig(ctx, config)
}

func (b *postgresBackend) create(ctx context.Context) error {
	conn, err := b.maintenance(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{b.config.Database}.Sanitize())
	return err
}

func (b *postgresBackend) drop(ctx context.Context) error {
	conn, err := b.maintenance(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx,
		`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()`,
		b.config.Database,
	)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, "DROP DATABASE "+pgx.Identifier{b.config.Database}.Sanitize())
	return err
}

func (b *postgresBackend) exists(ctx context.Context) (bool, error) {
	conn, err := b.maintenance(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close(ctx)

	var one int
	err = conn.QueryRow(ctx, `SELECT 1 FROM pg_database WHERE datname = $1`, b.config.Database).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
