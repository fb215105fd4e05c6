package revision

import (
	"context"
	"errors"
)

// Upgrade применяет ревизии из cfg.ScriptLocation к cfg.DatabaseURI до target.
func Upgrade(ctx context.Context, cfg *Config, target string, opts ...Option) (err error) {
	m, err := newMigrationsManager(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.close())
	}()

	return m.upgrade(ctx, target)
}

// Downgrade откатывает ревизии до target.
func Downgrade(ctx context.Context, cfg *Config, target string, opts ...Option) (err error) {
	m, err := newMigrationsManager(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.close())
	}()

	return m.downgrade(ctx, target)
}

// Current возвращает головы, записанные в базе.
func Current(ctx context.Context, cfg *Config, opts ...Option) (rev Identifier, err error) {
	m, err := newMigrationsManager(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, m.close())
	}()

	env := NewEnvironment(cfg, m.script)
	if err := env.Configure(ctx, m.db, m.versionTable); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, env.Close())
	}()

	return env.Context().CurrentRevision(ctx)
}

// HeadsOf возвращает головы дерева скриптов.
func HeadsOf(cfg *Config) (Identifier, error) {
	script, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newIdentifier(script.Heads()), nil
}

// History возвращает ревизии от баз к головам.
func History(cfg *Config) ([]*Script, error) {
	script, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return script.History(), nil
}
