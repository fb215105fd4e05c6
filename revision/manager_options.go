package revision

import "log/slog"

type Option func(*migrationManager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *migrationManager) {
		m.logger = logger
	}
}

// WithVersionTable меняет имя таблицы версий, по умолчанию DefaultVersionTable.
func WithVersionTable(name string) Option {
	return func(m *migrationManager) {
		m.versionTable = name
	}
}
