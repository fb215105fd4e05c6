package fixture

import (
	"testing"

	migrationverify "github.com/Maksumys/migration-verify"
	"github.com/Maksumys/migration-verify/revision"
)

const (
	DefaultURIFixture         = "migration_db_uri"
	DefaultIniLocationFixture = "migration_ini_location"

	defaultConfigName   = "migration_config"
	defaultDatabaseName = "new_db"
)

type options struct {
	name               string
	uriFixture         string
	iniLocationFixture string
	registry           *Registry
	reporter           Reporter
}

type Option func(*options)

// WithName задает имя, под которым фикстура регистрируется и запрашивается.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithURIFixture задает имя фикстуры, возвращающей адрес базы.
func WithURIFixture(name string) Option {
	return func(o *options) {
		o.uriFixture = name
	}
}

// WithIniLocationFixture задает имя фикстуры, возвращающей путь к ini-файлу.
func WithIniLocationFixture(name string) Option {
	return func(o *options) {
		o.iniLocationFixture = name
	}
}

func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

func newOptions(defaultName string, opts []Option) options {
	o := options{
		name:               defaultName,
		uriFixture:         DefaultURIFixture,
		iniLocationFixture: DefaultIniLocationFixture,
		registry:           Default,
		reporter:           LogReporter{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ConfigFixture строит конфигурацию движка из адреса базы и script_location ini-файла.
type ConfigFixture struct {
	options
	deprecated bool
}

func (f *ConfigFixture) Name() string {
	return f.name
}

// Get возвращает конфигурацию для теста tb.
func (f *ConfigFixture) Get(tb testing.TB) *revision.Config {
	tb.Helper()
	return f.registry.Value(tb, f.name).(*revision.Config)
}

func (f *ConfigFixture) provide(tb testing.TB) any {
	tb.Helper()
	if f.deprecated {
		f.reporter.Report(tb, deprecation(f.name))
	}

	uri := f.registry.String(tb, f.uriFixture)
	iniLocation := f.registry.String(tb, f.iniLocationFixture)

	location, err := migrationverify.ScriptLocation(iniLocation)
	if err != nil {
		tb.Fatalf("%s: read %s: %v", f.name, iniLocation, err)
	}
	return migrationverify.MakeConfig(uri, location)
}

// DatabaseFixture создает пустую базу по адресу из фикстуры и удаляет ее после теста.
type DatabaseFixture struct {
	options
	deprecated bool
}

func (f *DatabaseFixture) Name() string {
	return f.name
}

// Use создает базу для теста tb.
func (f *DatabaseFixture) Use(tb testing.TB) {
	tb.Helper()
	f.registry.Use(tb, f.name)
}

func (f *DatabaseFixture) provide(tb testing.TB) any {
	tb.Helper()
	if f.deprecated {
		f.reporter.Report(tb, deprecation(f.name))
	}

	uri := f.registry.String(tb, f.uriFixture)
	migrationverify.NewDatabase(tb, uri)
	return uri
}

type ConfigFactoryFunc func(opts ...Option) *ConfigFixture

type DatabaseFactoryFunc func(opts ...Option) *DatabaseFixture

func newConfigFactory(deprecated bool) ConfigFactoryFunc {
	return func(opts ...Option) *ConfigFixture {
		f := &ConfigFixture{
			options:    newOptions(defaultConfigName, opts),
			deprecated: deprecated,
		}
		f.registry.Register(f.name, f.provide)
		return f
	}
}

func newDatabaseFactory(deprecated bool) DatabaseFactoryFunc {
	return func(opts ...Option) *DatabaseFixture {
		f := &DatabaseFixture{
			options:    newOptions(defaultDatabaseName, opts),
			deprecated: deprecated,
		}
		f.registry.Register(f.name, f.provide)
		return f
	}
}

var (
	ConfigFactory           = newConfigFactory(false)
	DeprecatedConfigFactory = newConfigFactory(true)

	DatabaseFactory           = newDatabaseFactory(false)
	DeprecatedDatabaseFactory = newDatabaseFactory(true)
)
