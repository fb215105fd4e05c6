package revision

import (
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

const (
	// SectionName - секция ini-файла, из которой читаются настройки движка.
	SectionName = "revision"

	// DefaultVersionTable хранит по одной строке на каждую примененную голову.
	DefaultVersionTable = "schema_revision"

	hereToken = "%(here)s"
)

// Config указывает движку, где лежат скрипты и к какой базе их применять.
type Config struct {
	ScriptLocation string
	DatabaseURI    string
}

// LoadConfig читает script_location и database_uri из секции [revision].
// Токен %(here)s заменяется на каталог ini-файла.
func LoadConfig(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	section := file.Section(SectionName)
	here := filepath.Dir(path)

	return &Config{
		ScriptLocation: ExpandHere(section.Key("script_location").String(), here),
		DatabaseURI:    section.Key("database_uri").String(),
	}, nil
}

func ExpandHere(value, dir string) string {
	return strings.ReplaceAll(value, hereToken, dir)
}
