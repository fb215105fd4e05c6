package migrationverify

import (
	"path/filepath"

	"github.com/Maksumys/migration-verify/revision"
	"github.com/go-ini/ini"
)

// MakeConfig возвращает конфигурацию движка: скрипты из folder, база по uri.
// Значения не проверяются.
func MakeConfig(uri, folder string) *revision.Config {
	return &revision.Config{
		ScriptLocation: folder,
		DatabaseURI:    uri,
	}
}

// ScriptLocation читает script_location из секции [revision] ini-файла.
// Отсутствующий ключ дает пустую строку.
func ScriptLocation(iniPath string) (string, error) {
	file, err := ini.Load(iniPath)
	if err != nil {
		return "", err
	}

	value := file.Section(revision.SectionName).Key("script_location").String()
	return revision.ExpandHere(value, filepath.Dir(iniPath)), nil
}
