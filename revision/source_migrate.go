package revision

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var migrateFileName = regexp.MustCompile(`^[0-9]+_.*\.(up|down)\.sql$`)

func isMigrateLayout(entries []os.DirEntry) bool {
	for _, entry := range entries {
		if !entry.IsDir() && migrateFileName.MatchString(entry.Name()) {
			return true
		}
	}
	return false
}

// loadMigrateSource строит линейную историю из каталога golang-migrate:
// ревизия - номер версии, предыдущая версия - ее down revision.
func loadMigrateSource(location string) (scripts []*Script, err error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}

	driver, err := source.Open("file://" + filepath.ToSlash(abs))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, driver.Close())
	}()

	version, err := driver.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var previous string
	for {
		s, err := readMigrateVersion(driver, version, abs)
		if err != nil {
			return nil, err
		}
		if previous != "" {
			s.DownRevisions = []string{previous}
		}
		scripts = append(scripts, s)
		previous = s.Revision

		version, err = driver.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return scripts, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func readMigrateVersion(driver source.Driver, version uint, location string) (*Script, error) {
	s := &Script{
		Revision: strconv.FormatUint(uint64(version), 10),
		Path:     location,
	}

	up, identifier, err := driver.ReadUp(version)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		body, err := readAllClose(up)
		if err != nil {
			return nil, fmt.Errorf("read up migration %d: %w", version, err)
		}
		s.Description = identifier
		s.Upgrade = nonEmpty(body)
	}

	down, identifier, err := driver.ReadDown(version)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		body, err := readAllClose(down)
		if err != nil {
			return nil, fmt.Errorf("read down migration %d: %w", version, err)
		}
		if s.Description == "" {
			s.Description = identifier
		}
		s.Downgrade = nonEmpty(body)
		s.reversible = true
	}

	return s, nil
}

func readAllClose(rc io.ReadCloser) (string, error) {
	defer rc.Close()
	body, err := io.ReadAll(rc)
	return string(body), err
}

// golang-migrate выполняет файл целиком одной командой, так же поступаем и мы.
func nonEmpty(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return []string{body}
}
