package revision

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Maksumys/migration-verify/internal/dialect"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, scripts string) *Config {
	t.Helper()
	uri := "sqlite://" + filepath.Join(t.TempDir(), "revision.db")
	require.NoError(t, dialect.CreateDatabase(context.Background(), uri))

	return &Config{ScriptLocation: scripts, DatabaseURI: uri}
}

func tablesOf(t *testing.T, cfg *Config, names ...string) map[string]bool {
	t.Helper()
	db, err := dialect.Open(cfg.DatabaseURI)
	require.NoError(t, err)
	defer dialect.Close(db)

	found := make(map[string]bool, len(names))
	for _, name := range names {
		found[name] = db.Migrator().HasTable(name)
	}
	return found
}

func TestUpgradeAndDowngrade(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, testScripts)

	rev, err := Current(ctx, cfg)
	require.NoError(t, err)
	require.True(t, rev.IsNone())

	require.NoError(t, Upgrade(ctx, cfg, "9182e2f9745a"))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"9182e2f9745a"}, rev)
	require.Equal(t, map[string]bool{"companies": true, "mobile_numbers": true, "addresses": false},
		tablesOf(t, cfg, "companies", "mobile_numbers", "addresses"))

	require.NoError(t, Upgrade(ctx, cfg, Heads))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"44352f0a4052", "9331f5cd7f8a"}, rev)
	require.Equal(t, "(44352f0a4052, 9331f5cd7f8a)", rev.String())

	require.ErrorIs(t, Downgrade(ctx, cfg, "-1"), ErrMultipleHeads)

	require.NoError(t, Downgrade(ctx, cfg, "591a8001cae9"))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"591a8001cae9"}, rev)
	require.False(t, tablesOf(t, cfg, "employee_notes")["employee_notes"])

	require.NoError(t, Downgrade(ctx, cfg, Base))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, rev)
	require.Equal(t, map[string]bool{"companies": false, "roles": false},
		tablesOf(t, cfg, "companies", "roles"))
}

func TestUpgradeHeadWithBranches(t *testing.T) {
	cfg := newTestConfig(t, testScripts)

	err := Upgrade(context.Background(), cfg, Head)
	require.ErrorIs(t, err, ErrMultipleHeads)

	rev, err := Current(context.Background(), cfg)
	require.NoError(t, err)
	require.Nil(t, rev)
}

func TestStepwiseDowngrade(t *testing.T) {
	for _, revision := range []string{"44352f0a4052", "9331f5cd7f8a"} {
		t.Run(revision, func(t *testing.T) {
			ctx := context.Background()
			cfg := newTestConfig(t, testScripts)

			require.NoError(t, Upgrade(ctx, cfg, revision+"@head"))

			var trace []string
			for {
				rev, err := Current(ctx, cfg)
				require.NoError(t, err)
				if rev.IsNone() {
					break
				}
				require.NoError(t, Downgrade(ctx, cfg, "-1"))
				trace = append(trace, rev.String())
			}

			require.Equal(t, []string{
				revision,
				"591a8001cae9",
				"9182e2f9745a",
				"6c4a48d80d8a",
				"3070a2ba5acc",
			}, trace)
		})
	}
}

func TestFailedUpgradeKeepsLastRevision(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeScript(t, dir, "a.sql", "-- Revision: aa\n-- +upgrade\nCREATE TABLE a (id INTEGER);\n-- +downgrade\nDROP TABLE a;\n")
	writeScript(t, dir, "b.sql", "-- Revision: bb\n-- Down revision: aa\n-- +upgrade\nCREATE TABLE b (id INTEGER);\nINSERT INTO missing VALUES (1);\n")

	cfg := newTestConfig(t, dir)
	err := Upgrade(ctx, cfg, Head)
	require.Error(t, err)
	require.Contains(t, err.Error(), "upgrade bb")

	rev, err := Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"aa"}, rev)
	require.Equal(t, map[string]bool{"a": true, "b": false}, tablesOf(t, cfg, "a", "b"))
}

func TestDowngradeIrreversible(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, filepath.Join("..", "testdata", "golang-migrate"))

	require.NoError(t, Upgrade(ctx, cfg, Head))

	rev, err := Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"3"}, rev)

	require.ErrorIs(t, Downgrade(ctx, cfg, "1"), ErrIrreversible)

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"3"}, rev)
}

func TestUpgradeAndDowngradeThroughMerge(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, writeMergeScripts(t))

	require.NoError(t, Upgrade(ctx, cfg, "b"))
	require.NoError(t, Upgrade(ctx, cfg, "c"))

	rev, err := Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"b", "c"}, rev)

	require.NoError(t, Upgrade(ctx, cfg, "+1"))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"m"}, rev)
	require.True(t, tablesOf(t, cfg, "t_m")["t_m"])

	require.NoError(t, Downgrade(ctx, cfg, "-1"))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"b", "c"}, rev)
	require.Equal(t, map[string]bool{"t_b": true, "t_c": true, "t_m": false},
		tablesOf(t, cfg, "t_b", "t_c", "t_m"))

	require.NoError(t, Upgrade(ctx, cfg, Head))
	require.NoError(t, Downgrade(ctx, cfg, "a"))

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"a"}, rev)
	require.Equal(t, map[string]bool{"t_a": true, "t_b": false, "t_c": false},
		tablesOf(t, cfg, "t_a", "t_b", "t_c"))
}

func TestUpgradeOptions(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t, testScripts)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	err := Upgrade(ctx, cfg, "3070a2ba5acc", WithLogger(logger), WithVersionTable("custom_version"))
	require.NoError(t, err)
	require.Contains(t, logs.String(), "Executing upgrade")
	require.Contains(t, logs.String(), "revision=3070a2ba5acc")

	rev, err := Current(ctx, cfg, WithVersionTable("custom_version"))
	require.NoError(t, err)
	require.Equal(t, Identifier{"3070a2ba5acc"}, rev)

	rev, err = Current(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, rev)
}

func TestHeadsAndHistory(t *testing.T) {
	cfg := &Config{ScriptLocation: testScripts}

	heads, err := HeadsOf(cfg)
	require.NoError(t, err)
	require.Equal(t, Identifier{"44352f0a4052", "9331f5cd7f8a"}, heads)

	history, err := History(cfg)
	require.NoError(t, err)
	require.Len(t, history, 6)
	require.Equal(t, "3070a2ba5acc", history[0].Revision)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "revision.ini")
	body := "[revision]\nscript_location = %(here)s/migrations\ndatabase_uri = sqlite:///tmp/app.db\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, dir+"/migrations", cfg.ScriptLocation)
	require.Equal(t, "sqlite:///tmp/app.db", cfg.DatabaseURI)

	_, err = LoadConfig(filepath.Join(dir, "absent.ini"))
	require.Error(t, err)
}
