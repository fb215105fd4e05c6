package main

import (
	"log/slog"
	"os"

	"github.com/Maksumys/migration-verify/revision"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath  string
	databaseURI string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "revisionctl",
		Short: "Apply and inspect revision-based schema migrations",
		Long: `revisionctl upgrades and downgrades a database through a graph of SQL revision
scripts and reports which revisions are applied.

Settings are read from the [revision] section of the ini file (script_location,
database_uri). DATABASE_URL or --database-uri override the database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "revision.ini", "path to the ini file")
	cmd.PersistentFlags().StringVar(&opts.databaseURI, "database-uri", os.Getenv("DATABASE_URL"), "database uri")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newUpgradeCmd(opts),
		newDowngradeCmd(opts),
		newCurrentCmd(opts),
		newHeadsCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*revision.Config, error) {
	cfg, err := revision.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.databaseURI != "" {
		cfg.DatabaseURI = o.databaseURI
	}
	return cfg, nil
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
