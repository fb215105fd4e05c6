package main

import (
	"fmt"
	"strings"

	"github.com/Maksumys/migration-verify/revision"
	"github.com/spf13/cobra"
)

func newUpgradeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade [target]",
		Short: "Upgrade the database to target (default: head)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			target := revision.Head
			if len(args) == 1 {
				target = args[0]
			}
			return revision.Upgrade(cmd.Context(), cfg, target, revision.WithLogger(opts.logger(cmd)))
		},
	}
}

func newDowngradeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "downgrade <target>",
		Short: "Downgrade the database to target, e.g. base or -- -1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return revision.Downgrade(cmd.Context(), cfg, args[0], revision.WithLogger(opts.logger(cmd)))
		},
	}
}

func newCurrentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the revisions recorded in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			rev, err := revision.Current(cmd.Context(), cfg, revision.WithLogger(opts.logger(cmd)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rev)
			return nil
		},
	}
}

func newHeadsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heads",
		Short: "Show the head revisions of the script directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			heads, err := revision.HeadsOf(cfg)
			if err != nil {
				return err
			}
			for _, head := range heads {
				fmt.Fprintln(cmd.OutOrStdout(), head)
			}
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List revisions from base to heads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			history, err := revision.History(cfg)
			if err != nil {
				return err
			}
			for _, s := range history {
				down := "<base>"
				if !s.IsBase() {
					down = strings.Join(s.DownRevisions, ", ")
				}
				kind := ""
				if s.IsMerge() {
					kind = " (merge)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s%s  %s\n", down, s.Revision, kind, s.Description)
			}
			return nil
		},
	}
}
