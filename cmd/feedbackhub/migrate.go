package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMigrateCmd は未適用のマイグレーションを適用するコマンドを生成する。
func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			db, applied, err := openDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if applied == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations are up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}
