package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errNoSQLStore = errors.New("migrations need a SQL store (set <ENV>_DATABASE_ENGINE to sqlite or postgres)")

func (cli *commandLine) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a database migration command (up, down, redo, reset, status, version, up-to, down-to)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.db == nil {
				return errNoSQLStore
			}
			return migrateFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}
