package main

import (
	"context"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
)

var migrateFunc = database.RunMigration // mockable

type commandLine struct {
	svc        schedule.Service
	validate   *validator.Validate
	translator ut.Translator
	db         *sqlx.DB // nil with the memory store
	isTerminal bool     // render tables instead of CSV
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return cli.explain(root.ExecuteContext(context.Background()))
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Generate, inspect and export class timetables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cli.db == nil || isMigrateCmd(cmd) {
				return nil
			}
			return migrateFunc(cmd.Context(), cli.db, "up")
		},
	}

	root.AddCommand(
		cli.newRosterCmd(),
		cli.newGenerateCmd(),
		cli.newShowCmd(),
		cli.newCheckCmd(),
		cli.newAddCmd(),
		cli.newEntriesCmd(),
		cli.newExportCmd(),
		cli.newMigrateCmd(),
	)
	return root
}

func isMigrateCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "migrate" {
			return true
		}
	}
	return false
}

// explain flattens validation errors into a readable message.
func (cli *commandLine) explain(err error) error {
	if err == nil {
		return nil
	}
	var msgs map[string]string
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs = core.TranslateErrors(origErr, cli.translator)
	case *core.ValidationError:
		msgs = origErr.FieldMap()
	}
	if len(msgs) == 0 {
		return err
	}
	return errors.New("invalid input: " + core.JoinFieldErrors(msgs))
}

func (cli *commandLine) printEntries(w io.Writer, entries []schedule.Entry) error {
	if cli.isTerminal {
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, e.Record())
		}
		_, err := fmt.Fprint(w, renderTable(schedule.ExportHeader, rows))
		return err
	}
	return schedule.WriteCSV(w, entries)
}
