package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/tests"
)

func setup(t *testing.T) (*commandLine, schedule.Repository) {
	t.Helper()
	repo := inmemdb.NewEntryRepository(inmemdb.Open())
	validate, translator := testutil.NewValidator()
	return &commandLine{
		svc:        schedule.NewService(repo, testutil.NewRoster(), testutil.NewConfig(42)),
		validate:   validate,
		translator: translator,
	}, repo
}

// execute runs the CLI and captures its output.
func execute(cli *commandLine, args ...string) (string, error) {
	root := cli.rootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := cli.explain(root.ExecuteContext(context.Background()))
	return buf.String(), err
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantOut    string
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(cli, tt.args...)
			if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
				return
			}
			require.NoError(t, err)
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out)
			}
		})
	}
}

func Test_commandLine_generate(t *testing.T) {
	cli, repo := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "missing section", args: []string{"generate"}, wantErrStr: `required flag(s) "section" not set`},
		{name: "no teachers", args: []string{"generate", "--section", "Z"}, wantErrStr: "No teachers available for section Z"},
		{name: "generated", args: []string{"generate", "-s", "A"}},
	})

	entries, err := repo.QuerySection(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, entries, 45)

	// show prints what generate stored, as CSV off a terminal
	out, err := execute(cli, "show", "--section", "A")
	require.NoError(t, err)
	var want bytes.Buffer
	require.NoError(t, schedule.WriteCSV(&want, entries))
	assert.Equal(t, want.String(), out)
}

func Test_commandLine_check(t *testing.T) {
	cli, repo := setup(t)
	testutil.CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, "8:00-9:00")

	runCLITests(t, cli, []cliTest{
		{name: "venue booked", args: []string{"check", "venue", "Room 101", "-d", "Monday", "-t", "8:00-9:00"}, wantOut: "Room 101 is not available on Monday at 8:00-9:00\n"},
		{name: "venue free", args: []string{"check", "venue", "Lab 1", "-d", "Monday", "-t", "8:00-9:00"}, wantOut: "Lab 1 is available on Monday at 8:00-9:00\n"},
		{name: "teacher booked", args: []string{"check", "teacher", "Dr. Amani", "--day", "Monday", "--time", "8:00-9:00"}, wantOut: "Dr. Amani is not available on Monday at 8:00-9:00\n"},
		{name: "section free", args: []string{"check", "section", "B", "--day", "Monday", "--time", "8:00-9:00"}, wantOut: "B is available on Monday at 8:00-9:00\n"},
		{name: "bad day", args: []string{"check", "venue", "Room 101", "-d", "Sunday", "-t", "8:00-9:00"}, wantErrStr: "invalid input: day: day must be a weekday"},
		{name: "missing name", args: []string{"check", "teacher", "-d", "Monday", "-t", "8:00-9:00"}, wantErrStr: "accepts 1 arg(s)"},
	})
}

func Test_commandLine_add(t *testing.T) {
	cli, _ := setup(t)
	args := []string{"add", "--section", "A", "--subject", "Mathematics", "--teacher", "Dr. Amani", "--venue", "Room 101", "--day", "Monday", "--time", "8:00-9:00"}

	runCLITests(t, cli, []cliTest{
		{name: "added", args: args, wantOut: "Section,Subject,Teacher,Venue,Day,Time\nA,Mathematics,Dr. Amani,Room 101,Monday,8:00-9:00\n"},
		{name: "teacher busy", args: args, wantErrStr: schedule.ErrTeacherUnavailable.Error()},
		{name: "missing fields", args: []string{"add", "--section", "A"}, wantErrStr: "invalid input: day: this field is required"},
		{name: "entries", args: []string{"entries"}, wantOut: "Section,Subject,Teacher,Venue,Day,Time\nA,Mathematics,Dr. Amani,Room 101,Monday,8:00-9:00\n"},
	})
}

func Test_commandLine_export(t *testing.T) {
	cli, repo := setup(t)
	e := testutil.CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, "8:00-9:00")
	dir := t.TempDir()

	runCLITests(t, cli, []cliTest{
		{name: "csv to stdout", args: []string{"export"}, wantOut: "Section,Subject,Teacher,Venue,Day,Time\nA,Mathematics,Dr. Amani,Room 101,Monday,8:00-9:00\n"},
		{name: "unknown format", args: []string{"export", "-f", "pdf"}, wantErrStr: "invalid input: format: must be one of: csv, xlsx"},
		{name: "csv to file", args: []string{"export", "-o", filepath.Join(dir, "schedule.csv")}},
		{name: "xlsx to file", args: []string{"export", "-f", "xlsx", "-o", filepath.Join(dir, "schedule.xlsx")}},
	})

	data, err := os.ReadFile(filepath.Join(dir, "schedule.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Section,Subject,Teacher,Venue,Day,Time\nA,Mathematics,Dr. Amani,Room 101,Monday,8:00-9:00\n", string(data))

	f, err := excelize.OpenFile(filepath.Join(dir, "schedule.xlsx"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	assert.Equal(t, [][]string{schedule.ExportHeader, e.Record()}, rows)

	// workbooks are not dumped on a terminal
	cli.isTerminal = true
	_, err = execute(cli, "export", "-f", "xlsx")
	assert.Error(t, err)
}

func Test_commandLine_tableOutput(t *testing.T) {
	cli, repo := setup(t)
	cli.isTerminal = true
	testutil.CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, "8:00-9:00")

	out, err := execute(cli, "entries")
	require.NoError(t, err)
	for _, s := range append(schedule.ExportHeader, "Dr. Amani", "Room 101", "8:00-9:00") {
		assert.Contains(t, out, s)
	}
}

func Test_commandLine_roster(t *testing.T) {
	cli, _ := setup(t)
	out, err := execute(cli, "roster")
	require.NoError(t, err)
	assert.Contains(t, out, "Sections: A, B, C\n")
	assert.Contains(t, out, "Venues: Room 101, Room 102, Lab 1\n")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	// memory store
	_, err := execute(cli, "migrate", "up")
	assert.Equal(t, errNoSQLStore, err)

	cli.db = testutil.OpenSQLite(t)
	var ran []string
	migrateFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		ran = append(ran, command)
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { migrateFunc = database.RunMigration })

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s)"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	})

	// other commands migrate up first
	ran = nil
	_, err = execute(cli, "entries")
	require.NoError(t, err)
	assert.Equal(t, []string{"up"}, ran)
}
