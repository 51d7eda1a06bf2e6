package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

func (cli *commandLine) newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List the sections, teachers, venues, days and time slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := cli.svc.Roster()
			out := cmd.OutOrStdout()
			for _, line := range []struct {
				label  string
				values []string
			}{
				{"Sections", view.Sections},
				{"Teachers", view.Teachers},
				{"Venues", view.Venues},
				{"Days", view.Days},
				{"Time slots", view.TimeSlots},
			} {
				if _, err := fmt.Fprintf(out, "%s: %s\n", line.label, strings.Join(line.values, ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (cli *commandLine) newGenerateCmd() *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate (or regenerate) the timetable of a section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := schedule.GenerateRequest{Section: section}
			if err := data.Validate(cli.validate); err != nil {
				return err
			}
			timetable, err := cli.svc.Generate(cmd.Context(), data.Section)
			if err != nil {
				return err
			}
			return cli.printEntries(cmd.OutOrStdout(), timetable.Entries())
		},
	}
	cmd.Flags().StringVarP(&section, "section", "s", "", "The section to schedule")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func (cli *commandLine) newShowCmd() *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the timetable of a section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			timetable, err := cli.svc.Timetable(cmd.Context(), core.CleanString(section))
			if err != nil {
				return err
			}
			return cli.printEntries(cmd.OutOrStdout(), timetable.Entries())
		},
	}
	cmd.Flags().StringVarP(&section, "section", "s", "", "The section to print")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func (cli *commandLine) newEntriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entries",
		Short: "Print every scheduled class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := cli.svc.Entries(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printEntries(cmd.OutOrStdout(), entries)
		},
	}
}

type availabilityFunc func(cli *commandLine, cmd *cobra.Command, name, day, slot string) (bool, error)

func (cli *commandLine) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a venue, teacher or section is free at a day and time",
	}

	sub := func(use, short string, check availabilityFunc) *cobra.Command {
		var day, slot string
		c := &cobra.Command{
			Use:   use + " NAME",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				available, err := check(cli, c, args[0], day, slot)
				if err != nil {
					return err
				}
				status := "available"
				if !available {
					status = "not available"
				}
				_, err = fmt.Fprintf(c.OutOrStdout(), "%s is %s on %s at %s\n", args[0], status, day, slot)
				return err
			},
		}
		c.Flags().StringVarP(&day, "day", "d", "", "Weekday, e.g. Monday")
		c.Flags().StringVarP(&slot, "time", "t", "", "Time slot, e.g. 8:00-9:00")
		_ = c.MarkFlagRequired("day")
		_ = c.MarkFlagRequired("time")
		return c
	}

	cmd.AddCommand(
		sub("venue", "Check a venue", func(cli *commandLine, c *cobra.Command, name, day, slot string) (bool, error) {
			return cli.svc.CheckVenueAvailability(c.Context(), name, day, slot)
		}),
		sub("teacher", "Check a teacher", func(cli *commandLine, c *cobra.Command, name, day, slot string) (bool, error) {
			return cli.svc.CheckTeacherAvailability(c.Context(), name, day, slot)
		}),
		sub("section", "Check a section", func(cli *commandLine, c *cobra.Command, name, day, slot string) (bool, error) {
			return cli.svc.CheckSectionAvailability(c.Context(), name, day, slot)
		}),
	)
	return cmd
}

func (cli *commandLine) newAddCmd() *cobra.Command {
	var data schedule.NewEntry
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule one class by hand; fails if the teacher is already busy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := data.Validate(cli.validate); err != nil {
				return err
			}
			entry, err := cli.svc.AddEntry(cmd.Context(), data)
			if err != nil {
				return err
			}
			return cli.printEntries(cmd.OutOrStdout(), []schedule.Entry{entry})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&data.Section, "section", "", "Section")
	flags.StringVar(&data.Subject, "subject", "", "Subject")
	flags.StringVar(&data.Teacher, "teacher", "", "Teacher")
	flags.StringVar(&data.Venue, "venue", "", "Venue")
	flags.StringVar(&data.Day, "day", "", "Weekday")
	flags.StringVar(&data.TimeSlot, "time", "", "Time slot")
	return cmd
}

func (cli *commandLine) newExportCmd() *cobra.Command {
	var query schedule.ExportQuery
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every scheduled class as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err = query.Validate(cli.validate); err != nil {
				return err
			}
			format, _ := schedule.ParseFormat(query.Format)

			w := cmd.OutOrStdout()
			if out != "" {
				f, cErr := os.Create(out)
				if cErr != nil {
					return errors.Wrap(cErr, "creating export file")
				}
				defer func() {
					if cErr := f.Close(); err == nil {
						err = cErr
					}
				}()
				w = f
			} else if format == schedule.FormatXLSX && cli.isTerminal {
				return errors.New("refusing to write a workbook to a terminal; use --out")
			}
			return cli.svc.Export(cmd.Context(), w, string(format))
		},
	}
	cmd.Flags().StringVarP(&query.Format, "format", "f", string(schedule.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
