package schedule

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ratiba/core"
)

// Format is an export file format.
type Format string

// Export formats
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	xlsxSheet = "Schedule"
)

var Formats = []string{string(FormatCSV), string(FormatXLSX)}

// ParseFormat resolves `s` to a Format; the empty string means CSV.
func ParseFormat(s string) (Format, bool) {
	switch Format(core.CleanString(s, true /* lower */)) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename returns the attachment name of an export.
func (f Format) Filename() string {
	return "schedule." + string(f)
}

// Write writes `entries` in the format, header first.
func (f Format) Write(w io.Writer, entries []Entry) error {
	if f == FormatXLSX {
		return WriteXLSX(w, entries)
	}
	return WriteCSV(w, entries)
}

func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, e := range entries {
		if err := cw.Write(e.Record()); err != nil {
			return errors.Wrap(err, "writing csv record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

func WriteXLSX(w io.Writer, entries []Entry) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil && cErr != nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err = setRow(f, 1, ExportHeader); err != nil {
		return err
	}
	for i, e := range entries {
		if err = setRow(f, i+2, e.Record()); err != nil {
			return err
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	return errors.Wrapf(f.SetSheetRow(xlsxSheet, cell, &values), "writing row %d", row)
}
