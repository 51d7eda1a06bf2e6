package roster

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kat-co/vala"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

// Load reads the roster named by the configuration: the JSON roster when set, the CSV files otherwise.
func Load(conf *core.Config) (*schedule.Roster, error) {
	if conf.Data.RosterFile != "" {
		return LoadJSON(core.ResolvePath(conf.Data.RosterFile), conf.Data.Sections...)
	}
	return LoadCSV(core.ResolvePath(conf.Data.TeachersFile), core.ResolvePath(conf.Data.VenuesFile), conf.Data.Sections...)
}

// LoadCSV reads a teachers file (FACULTY,SUBJECT,SECTION) and a venues file (VENUE).
func LoadCSV(teachersPath, venuesPath string, sections ...string) (*schedule.Roster, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(teachersPath, "teachersPath"),
		vala.StringNotEmpty(venuesPath, "venuesPath"),
	).Check(); err != nil {
		return nil, err
	}

	tf, err := os.Open(teachersPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening teachers file")
	}
	defer func() { _ = tf.Close() }()
	teachers, err := ReadTeachers(tf)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", teachersPath)
	}

	vf, err := os.Open(venuesPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening venues file")
	}
	defer func() { _ = vf.Close() }()
	venues, err := ReadVenues(vf)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", venuesPath)
	}

	return schedule.NewRoster(teachers, venues, sections...), nil
}

// LoadJSON reads {"teachers": [...], "venues": [...]}. Teacher sections may be a list or a comma-joined string.
func LoadJSON(path string, sections ...string) (*schedule.Roster, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading roster file")
	}
	var inputJson map[string]interface{}
	if err = json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, errors.Wrap(err, "parsing roster file")
	}

	var raw struct {
		Teachers []map[string]interface{}
		Venues   []interface{}
	}
	if err = mapstructure.Decode(inputJson, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding roster")
	}

	teachers, err := decodeTeachers(raw.Teachers)
	if err != nil {
		return nil, err
	}
	// venues are either plain names or {"venue": name} objects
	venueRows := lo.Map(raw.Venues, func(v interface{}, _ int) map[string]interface{} {
		if name, ok := v.(string); ok {
			return map[string]interface{}{"VENUE": name}
		}
		row, _ := v.(map[string]interface{})
		return row
	})
	venues, err := decodeVenues(venueRows)
	if err != nil {
		return nil, err
	}
	return schedule.NewRoster(teachers, venues, sections...), nil
}

func ReadTeachers(r io.Reader) ([]schedule.TeacherRecord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	return decodeTeachers(rows)
}

func ReadVenues(r io.Reader) ([]schedule.VenueRecord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	return decodeVenues(rows)
}

// readRows turns a CSV document into one map per row keyed by the upper-cased header.
func readRows(r io.Reader) ([]map[string]interface{}, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing csv")
	}
	if len(records) == 0 {
		return nil, errors.New("missing csv header")
	}

	header := lo.Map(records[0], func(col string, _ int) string { return strings.ToUpper(core.CleanString(col)) })
	rows := make([]map[string]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeTeachers(rows []map[string]interface{}) ([]schedule.TeacherRecord, error) {
	var teachers []schedule.TeacherRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &teachers,
	})
	if err != nil {
		return nil, err
	}
	if err = decoder.Decode(rows); err != nil {
		return nil, errors.Wrap(err, "decoding teachers")
	}

	checks := make([]vala.Checker, 0, 2*len(teachers))
	for i := range teachers {
		t := &teachers[i]
		t.Faculty = core.CleanString(t.Faculty)
		t.Subject = core.CleanString(t.Subject)
		t.Sections = lo.Compact(lo.Map(t.Sections, func(s string, _ int) string { return core.CleanString(s) }))
		checks = append(checks,
			vala.StringNotEmpty(t.Faculty, fmt.Sprintf("teachers[%d].FACULTY", i)),
			vala.StringNotEmpty(t.Subject, fmt.Sprintf("teachers[%d].SUBJECT", i)),
		)
	}
	if err = vala.BeginValidation().Validate(checks...).Check(); err != nil {
		return nil, err
	}
	return teachers, nil
}

func decodeVenues(rows []map[string]interface{}) ([]schedule.VenueRecord, error) {
	var venues []schedule.VenueRecord
	if err := mapstructure.WeakDecode(rows, &venues); err != nil {
		return nil, errors.Wrap(err, "decoding venues")
	}

	checks := make([]vala.Checker, 0, len(venues))
	for i := range venues {
		venues[i].Venue = core.CleanString(venues[i].Venue)
		checks = append(checks, vala.StringNotEmpty(venues[i].Venue, fmt.Sprintf("venues[%d].VENUE", i)))
	}
	if err := vala.BeginValidation().Validate(checks...).Check(); err != nil {
		return nil, err
	}
	return venues, nil
}
