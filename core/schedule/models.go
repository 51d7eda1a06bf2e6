package schedule

import (
	"sort"

	"github.com/samber/lo"
)

// ExportHeader is the fixed column order of exported tables.
var ExportHeader = []string{"Section", "Subject", "Teacher", "Venue", "Day", "Time"}

type (
	// TeacherRecord is one row of the teachers dataset: a faculty member teaching one subject to some sections.
	TeacherRecord struct {
		Faculty  string   `json:"faculty" mapstructure:"FACULTY"`
		Subject  string   `json:"subject" mapstructure:"SUBJECT"`
		Sections []string `json:"sections" mapstructure:"SECTION"`
	}

	VenueRecord struct {
		Venue string `json:"venue" mapstructure:"VENUE"`
	}

	// Entry assigns one (subject, teacher, venue) to one (day, slot) cell of a section.
	Entry struct {
		Section  string   `json:"section" db:"section"`
		Subject  string   `json:"subject" db:"subject"`
		Teacher  string   `json:"teacher" db:"teacher"`
		Venue    string   `json:"venue" db:"venue"`
		Day      Day      `json:"day" db:"day"`
		TimeSlot TimeSlot `json:"time" db:"time_slot"`
	}

	// Timetable groups a section's entries by day; each day keeps draw order.
	Timetable map[Day][]Entry

	// SlotKey identifies a (name, day, slot) cell where name is a venue, teacher or section.
	SlotKey struct {
		Name     string
		Day      Day
		TimeSlot TimeSlot
	}
)

func (tr TeacherRecord) Teaches(section string) bool {
	return lo.Contains(tr.Sections, section)
}

// Record returns the entry's fields in ExportHeader order.
func (e Entry) Record() []string {
	return []string{e.Section, e.Subject, e.Teacher, e.Venue, string(e.Day), string(e.TimeSlot)}
}

func (e Entry) VenueKey() SlotKey {
	return SlotKey{Name: e.Venue, Day: e.Day, TimeSlot: e.TimeSlot}
}

func (e Entry) TeacherKey() SlotKey {
	return SlotKey{Name: e.Teacher, Day: e.Day, TimeSlot: e.TimeSlot}
}

func (e Entry) SectionKey() SlotKey {
	return SlotKey{Name: e.Section, Day: e.Day, TimeSlot: e.TimeSlot}
}

// NewTimetable groups entries by day, keeping their relative order.
func NewTimetable(entries []Entry) Timetable {
	return lo.GroupBy(entries, func(e Entry) Day { return e.Day })
}

// Days returns the days holding at least one entry, in weekday order.
func (tt Timetable) Days() []Day {
	days := lo.Keys(map[Day][]Entry(tt))
	sort.Slice(days, func(i, j int) bool { return days[i].Index() < days[j].Index() })
	return days
}

// Len returns the total number of entries.
func (tt Timetable) Len() int {
	return lo.SumBy(lo.Values(map[Day][]Entry(tt)), func(entries []Entry) int { return len(entries) })
}

// Entries flattens the timetable in weekday order.
func (tt Timetable) Entries() []Entry {
	return lo.FlatMap(tt.Days(), func(d Day, _ int) []Entry { return tt[d] })
}
