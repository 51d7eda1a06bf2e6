package schedule

import (
	"sort"

	"github.com/samber/lo"
)

// Roster holds the teacher and venue records loaded at startup. It is never mutated afterwards.
type Roster struct {
	Teachers []TeacherRecord
	Venues   []VenueRecord
	sections []string
}

// NewRoster returns a Roster. `sections` is the list offered to users; when empty it is
// derived from the teachers' sections.
func NewRoster(teachers []TeacherRecord, venues []VenueRecord, sections ...string) *Roster {
	return &Roster{
		Teachers: teachers,
		Venues:   venues,
		sections: sections,
	}
}

// TeachersFor returns the teachers of `section`, in load order.
func (r *Roster) TeachersFor(section string) []TeacherRecord {
	return lo.Filter(r.Teachers, func(t TeacherRecord, _ int) bool { return t.Teaches(section) })
}

// TeacherNames returns the unique faculty names, in load order.
func (r *Roster) TeacherNames() []string {
	return lo.Uniq(lo.Map(r.Teachers, func(t TeacherRecord, _ int) string { return t.Faculty }))
}

func (r *Roster) VenueNames() []string {
	return lo.Map(r.Venues, func(v VenueRecord, _ int) string { return v.Venue })
}

func (r *Roster) Sections() []string {
	if len(r.sections) > 0 {
		return r.sections
	}
	sections := lo.Uniq(lo.FlatMap(r.Teachers, func(t TeacherRecord, _ int) []string { return t.Sections }))
	sort.Strings(sections)
	return sections
}

// RosterView is the read model served to the form and the API.
type RosterView struct {
	Sections  []string `json:"sections"`
	Teachers  []string `json:"teachers"`
	Venues    []string `json:"venues"`
	Days      []string `json:"days"`
	TimeSlots []string `json:"time_slots"`
}

func (r *Roster) View() RosterView {
	return RosterView{
		Sections:  r.Sections(),
		Teachers:  r.TeacherNames(),
		Venues:    r.VenueNames(),
		Days:      dayNames(),
		TimeSlots: timeSlotNames(),
	}
}
