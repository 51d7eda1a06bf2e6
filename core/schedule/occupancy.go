package schedule

import "github.com/samber/lo"

// occupancy indexes which teachers and venues are booked at each (day, slot).
// Only the conflict-avoiding sampler uses it.
type occupancy struct {
	teachers map[SlotKey]struct{}
	venues   map[SlotKey]struct{}
}

func newOccupancy(entries []Entry) *occupancy {
	occ := &occupancy{
		teachers: make(map[SlotKey]struct{}, len(entries)),
		venues:   make(map[SlotKey]struct{}, len(entries)),
	}
	for _, e := range entries {
		occ.add(e)
	}
	return occ
}

func (occ *occupancy) add(e Entry) {
	occ.teachers[e.TeacherKey()] = struct{}{}
	occ.venues[e.VenueKey()] = struct{}{}
}

func (occ *occupancy) freeTeachers(teachers []TeacherRecord, day Day, slot TimeSlot) []TeacherRecord {
	return lo.Reject(teachers, func(t TeacherRecord, _ int) bool {
		_, booked := occ.teachers[SlotKey{Name: t.Faculty, Day: day, TimeSlot: slot}]
		return booked
	})
}

func (occ *occupancy) freeVenues(venues []VenueRecord, day Day, slot TimeSlot) []VenueRecord {
	return lo.Reject(venues, func(v VenueRecord, _ int) bool {
		_, booked := occ.venues[SlotKey{Name: v.Venue, Day: day, TimeSlot: slot}]
		return booked
	})
}
