package schedule

import "github.com/samber/lo"

type (
	Day      string
	TimeSlot string
)

// Weekdays
const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

var (
	// Days in generation order.
	Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

	// TimeSlots are the fixed clock intervals of a day (no slot over lunch).
	TimeSlots = []TimeSlot{
		"8:00-9:00", "9:00-10:00", "10:00-11:00", "11:00-12:00",
		"12:00-1:00", "2:00-3:00", "3:00-4:00", "4:00-5:00", "5:00-6:00",
	}
)

func (d Day) String() string { return string(d) }

func (d Day) Valid() bool { return lo.Contains(Days, d) }

// Index returns the position of d in the week, -1 if d is not a weekday.
func (d Day) Index() int { return lo.IndexOf(Days, d) }

func (ts TimeSlot) String() string { return string(ts) }

func (ts TimeSlot) Valid() bool { return lo.Contains(TimeSlots, ts) }

// Index returns the position of ts in the day, -1 if ts is not a known slot.
func (ts TimeSlot) Index() int { return lo.IndexOf(TimeSlots, ts) }

// ParseDay matches `s` exactly against the weekdays.
func ParseDay(s string) (Day, bool) {
	return lo.Find(Days, func(d Day) bool { return string(d) == s })
}

// ParseTimeSlot matches `s` exactly against the known slots.
func ParseTimeSlot(s string) (TimeSlot, bool) {
	return lo.Find(TimeSlots, func(ts TimeSlot) bool { return string(ts) == s })
}

func dayNames() []string {
	return lo.Map(Days, func(d Day, _ int) string { return string(d) })
}

func timeSlotNames() []string {
	return lo.Map(TimeSlots, func(ts TimeSlot, _ int) string { return string(ts) })
}
