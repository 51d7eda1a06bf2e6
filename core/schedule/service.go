package schedule

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/trezcool/ratiba/core"
)

type (
	Service interface {
		// Generate replaces the timetable of `section` with a freshly sampled one.
		Generate(ctx context.Context, section string) (Timetable, error)
		Timetable(ctx context.Context, section string) (Timetable, error)
		CheckVenueAvailability(ctx context.Context, venue, day, slot string) (bool, error)
		CheckTeacherAvailability(ctx context.Context, teacher, day, slot string) (bool, error)
		CheckSectionAvailability(ctx context.Context, section, day, slot string) (bool, error)
		AddEntry(ctx context.Context, ne NewEntry) (Entry, error)
		Entries(ctx context.Context) ([]Entry, error)
		Export(ctx context.Context, w io.Writer, format string) error
		Roster() RosterView
	}

	service struct {
		repo           Repository
		roster         *Roster
		avoidConflicts bool

		mu  sync.Mutex // serialises writes and guards rnd
		rnd *rand.Rand
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, roster *Roster, conf *core.Config) Service {
	seed := conf.Scheduler.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &service{
		repo:           repo,
		roster:         roster,
		avoidConflicts: conf.Scheduler.AvoidConflicts,
		rnd:            rand.New(rand.NewSource(seed)),
	}
}

func (svc *service) Roster() RosterView {
	return svc.roster.View()
}

// Generate samples, for every weekday, a random order of the time slots and assigns each
// slot a teacher of the section (drawn with replacement) and a venue (drawn with replacement).
// Teachers and venues are not checked for double-booking unless avoidConflicts is set.
// The section's previous entries are kept when no teacher teaches it.
func (svc *service) Generate(ctx context.Context, section string) (Timetable, error) {
	teachers := svc.roster.TeachersFor(section)
	if len(teachers) == 0 {
		return nil, &NoTeachersError{Section: section}
	}
	if len(svc.roster.Venues) == 0 {
		return nil, ErrNoVenues
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	var busy *occupancy
	if svc.avoidConflicts {
		all, err := svc.repo.QueryAll(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "querying schedule")
		}
		busy = newOccupancy(lo.Reject(all, func(e Entry, _ int) bool { return e.Section == section }))
	}

	entries := make([]Entry, 0, len(Days)*len(TimeSlots))
	for _, day := range Days {
		for _, slot := range svc.permuteSlots() {
			candidates := teachers
			if busy != nil {
				candidates = busy.freeTeachers(teachers, day, slot)
				if len(candidates) == 0 {
					continue // no free teacher: leave the slot empty
				}
			}
			teacher := candidates[svc.rnd.Intn(len(candidates))]

			venues := svc.roster.Venues
			if busy != nil {
				if venues = busy.freeVenues(venues, day, slot); len(venues) == 0 {
					continue
				}
			}
			venue := venues[svc.rnd.Intn(len(venues))]

			entry := Entry{
				Section:  section,
				Subject:  teacher.Subject,
				Teacher:  teacher.Faculty,
				Venue:    venue.Venue,
				Day:      day,
				TimeSlot: slot,
			}
			entries = append(entries, entry)
			if busy != nil {
				busy.add(entry)
			}
		}
	}

	if err := svc.repo.ReplaceSection(ctx, section, entries); err != nil {
		return nil, errors.Wrap(err, "replacing section entries")
	}
	return NewTimetable(entries), nil
}

func (svc *service) permuteSlots() []TimeSlot {
	slots := make([]TimeSlot, len(TimeSlots))
	copy(slots, TimeSlots)
	svc.rnd.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })
	return slots
}

func (svc *service) Timetable(ctx context.Context, section string) (Timetable, error) {
	entries, err := svc.repo.QuerySection(ctx, section)
	if err != nil {
		return nil, errors.Wrap(err, "querying section")
	}
	return NewTimetable(entries), nil
}

func (svc *service) CheckVenueAvailability(ctx context.Context, venue, day, slot string) (bool, error) {
	key, err := parseKey(venue, day, slot)
	if err != nil {
		return false, err
	}
	booked, err := svc.repo.VenueBooked(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "checking venue")
	}
	return !booked, nil
}

func (svc *service) CheckTeacherAvailability(ctx context.Context, teacher, day, slot string) (bool, error) {
	key, err := parseKey(teacher, day, slot)
	if err != nil {
		return false, err
	}
	booked, err := svc.repo.TeacherBooked(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "checking teacher")
	}
	return !booked, nil
}

func (svc *service) CheckSectionAvailability(ctx context.Context, section, day, slot string) (bool, error) {
	key, err := parseKey(section, day, slot)
	if err != nil {
		return false, err
	}
	booked, err := svc.repo.SectionBooked(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "checking section")
	}
	return !booked, nil
}

// AddEntry schedules one class by hand. It fails with ErrTeacherUnavailable when the teacher
// already has a class at that day and slot.
func (svc *service) AddEntry(ctx context.Context, ne NewEntry) (Entry, error) {
	key, err := parseKey(ne.Teacher, ne.Day, ne.TimeSlot)
	if err != nil {
		return Entry{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	booked, err := svc.repo.TeacherBooked(ctx, key)
	if err != nil {
		return Entry{}, errors.Wrap(err, "checking teacher")
	}
	if booked {
		return Entry{}, ErrTeacherUnavailable
	}

	entry := Entry{
		Section:  ne.Section,
		Subject:  ne.Subject,
		Teacher:  key.Name,
		Venue:    ne.Venue,
		Day:      key.Day,
		TimeSlot: key.TimeSlot,
	}
	if err = svc.repo.AddEntry(ctx, entry); err != nil {
		return Entry{}, errors.Wrap(err, "adding entry")
	}
	return entry, nil
}

func (svc *service) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedule")
	}
	return entries, nil
}

func (svc *service) Export(ctx context.Context, w io.Writer, format string) error {
	f, ok := ParseFormat(format)
	if !ok {
		return core.NewValidationError(ErrUnknownFormat, core.FieldError{Field: "format", Error: formatText})
	}
	entries, err := svc.Entries(ctx)
	if err != nil {
		return err
	}
	return f.Write(w, entries)
}
