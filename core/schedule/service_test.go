package schedule_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/tests"
)

func setup(t *testing.T, opts ...func(*core.Config)) (schedule.Service, schedule.Repository) {
	t.Helper()
	conf := testutil.NewConfig(42)
	for _, opt := range opts {
		opt(conf)
	}
	repo := inmemdb.NewEntryRepository(inmemdb.Open())
	return schedule.NewService(repo, testutil.NewRoster(), conf), repo
}

func avoidConflicts(conf *core.Config) { conf.Scheduler.AvoidConflicts = true }

func TestService_Generate(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	svc, repo := setup(t)
	roster := testutil.NewRoster()

	timetable, err := svc.Generate(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(timetable.Len()).To(Equal(len(schedule.Days) * len(schedule.TimeSlots)))
	g.Expect(timetable.Days()).To(Equal(schedule.Days))

	teachers := lo.SliceToMap(roster.TeachersFor("A"), func(t schedule.TeacherRecord) (string, string) {
		return t.Faculty, t.Subject
	})
	for _, day := range schedule.Days {
		entries := timetable[day]
		// every slot of the day exactly once
		slots := lo.Map(entries, func(e schedule.Entry, _ int) schedule.TimeSlot { return e.TimeSlot })
		g.Expect(slots).To(ConsistOf(schedule.TimeSlots))

		for _, e := range entries {
			g.Expect(e.Section).To(Equal("A"))
			g.Expect(e.Day).To(Equal(day))
			g.Expect(teachers).To(HaveKeyWithValue(e.Teacher, e.Subject))
			g.Expect(roster.VenueNames()).To(ContainElement(e.Venue))
		}
	}

	stored, err := repo.QuerySection(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stored).To(Equal(timetable.Entries()))
}

func TestService_Generate_shuffledSlots(t *testing.T) {
	svc, _ := setup(t)
	timetable, err := svc.Generate(context.Background(), "A")
	require.NoError(t, err)

	// with a fixed seed, at least one day leaves its slots out of clock order
	shuffled := lo.SomeBy(schedule.Days, func(d schedule.Day) bool {
		slots := lo.Map(timetable[d], func(e schedule.Entry, _ int) schedule.TimeSlot { return e.TimeSlot })
		return !assert.ObjectsAreEqual(schedule.TimeSlots, slots)
	})
	assert.True(t, shuffled)
}

func TestService_Generate_seeded(t *testing.T) {
	svc1, _ := setup(t)
	svc2, _ := setup(t)

	tt1, err := svc1.Generate(context.Background(), "B")
	require.NoError(t, err)
	tt2, err := svc2.Generate(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, tt1, tt2, "same seed, same timetable")
}

func TestService_Generate_errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no teachers", func(t *testing.T) {
		svc, repo := setup(t)
		_, err := svc.Generate(ctx, "Z")
		require.Error(t, err)
		assert.True(t, errors.Is(err, schedule.ErrNoTeachersForSection))
		assert.EqualError(t, err, "No teachers available for section Z")

		all, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("no teachers keeps existing entries", func(t *testing.T) {
		_, repo := setup(t)
		e := testutil.CreateEntry(t, repo, "Z", "Art", "Mr. Picasso", "Studio", schedule.Monday, schedule.TimeSlots[0])
		svc := schedule.NewService(repo, testutil.NewRoster(), testutil.NewConfig(1))

		_, err := svc.Generate(ctx, "Z")
		require.True(t, errors.Is(err, schedule.ErrNoTeachersForSection))

		entries, err := repo.QuerySection(ctx, "Z")
		require.NoError(t, err)
		assert.Equal(t, []schedule.Entry{e}, entries)
	})

	t.Run("no venues", func(t *testing.T) {
		roster := testutil.NewRoster()
		roster.Venues = nil
		svc := schedule.NewService(inmemdb.NewEntryRepository(inmemdb.Open()), roster, testutil.NewConfig(1))
		_, err := svc.Generate(ctx, "A")
		assert.True(t, errors.Is(err, schedule.ErrNoVenues))
	})

	t.Run("section is trimmed", func(t *testing.T) {
		svc, _ := setup(t)
		timetable, err := svc.Generate(ctx, "  C ")
		require.NoError(t, err)
		assert.Equal(t, "C", timetable[schedule.Monday][0].Section)
	})
}

func TestService_Generate_regenerate(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	svc, repo := setup(t)

	_, err := svc.Generate(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())
	sectionB, err := svc.Generate(ctx, "B")
	g.Expect(err).NotTo(HaveOccurred())

	regenerated, err := svc.Generate(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())

	all, err := repo.QueryAll(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(all).To(HaveLen(2 * 45))

	bySection := lo.GroupBy(all, func(e schedule.Entry) string { return e.Section })
	g.Expect(bySection["B"]).To(Equal(sectionB.Entries()), "other sections are untouched")
	g.Expect(bySection["A"]).To(Equal(regenerated.Entries()), "only the newest A entries remain")

	// A was deleted then appended, so it now follows B
	g.Expect(all[0].Section).To(Equal("B"))
	g.Expect(all[len(all)-1].Section).To(Equal("A"))
}

func TestService_Generate_avoidConflicts(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	svc, repo := setup(t, avoidConflicts)

	for _, section := range testutil.Sections {
		_, err := svc.Generate(ctx, section)
		g.Expect(err).NotTo(HaveOccurred())
	}
	// regenerating must not conflict with the others either
	_, err := svc.Generate(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())

	all, err := repo.QueryAll(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(all).NotTo(BeEmpty())

	teacherKeys := lo.Map(all, func(e schedule.Entry, _ int) schedule.SlotKey { return e.TeacherKey() })
	venueKeys := lo.Map(all, func(e schedule.Entry, _ int) schedule.SlotKey { return e.VenueKey() })
	g.Expect(lo.FindDuplicates(teacherKeys)).To(BeEmpty(), "teacher double-booked")
	g.Expect(lo.FindDuplicates(venueKeys)).To(BeEmpty(), "venue double-booked")
}

func TestService_Generate_avoidConflictsLeavesSlotsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t, avoidConflicts)

	// Prof. Ekene is C's only teacher; book them on Monday morning elsewhere
	busy := testutil.CreateEntry(t, repo, "X", "History", "Prof. Ekene", "Hall", schedule.Monday, schedule.TimeSlots[0])

	timetable, err := svc.Generate(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, 45-1, timetable.Len())
	for _, e := range timetable[schedule.Monday] {
		assert.NotEqual(t, busy.TimeSlot, e.TimeSlot)
	}
}

func TestService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	timetable, err := svc.Generate(ctx, "A")
	require.NoError(t, err)
	booked := timetable[schedule.Wednesday][0]

	tests := []struct {
		name    string
		check   func(context.Context, string, string, string) (bool, error)
		who     string
		day     string
		slot    string
		want    bool
		wantErr error
	}{
		{name: "venue booked", check: svc.CheckVenueAvailability, who: booked.Venue, day: "Wednesday", slot: string(booked.TimeSlot)},
		{name: "day is case sensitive", check: svc.CheckVenueAvailability, who: booked.Venue, day: "wednesday", slot: string(booked.TimeSlot), wantErr: schedule.ErrInvalidQueryKey},
		{name: "slot is matched exactly", check: svc.CheckVenueAvailability, who: booked.Venue, day: "Wednesday", slot: " " + string(booked.TimeSlot), wantErr: schedule.ErrInvalidQueryKey},
		{name: "venue name is matched exactly", check: svc.CheckVenueAvailability, who: " " + booked.Venue, day: "Wednesday", slot: string(booked.TimeSlot), want: true},
		{name: "unknown venue is free", check: svc.CheckVenueAvailability, who: "Rooftop", day: "Wednesday", slot: string(booked.TimeSlot), want: true},
		{name: "teacher booked", check: svc.CheckTeacherAvailability, who: booked.Teacher, day: "Wednesday", slot: string(booked.TimeSlot)},
		{name: "teacher of another section is free", check: svc.CheckTeacherAvailability, who: "Mrs. Dudu", day: "Wednesday", slot: string(booked.TimeSlot), want: true},
		{name: "section booked", check: svc.CheckSectionAvailability, who: "A", day: "Wednesday", slot: string(booked.TimeSlot)},
		{name: "section free", check: svc.CheckSectionAvailability, who: "B", day: "Wednesday", slot: string(booked.TimeSlot), want: true},
		{name: "weekend", check: svc.CheckVenueAvailability, who: booked.Venue, day: "Saturday", slot: string(booked.TimeSlot), wantErr: schedule.ErrInvalidQueryKey},
		{name: "lunch slot", check: svc.CheckTeacherAvailability, who: booked.Teacher, day: "Monday", slot: "1:00-2:00", wantErr: schedule.ErrInvalidQueryKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check(ctx, tt.who, tt.day, tt.slot)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
				var vErr *core.ValidationError
				assert.True(t, errors.As(err, &vErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CheckAvailability_everyGeneratedEntryIsBooked(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	timetable, err := svc.Generate(ctx, "B")
	require.NoError(t, err)

	for _, e := range timetable.Entries() {
		free, err := svc.CheckVenueAvailability(ctx, e.Venue, string(e.Day), string(e.TimeSlot))
		require.NoError(t, err)
		assert.False(t, free, "venue %s free at %s %s", e.Venue, e.Day, e.TimeSlot)

		free, err = svc.CheckTeacherAvailability(ctx, e.Teacher, string(e.Day), string(e.TimeSlot))
		require.NoError(t, err)
		assert.False(t, free, "teacher %s free at %s %s", e.Teacher, e.Day, e.TimeSlot)
	}
}

func TestService_AddEntry(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	ne := schedule.NewEntry{
		Section: "A", Subject: "Mathematics", Teacher: "Dr. Amani", Venue: "Room 101", Day: "Monday", TimeSlot: "8:00-9:00",
	}
	entry, err := svc.AddEntry(ctx, ne)
	require.NoError(t, err)
	assert.Equal(t, schedule.Entry{
		Section: "A", Subject: "Mathematics", Teacher: "Dr. Amani", Venue: "Room 101", Day: schedule.Monday, TimeSlot: "8:00-9:00",
	}, entry)

	// same teacher, same time, other section
	ne.Section = "B"
	_, err = svc.AddEntry(ctx, ne)
	assert.True(t, errors.Is(err, schedule.ErrTeacherUnavailable))

	ne.Day = "Sunday"
	_, err = svc.AddEntry(ctx, ne)
	assert.True(t, errors.Is(err, schedule.ErrInvalidQueryKey))

	ne.Day = "monday"
	_, err = svc.AddEntry(ctx, ne)
	assert.True(t, errors.Is(err, schedule.ErrInvalidQueryKey))

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schedule.Entry{entry}, entries)

	timetable, err := svc.Timetable(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, schedule.Timetable{schedule.Monday: {entry}}, timetable)
}

func TestService_Roster(t *testing.T) {
	svc, _ := setup(t)
	view := svc.Roster()

	assert.Equal(t, testutil.Sections, view.Sections)
	assert.Equal(t, []string{"Dr. Amani", "Ms. Baraka", "Mr. Chege", "Mrs. Dudu", "Prof. Ekene"}, view.Teachers)
	assert.Equal(t, []string{"Room 101", "Room 102", "Lab 1"}, view.Venues)
	assert.Len(t, view.Days, 5)
	assert.Len(t, view.TimeSlots, 9)
}

func TestService_singleTeacherScenario(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	roster := schedule.NewRoster(
		[]schedule.TeacherRecord{{Faculty: "Alice", Subject: "Math", Sections: []string{"A"}}},
		[]schedule.VenueRecord{{Venue: "Room1"}},
	)
	repo := inmemdb.NewEntryRepository(inmemdb.Open())
	svc := schedule.NewService(repo, roster, testutil.NewConfig(7))

	timetable, err := svc.Generate(ctx, "A")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(timetable.Entries()).To(HaveEach(And(
		HaveField("Section", "A"),
		HaveField("Teacher", "Alice"),
		HaveField("Subject", "Math"),
		HaveField("Venue", "Room1"),
	)))

	before, err := repo.QueryAll(ctx)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = svc.Generate(ctx, "B")
	g.Expect(err).To(MatchError(schedule.ErrNoTeachersForSection))
	after, err := repo.QueryAll(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(after).To(Equal(before), "table unchanged")

	// every cell is filled and Room1 is the only venue
	free, err := svc.CheckVenueAvailability(ctx, "Room1", "Monday", "8:00-9:00")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(free).To(BeFalse())

	// the predicates are idempotent
	for i := 0; i < 3; i++ {
		again, err := svc.CheckVenueAvailability(ctx, "Room1", "Monday", "8:00-9:00")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(again).To(Equal(free))
	}
}
