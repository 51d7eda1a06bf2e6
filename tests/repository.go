package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/schedule"
)

// RunRepositoryTests exercises a schedule.Repository implementation; newRepo must return an empty store.
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) schedule.Repository) {
	ctx := context.Background()
	slot1, slot2 := schedule.TimeSlots[0], schedule.TimeSlots[1]

	t.Run("empty store", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		booked, err := repo.VenueBooked(ctx, schedule.SlotKey{Name: "Room 101", Day: schedule.Monday, TimeSlot: slot1})
		require.NoError(t, err)
		assert.False(t, booked)
	})

	t.Run("add and query keep insertion order", func(t *testing.T) {
		repo := newRepo(t)
		e1 := CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, slot2)
		e2 := CreateEntry(t, repo, "B", "Biology", "Mrs. Dudu", "Lab 1", schedule.Monday, slot1)
		e3 := CreateEntry(t, repo, "A", "Physics", "Ms. Baraka", "Room 102", schedule.Friday, slot1)

		all, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []schedule.Entry{e1, e2, e3}, all)

		sectionA, err := repo.QuerySection(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, []schedule.Entry{e1, e3}, sectionA)

		none, err := repo.QuerySection(ctx, "Z")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("booked predicates", func(t *testing.T) {
		repo := newRepo(t)
		e := CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Tuesday, slot1)

		tests := []struct {
			name   string
			booked func(context.Context, schedule.SlotKey) (bool, error)
			key    schedule.SlotKey
			want   bool
		}{
			{name: "venue booked", booked: repo.VenueBooked, key: e.VenueKey(), want: true},
			{name: "venue other slot", booked: repo.VenueBooked, key: schedule.SlotKey{Name: e.Venue, Day: e.Day, TimeSlot: slot2}},
			{name: "venue other day", booked: repo.VenueBooked, key: schedule.SlotKey{Name: e.Venue, Day: schedule.Monday, TimeSlot: slot1}},
			{name: "venue case sensitive", booked: repo.VenueBooked, key: schedule.SlotKey{Name: "room 101", Day: e.Day, TimeSlot: slot1}},
			{name: "teacher booked", booked: repo.TeacherBooked, key: e.TeacherKey(), want: true},
			{name: "teacher name is not a venue", booked: repo.TeacherBooked, key: e.VenueKey()},
			{name: "section booked", booked: repo.SectionBooked, key: e.SectionKey(), want: true},
			{name: "section other", booked: repo.SectionBooked, key: schedule.SlotKey{Name: "B", Day: e.Day, TimeSlot: slot1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := tt.booked(ctx, tt.key)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("replace section", func(t *testing.T) {
		repo := newRepo(t)
		old := CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, slot1)
		other := CreateEntry(t, repo, "B", "Biology", "Mrs. Dudu", "Lab 1", schedule.Monday, slot1)

		fresh := []schedule.Entry{
			{Section: "A", Subject: "Physics", Teacher: "Ms. Baraka", Venue: "Room 102", Day: schedule.Wednesday, TimeSlot: slot2},
			{Section: "A", Subject: "Chemistry", Teacher: "Mr. Chege", Venue: "Lab 1", Day: schedule.Thursday, TimeSlot: slot1},
		}
		require.NoError(t, repo.ReplaceSection(ctx, "A", fresh))

		all, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, append([]schedule.Entry{other}, fresh...), all)

		booked, err := repo.VenueBooked(ctx, old.VenueKey())
		require.NoError(t, err)
		assert.False(t, booked, "replaced entry is still booked")

		booked, err = repo.TeacherBooked(ctx, fresh[0].TeacherKey())
		require.NoError(t, err)
		assert.True(t, booked)

		// replacing with nothing clears the section
		require.NoError(t, repo.ReplaceSection(ctx, "A", nil))
		sectionA, err := repo.QuerySection(ctx, "A")
		require.NoError(t, err)
		assert.Empty(t, sectionA)
	})

	t.Run("duplicates count once each", func(t *testing.T) {
		repo := newRepo(t)
		e := CreateEntry(t, repo, "A", "Mathematics", "Dr. Amani", "Room 101", schedule.Monday, slot1)
		CreateEntry(t, repo, "B", "Biology", "Mrs. Dudu", "Room 101", schedule.Monday, slot1)

		// dropping one of two bookings keeps the venue booked
		require.NoError(t, repo.ReplaceSection(ctx, "A", nil))
		booked, err := repo.VenueBooked(ctx, e.VenueKey())
		require.NoError(t, err)
		assert.True(t, booked)
	})
}
