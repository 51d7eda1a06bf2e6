package schedule

import "context"

// Repository stores the schedule table.
// Implementations must make ReplaceSection atomic: readers never observe a section half replaced.
type Repository interface {
	// ReplaceSection deletes every entry of `section` then appends `entries`.
	ReplaceSection(ctx context.Context, section string, entries []Entry) error
	AddEntry(ctx context.Context, entry Entry) error
	QuerySection(ctx context.Context, section string) ([]Entry, error)
	// QueryAll returns the whole table in insertion order.
	QueryAll(ctx context.Context) ([]Entry, error)
	VenueBooked(ctx context.Context, key SlotKey) (bool, error)
	TeacherBooked(ctx context.Context, key SlotKey) (bool, error)
	SectionBooked(ctx context.Context, key SlotKey) (bool, error)
}
