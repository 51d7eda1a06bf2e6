package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
)

const entryColumns = "section, subject, teacher, venue, day, time_slot"

// a writer in another process can take the same seq between our read and our insert
const maxWriteAttempts = 3

type entryRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*entryRepository)(nil)

func NewEntryRepository(db *sqlx.DB) schedule.Repository {
	return &entryRepository{db: db}
}

// ReplaceSection runs the delete and the inserts in one transaction.
func (repo *entryRepository) ReplaceSection(ctx context.Context, section string, entries []schedule.Entry) error {
	return repo.write(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM schedule_entry WHERE section = ?`), section); err != nil {
			return errors.Wrap(err, "deleting section entries")
		}
		return insertEntries(ctx, tx, entries...)
	})
}

func (repo *entryRepository) AddEntry(ctx context.Context, entry schedule.Entry) error {
	return repo.write(ctx, func(tx *sqlx.Tx) error {
		return insertEntries(ctx, tx, entry)
	})
}

// write runs fn in a transaction, starting over when the commit lost a seq to another writer.
func (repo *entryRepository) write(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if err = repo.inTx(ctx, fn); !database.IsUniqueViolation(err) {
			return err
		}
	}
	return errors.Wrapf(err, "writing entries after %d attempts", maxWriteAttempts)
}

func (repo *entryRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing")
}

// insertEntries appends entries after the current last row, keeping insertion order in `seq`.
func insertEntries(ctx context.Context, tx *sqlx.Tx, entries ...schedule.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	var seq int64
	if err := tx.GetContext(ctx, &seq, `SELECT COALESCE(MAX(seq), 0) FROM schedule_entry`); err != nil {
		return errors.Wrap(err, "reading last seq")
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`INSERT INTO schedule_entry (seq, `+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	))
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		seq++
		if _, err = stmt.ExecContext(ctx, seq, e.Section, e.Subject, e.Teacher, e.Venue, string(e.Day), string(e.TimeSlot)); err != nil {
			return errors.Wrap(err, "inserting entry")
		}
	}
	return nil
}

func (repo *entryRepository) QuerySection(ctx context.Context, section string) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0)
	q := repo.db.Rebind(`SELECT ` + entryColumns + ` FROM schedule_entry WHERE section = ? ORDER BY seq`)
	if err := repo.db.SelectContext(ctx, &entries, q, section); err != nil {
		return nil, errors.Wrap(err, "selecting section entries")
	}
	return entries, nil
}

func (repo *entryRepository) QueryAll(ctx context.Context) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0)
	if err := repo.db.SelectContext(ctx, &entries, `SELECT `+entryColumns+` FROM schedule_entry ORDER BY seq`); err != nil {
		return nil, errors.Wrap(err, "selecting entries")
	}
	return entries, nil
}

func (repo *entryRepository) VenueBooked(ctx context.Context, key schedule.SlotKey) (bool, error) {
	return repo.booked(ctx, "venue", key)
}

func (repo *entryRepository) TeacherBooked(ctx context.Context, key schedule.SlotKey) (bool, error) {
	return repo.booked(ctx, "teacher", key)
}

func (repo *entryRepository) SectionBooked(ctx context.Context, key schedule.SlotKey) (bool, error) {
	return repo.booked(ctx, "section", key)
}

// column is one of the constants above, never user input
func (repo *entryRepository) booked(ctx context.Context, column string, key schedule.SlotKey) (bool, error) {
	var count int
	q := repo.db.Rebind(`SELECT COUNT(*) FROM schedule_entry WHERE ` + column + ` = ? AND day = ? AND time_slot = ?`)
	if err := repo.db.GetContext(ctx, &count, q, key.Name, string(key.Day), string(key.TimeSlot)); err != nil {
		return false, errors.Wrapf(err, "counting %s bookings", column)
	}
	return count > 0, nil
}
