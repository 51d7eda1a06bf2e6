package inmemdb

import (
	"context"

	"github.com/trezcool/ratiba/core/schedule"
)

type entryRepository struct {
	db *entryTable
}

var _ schedule.Repository = (*entryRepository)(nil)

func NewEntryRepository(db *DB) schedule.Repository {
	return &entryRepository{db: db.entry}
}

func (repo *entryRepository) ReplaceSection(_ context.Context, section string, entries []schedule.Entry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0:0]
	for _, e := range repo.db.rows {
		if e.Section == section {
			repo.db.index(e, -1)
			continue
		}
		kept = append(kept, e)
	}
	for _, e := range entries {
		kept = append(kept, e)
		repo.db.index(e, 1)
	}
	repo.db.rows = kept
	return nil
}

func (repo *entryRepository) AddEntry(_ context.Context, entry schedule.Entry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, entry)
	repo.db.index(entry, 1)
	return nil
}

func (repo *entryRepository) QuerySection(_ context.Context, section string) ([]schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]schedule.Entry, 0)
	for _, e := range repo.db.rows {
		if e.Section == section {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (repo *entryRepository) QueryAll(_ context.Context) ([]schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]schedule.Entry, len(repo.db.rows))
	copy(entries, repo.db.rows)
	return entries, nil
}

func (repo *entryRepository) VenueBooked(_ context.Context, key schedule.SlotKey) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.venues[key] > 0, nil
}

func (repo *entryRepository) TeacherBooked(_ context.Context, key schedule.SlotKey) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.teachers[key] > 0, nil
}

func (repo *entryRepository) SectionBooked(_ context.Context, key schedule.SlotKey) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.sections[key] > 0, nil
}
