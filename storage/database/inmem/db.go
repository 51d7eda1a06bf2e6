package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/schedule"
)

type (
	DB struct {
		entry *entryTable
	}

	// entryTable keeps the rows in insertion order plus booking counters per (name, day, slot).
	entryTable struct {
		mutex    sync.RWMutex
		rows     []schedule.Entry
		venues   map[schedule.SlotKey]int
		teachers map[schedule.SlotKey]int
		sections map[schedule.SlotKey]int
	}
)

func Open() *DB {
	return &DB{entry: newEntryTable()}
}

func newEntryTable() *entryTable {
	return &entryTable{
		venues:   make(map[schedule.SlotKey]int),
		teachers: make(map[schedule.SlotKey]int),
		sections: make(map[schedule.SlotKey]int),
	}
}

// the caller must hold the write lock
func (t *entryTable) index(e schedule.Entry, delta int) {
	bump := func(m map[schedule.SlotKey]int, key schedule.SlotKey) {
		if m[key] += delta; m[key] <= 0 {
			delete(m, key)
		}
	}
	bump(t.venues, e.VenueKey())
	bump(t.teachers, e.TeacherKey())
	bump(t.sections, e.SectionKey())
}
