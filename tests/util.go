package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
)

// Sections taught in NewRoster; "Z" has no teacher.
var Sections = []string{"A", "B", "C"}

// NewRoster returns a small roster: A has 3 teachers, B has 2 (one shared with A), C has 1.
func NewRoster() *schedule.Roster {
	teachers := []schedule.TeacherRecord{
		{Faculty: "Dr. Amani", Subject: "Mathematics", Sections: []string{"A", "B"}},
		{Faculty: "Ms. Baraka", Subject: "Physics", Sections: []string{"A"}},
		{Faculty: "Mr. Chege", Subject: "Chemistry", Sections: []string{"A"}},
		{Faculty: "Mrs. Dudu", Subject: "Biology", Sections: []string{"B"}},
		{Faculty: "Prof. Ekene", Subject: "History", Sections: []string{"C"}},
	}
	venues := []schedule.VenueRecord{{Venue: "Room 101"}, {Venue: "Room 102"}, {Venue: "Lab 1"}}
	return schedule.NewRoster(teachers, venues, Sections...)
}

// NewConfig returns a test configuration with a fixed scheduler seed.
func NewConfig(seed int64) *core.Config {
	conf := new(core.Config)
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	conf.Database.Engine = core.EngineMemory
	conf.Scheduler.Seed = seed
	return conf
}

// NewValidator returns a validator with every validation tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

// OpenSQLite opens a migrated in-memory sqlite database, closed when `t` ends.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := NewConfig(1)
	conf.Database.Engine = core.EngineSQLite
	conf.Database.Path = ":memory:"

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate(): %v", err)
	}
	return db
}

func CreateEntry(t *testing.T, repo schedule.Repository, section, subject, teacher, venue string, day schedule.Day, slot schedule.TimeSlot) schedule.Entry {
	t.Helper()
	e := schedule.Entry{
		Section:  section,
		Subject:  subject,
		Teacher:  teacher,
		Venue:    venue,
		Day:      day,
		TimeSlot: slot,
	}
	if err := repo.AddEntry(context.Background(), e); err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	return e
}
