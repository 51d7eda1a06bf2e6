package store

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/storage/database"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	sqlxrepos "github.com/trezcool/ratiba/storage/database/sqlx"
)

// Store is the schedule repository selected by conf.Database.Engine.
type Store struct {
	schedule.Repository
	DB *sqlx.DB // nil with the memory engine
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

type options struct {
	migrate bool
}

type Option func(*options)

// SkipMigrations leaves a SQL store as found; the caller migrates it.
func SkipMigrations() Option {
	return func(o *options) { o.migrate = false }
}

// Open returns the store selected by conf.Database.Engine. SQL stores are migrated up
// unless SkipMigrations is given.
func Open(conf *core.Config, opts ...Option) (*Store, error) {
	o := options{migrate: true}
	for _, opt := range opts {
		opt(&o)
	}

	if conf.IsMemoryStore() {
		return &Store{Repository: inmemdb.NewEntryRepository(inmemdb.Open())}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if o.migrate {
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Store{Repository: sqlxrepos.NewEntryRepository(db), DB: db}, nil
}
