package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage engines
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

type (
	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server struct {
			Address         string
			DebugHost       string
			ShutdownTimeout time.Duration
			DisableReqLogs  bool
		}

		Data struct {
			TeachersFile string
			VenuesFile   string
			RosterFile   string // JSON roster; takes precedence over the CSV files
			Sections     []string
		}

		Database struct {
			Engine     string
			Path       string // sqlite only
			Host       string
			Port       string
			Name       string
			User       string
			Password   string
			DisableTLS bool
		}

		Scheduler struct {
			Seed           int64 // 0 seeds from the clock
			AvoidConflicts bool
		}
	}
)

func (c *Config) IsMemoryStore() bool {
	return c.Database.Engine == "" || c.Database.Engine == EngineMemory
}

// DatabaseAddress returns the host:port pair of the postgres server.
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, c.Database.Port)
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the value of ENV (DEV by default), e.g. DEV_DATABASE_ENGINE.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Ratiba")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("data.teachersFile", "data/dataset.csv")
	v.SetDefault("data.venuesFile", "data/VENUECSV.csv")
	v.SetDefault("data.rosterFile", "")
	v.SetDefault("data.sections", []string{"A", "B", "C", "D", "E", "F", "G"})
	v.SetDefault("database.engine", EngineMemory)
	v.SetDefault("database.path", "ratiba.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ratiba")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("scheduler.seed", int64(0))
	v.SetDefault("scheduler.avoidConflicts", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, ok := ProjectRoot(); ok {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	conf := new(Config)
	conf.AppName = v.GetString("appName")
	conf.Env = env
	conf.Build = v.GetString("build")
	conf.Debug = v.GetBool("debug")
	conf.TestMode = v.GetBool("testMode")
	conf.RollbarToken = v.GetString("rollbarToken")

	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")

	conf.Data.TeachersFile = v.GetString("data.teachersFile")
	conf.Data.VenuesFile = v.GetString("data.venuesFile")
	conf.Data.RosterFile = v.GetString("data.rosterFile")
	conf.Data.Sections = splitList(v.GetStringSlice("data.sections"))

	conf.Database.Engine = CleanString(v.GetString("database.engine"), true /* lower */)
	conf.Database.Path = v.GetString("database.path")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetString("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Scheduler.Seed = v.GetInt64("scheduler.seed")
	conf.Scheduler.AvoidConflicts = v.GetBool("scheduler.avoidConflicts")
	return conf
}

// splitList accepts both ["A","B"] and ["A,B"] (env vars arrive as a single string).
func splitList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, val := range vals {
		for _, s := range strings.Split(val, ",") {
			if s = CleanString(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
