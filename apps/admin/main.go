package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/roster"
	"github.com/trezcool/ratiba/storage/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	rstr, err := roster.Load(conf)
	if err != nil {
		logger.Error(fmt.Sprintf("loading roster: %v", err), err)
		return 1
	}

	// set up store; migrations are left to the migrate command and the pre-run hook
	repo, err := store.Open(conf, store.SkipMigrations())
	if err != nil {
		logger.Error(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
		return 1
	}
	defer func() { _ = repo.Close() }()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	cli := commandLine{
		svc:        schedule.NewService(repo, rstr, conf),
		validate:   validate,
		translator: translator,
		db:         repo.DB,
		isTerminal: term.IsTerminal(int(os.Stdout.Fd())),
	}
	if err = cli.run(os.Args[1:]); err != nil {
		logger.Error(fmt.Sprintf("error: %v", err))
		return 1
	}
	return 0
}
