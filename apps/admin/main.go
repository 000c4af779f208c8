package main

import (
	"log"
	"os"

	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
	"github.com/darasabot/darasa/storage/database"
	sqlxrepos "github.com/darasabot/darasa/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	core.InitValidators()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	profSvc := profile.NewService(sqlxrepos.NewProfileRepository(db), conf)
	classSvc := classroom.NewService(sqlxrepos.NewClassRepository(db), profSvc, nil)

	// start CLI
	cli := commandLine{
		db:       db,
		profSvc:  profSvc,
		classSvc: classSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
