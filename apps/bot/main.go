package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	echobot "github.com/darasabot/darasa/apps/bot/echo"
	"github.com/darasabot/darasa/core"
	"github.com/darasabot/darasa/core/chat"
	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
	emailsvc "github.com/darasabot/darasa/services/email"
	logsvc "github.com/darasabot/darasa/services/logger"
	"github.com/darasabot/darasa/storage/database"
	dummydb "github.com/darasabot/darasa/storage/database/dummy"
	sqlxrepos "github.com/darasabot/darasa/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "BOT : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	profRepo, classRepo, closeDB, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	profSvc := profile.NewService(profRepo, conf)
	classSvc := classroom.NewService(classRepo, profSvc, mailSvc)
	engine := chat.NewEngine(profSvc, classSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators()
	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Bot Service

	server := echobot.NewServer(
		echobot.ServerDeps{
			Conf:   conf,
			Logger: logger,
			Engine: engine,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpStorage wires the configured backend. The in-memory backend is meant
// for local hacking without a postgres around.
func setUpStorage(conf *core.Config) (profile.Repository, classroom.Repository, func() error, error) {
	if conf.Database.Engine == "dummy" {
		db, err := dummydb.Open()
		if err != nil {
			return nil, nil, nil, err
		}
		return dummydb.NewProfileRepository(db), dummydb.NewClassRepository(db), func() error { return nil }, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, nil, nil, err
	}
	return sqlxrepos.NewProfileRepository(db), sqlxrepos.NewClassRepository(db), db.Close, nil
}
