package main

import (
	"log"
	"os"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/core/user"
	emailsvc "github.com/darasa/backend/services/email"
	logsvc "github.com/darasa/backend/services/logger"
	"github.com/darasa/backend/storage/inmem"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(false)

	// set up store
	db, err := inmem.Open()
	errAndDie(err)

	seeder := inmem.NewDemoSeeder()
	errAndDie(inmem.Seed(db, seeder))

	notifSvc := notification.NewService(inmem.NewNotificationRepository(db), core.NewClock(), core.NewRand(), conf, svcLogger)
	usrSvc := user.NewService(inmem.NewUserRepository(db), notifSvc, emailsvc.NewConsoleServiceMock(), conf)

	// start CLI
	cli := commandLine{
		usrSvc: usrSvc,
		seeder: seeder,
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
