package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/darasa/backend/apps/api/echo"
	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
	emailsvc "github.com/darasa/backend/services/email"
	logsvc "github.com/darasa/backend/services/logger"
	"github.com/darasa/backend/storage/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := inmem.Open()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	clock := core.NewClock()
	rng := core.NewRand()
	seeder := inmem.NewDemoSeeder()

	notifSvc := notification.NewService(inmem.NewNotificationRepository(db), clock, rng, conf, logger)
	usrSvc := user.NewService(inmem.NewUserRepository(db), notifSvc, mailSvc, conf)
	schoolSvc := school.NewService(inmem.NewSchoolRepository(db), usrSvc, notifSvc, seeder, clock)
	realtimeSvc := realtime.NewService(inmem.NewChatRepository(db), notifSvc, clock, rng, conf, logger)
	sessionSvc := session.NewService(usrSvc, inmem.NewSessionStore(db), schoolSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	if err := inmem.Seed(db, seeder); err != nil {
		logger.Fatal(fmt.Sprintf("seeding demo data: %v", err), err)
	}
	if err := schoolSvc.Refresh(); err != nil {
		logger.Fatal(fmt.Sprintf("seeding school data: %v", err), err)
	}
	if sess, ok := sessionSvc.Restore(); ok {
		logger.Info(fmt.Sprintf("session restored for %s", sess.User.Email))
	}
	realtimeSvc.Connect()

	// background simulators and sweeps
	simCtx, stopSims := context.WithCancel(context.Background())
	defer stopSims()
	go notifSvc.Run(simCtx)
	go realtimeSvc.Run(simCtx)

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
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:         conf.Server.Addr,
		SessionSvc:      sessionSvc,
		UserSvc:         usrSvc,
		SchoolSvc:       schoolSvc,
		NotificationSvc: notifSvc,
		RealtimeSvc:     realtimeSvc,
		Validate:        validate,
		Translator:      translator,
		Logger:          logger,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	stopSims()

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
