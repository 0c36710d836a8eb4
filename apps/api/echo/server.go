package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		SessionSvc      *session.Service
		UserSvc         *user.Service
		SchoolSvc       *school.Service
		NotificationSvc *notification.Service
		RealtimeSvc     *realtime.Service

		Validate   *validator.Validate
		Translator ut.Translator
		Logger     core.Logger

		// SignalShutdown is called to initiate a graceful shutdown when an
		// unrecoverable error is caught.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(core.Conf))

	registerAuthAPI(v1, jwt, s.opts.SessionSvc, s.opts.Validate)
	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Validate)
	registerSchoolAPI(v1, jwt, s.opts.SchoolSvc, s.opts.Validate)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc, s.opts.Validate)
	registerRealtimeAPI(v1, jwt, s.opts.RealtimeSvc, s.opts.UserSvc, s.opts.Logger)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
