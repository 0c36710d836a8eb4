package echoapi

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/notification"
	"github.com/darasa/backend/core/realtime"
	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
	"github.com/darasa/backend/storage/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type nopMailService struct{}

func (nopMailService) SendMessages(messages ...*core.EmailMessage) {}

type testServer struct {
	srv      Server
	users    *user.Service
	sessions *session.Service
	realtime *realtime.Service
	notifs   *notification.Service
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = true
	conf.TestMode = true

	db, err := inmem.Open()
	require.NoError(t, err)

	seeder := inmem.NewDemoSeeder()
	require.NoError(t, inmem.Seed(db, seeder))

	clock := core.NewClock()
	rng := core.NewRand()
	logger := nopLogger{}

	notifSvc := notification.NewService(inmem.NewNotificationRepository(db), clock, rng, conf, logger)
	usrSvc := user.NewService(inmem.NewUserRepository(db), notifSvc, nopMailService{}, conf)
	schoolSvc := school.NewService(inmem.NewSchoolRepository(db), usrSvc, notifSvc, seeder, clock)
	realtimeSvc := realtime.NewService(inmem.NewChatRepository(db), notifSvc, clock, rng, conf, logger)
	sessionSvc := session.NewService(usrSvc, inmem.NewSessionStore(db), schoolSvc, conf)

	require.NoError(t, schoolSvc.Refresh())

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	srv := NewServer(&Options{
		Address:         ":0",
		DisableReqLogs:  true,
		SessionSvc:      sessionSvc,
		UserSvc:         usrSvc,
		SchoolSvc:       schoolSvc,
		NotificationSvc: notifSvc,
		RealtimeSvc:     realtimeSvc,
		Validate:        validate,
		Translator:      translator,
		Logger:          logger,
		SignalShutdown:  func() {},
	})
	return &testServer{
		srv:      srv,
		users:    usrSvc,
		sessions: sessionSvc,
		realtime: realtimeSvc,
		notifs:   notifSvc,
	}
}

// tokenFor signs a JWT for the seeded demo account of the given role.
func (ts *testServer) tokenFor(t *testing.T, role string) string {
	t.Helper()

	usr, err := ts.users.GetByEmail(session.DemoAccounts[role])
	require.NoError(t, err)

	token, err := session.GenerateToken(session.NewClaims(usr, core.Conf), core.Conf)
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}
