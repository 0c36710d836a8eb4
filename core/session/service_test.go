package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
	"github.com/darasa/backend/storage/inmem"
)

type nopNotifier struct{}

func (nopNotifier) Notify(title, message, typ, priority string) {}

type nopMailService struct{}

func (nopMailService) SendMessages(messages ...*core.EmailMessage) {}

// fakeRefresher counts domain reloads triggered by the session layer.
type fakeRefresher struct {
	calls int
}

func (r *fakeRefresher) Refresh() error {
	r.calls++
	return nil
}

type fixture struct {
	svc       *session.Service
	users     *user.Service
	store     session.Store
	refresher *fakeRefresher
	conf      *core.Config
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = true

	db, err := inmem.Open()
	require.NoError(t, err)
	require.NoError(t, inmem.Seed(db, inmem.NewDemoSeeder()))

	usrSvc := user.NewService(inmem.NewUserRepository(db), nopNotifier{}, nopMailService{}, conf)
	store := inmem.NewSessionStore(db)
	refresher := new(fakeRefresher)
	return &fixture{
		svc:       session.NewService(usrSvc, store, refresher, conf),
		users:     usrSvc,
		store:     store,
		refresher: refresher,
		conf:      conf,
	}
}

func TestService_Login(t *testing.T) {
	f := setup(t)

	// failure resets to unauthenticated and leaves no session behind
	_, err := f.svc.Login("student@test.com", "wrong")
	assert.Equal(t, session.ErrAuthenticationFailed, err)
	assert.Equal(t, session.StatusUnauthenticated, f.svc.Status())
	_, ok := f.svc.Current()
	assert.False(t, ok)

	_, err = f.svc.Login("nobody@test.com", session.DemoPassword)
	assert.Equal(t, session.ErrAuthenticationFailed, err)

	sess, err := f.svc.Login("student@test.com", session.DemoPassword)
	require.NoError(t, err)

	assert.Equal(t, session.StatusAuthenticated, f.svc.Status())
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, user.RoleStudent, sess.User.Role)
	assert.False(t, sess.User.LastLogin.IsZero())

	current, ok := f.svc.Current()
	require.True(t, ok)
	assert.Equal(t, sess.User.ID, current.User.ID)
}

func TestService_Login_refreshesDomainData(t *testing.T) {
	f := setup(t)

	// failed attempts never reload
	_, err := f.svc.Login("student@test.com", "wrong")
	require.Error(t, err)
	assert.Zero(t, f.refresher.calls)

	_, err = f.svc.Login("student@test.com", session.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, 1, f.refresher.calls)

	// every successful login reloads, not just the first
	_, err = f.svc.Login("teacher@test.com", session.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, 2, f.refresher.calls)
}

func TestService_Login_deactivated(t *testing.T) {
	f := setup(t)

	usr, err := f.users.GetByEmail("student@test.com")
	require.NoError(t, err)
	admin, err := f.users.GetByEmail("superadmin@test.com")
	require.NoError(t, err)

	inactive := false
	_, err = f.users.Update(admin, usr.ID, user.UpdateUser{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Login("student@test.com", session.DemoPassword)
	assert.Equal(t, session.ErrAccountDeactivated, err)
	assert.Equal(t, session.StatusUnauthenticated, f.svc.Status())
}

func TestService_Logout(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Login("teacher@test.com", session.DemoPassword)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout())
	assert.Equal(t, session.StatusUnauthenticated, f.svc.Status())
	_, ok := f.svc.Current()
	assert.False(t, ok)

	// the persisted session is gone too
	_, err = f.store.LoadSession()
	assert.Equal(t, session.ErrNoSession, err)

	// logging out twice is harmless
	require.NoError(t, f.svc.Logout())
}

func TestService_Restore(t *testing.T) {
	f := setup(t)

	// nothing persisted
	_, ok := f.svc.Restore()
	assert.False(t, ok)

	sess, err := f.svc.Login("parent@test.com", session.DemoPassword)
	require.NoError(t, err)

	// a fresh service over the same store picks the session back up
	restored := session.NewService(f.users, f.store, f.refresher, f.conf)
	got, ok := restored.Restore()
	require.True(t, ok)
	assert.Equal(t, sess.User.ID, got.User.ID)
	assert.Equal(t, session.StatusAuthenticated, restored.Status())
}

func TestService_Restore_corruptToken(t *testing.T) {
	f := setup(t)

	usr, err := f.users.GetByEmail("parent@test.com")
	require.NoError(t, err)
	require.NoError(t, f.store.SaveSession(session.Session{Token: "not-a-jwt", User: usr}))

	// corrupt state reads as "not logged in" and is cleared, never an error
	_, ok := f.svc.Restore()
	assert.False(t, ok)
	_, err = f.store.LoadSession()
	assert.Equal(t, session.ErrNoSession, err)
}

func TestService_HasPermission(t *testing.T) {
	f := setup(t)

	assert.False(t, f.svc.HasPermission(user.PermViewGrades))

	_, err := f.svc.Login("superadmin@test.com", session.DemoPassword)
	require.NoError(t, err)

	// the super-admin wildcard passes every gate
	assert.True(t, f.svc.HasPermission(user.PermManageUsers))
	assert.True(t, f.svc.HasPermission("anything_at_all"))
}

func TestService_SwitchRole(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Login("student@test.com", session.DemoPassword)
	require.NoError(t, err)

	sess, err := f.svc.SwitchRole(user.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, sess.User.Role)
	assert.Equal(t, session.DemoAccounts[user.RoleTeacher], sess.User.Email)

	current, ok := f.svc.Current()
	require.True(t, ok)
	assert.Equal(t, user.RoleTeacher, current.User.Role)
}

func TestService_SwitchRole_unknownRole(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SwitchRole("janitor")
	require.Error(t, err)
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok)
}

func TestService_SwitchRole_refusedOutsideDebug(t *testing.T) {
	f := setup(t)
	f.conf.Debug = false

	_, err := f.svc.SwitchRole(user.RoleAdmin)
	require.Error(t, err)
	assert.True(t, core.IsPermissionDenied(err))
}

func TestService_Refresh(t *testing.T) {
	f := setup(t)

	sess, err := f.svc.Login("admin@test.com", session.DemoPassword)
	require.NoError(t, err)

	claims, err := session.ParseToken(sess.Token, f.conf)
	require.NoError(t, err)

	token, err := f.svc.Refresh(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// outside the refresh window
	stale := *claims
	stale.OrigIssuedAt = time.Now().Add(-f.conf.Server.JWTRefreshExpirationDelta - time.Hour).Unix()
	_, err = f.svc.Refresh(&stale)
	assert.Equal(t, session.ErrRefreshExpired, err)
}
