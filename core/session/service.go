package session

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/darasa/backend/core"
	"github.com/darasa/backend/core/user"
)

// Session states
const (
	StatusUnauthenticated = "unauthenticated"
	StatusAuthenticating  = "authenticating"
	StatusAuthenticated   = "authenticated"
)

var (
	// errors
	ErrNoSession            = errors.New("no persisted session")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrRefreshExpired       = errors.New("refresh has expired")
)

// DemoAccounts maps each role to its fixed demo directory entry; SwitchRole
// resolves its target here. The same five accounts are seeded at startup.
var DemoAccounts = map[string]string{
	user.RoleStudent:    "student@test.com",
	user.RoleTeacher:    "teacher@test.com",
	user.RoleParent:     "parent@test.com",
	user.RoleAdmin:      "admin@test.com",
	user.RoleSuperAdmin: "superadmin@test.com",
}

// DemoPassword is the shared password of the demo directory entries.
const DemoPassword = "password"

type (
	Session struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	// Store persists {token, principal} across restarts. LoadSession returns
	// ErrNoSession when nothing (or something unreadable) is persisted.
	Store interface {
		SaveSession(s Session) error
		LoadSession() (Session, error)
		ClearSession() error
	}

	// Refresher reloads the dependent domain collections; it is invoked on
	// every successful login.
	Refresher interface {
		Refresh() error
	}

	Service struct {
		users     *user.Service
		store     Store
		refresher Refresher
		conf      *core.Config

		mu      sync.RWMutex
		status  string
		current *Session
	}
)

func NewService(users *user.Service, store Store, refresher Refresher, conf *core.Config) *Service {
	return &Service{
		users:     users,
		store:     store,
		refresher: refresher,
		conf:      conf,
		status:    StatusUnauthenticated,
	}
}

// Login validates credentials against the directory. On success it issues a
// signed token, persists the session, stamps LastLogin and reloads the
// domain collections through the refresher; on failure the state is left
// unauthenticated.
func (svc *Service) Login(email, password string) (Session, error) {
	svc.setStatus(StatusAuthenticating, nil)

	fail := func(err error) (Session, error) {
		svc.setStatus(StatusUnauthenticated, nil)
		return Session{}, err
	}

	usr, err := svc.users.GetByEmail(email)
	if err != nil {
		if core.IsNotFound(err) {
			return fail(ErrAuthenticationFailed)
		}
		return fail(errors.Wrap(err, "finding user by email"))
	}
	if err = usr.CheckPassword(password); err != nil {
		return fail(ErrAuthenticationFailed)
	}
	if !usr.IsActive {
		return fail(ErrAccountDeactivated)
	}

	token, err := GenerateToken(NewClaims(usr, svc.conf), svc.conf)
	if err != nil {
		return fail(errors.Wrap(err, "generating token"))
	}
	if usr, err = svc.users.SetLastLogin(usr); err != nil {
		return fail(errors.Wrap(err, "setting lastLogin"))
	}

	sess := Session{Token: token, User: usr}
	if err = svc.store.SaveSession(sess); err != nil {
		return fail(errors.Wrap(err, "persisting session"))
	}
	if svc.refresher != nil {
		if err = svc.refresher.Refresh(); err != nil {
			return fail(errors.Wrap(err, "refreshing domain data"))
		}
	}
	svc.setStatus(StatusAuthenticated, &sess)
	return sess, nil
}

// Logout clears all session state unconditionally.
func (svc *Service) Logout() error {
	svc.setStatus(StatusUnauthenticated, nil)
	return errors.Wrap(svc.store.ClearSession(), "clearing session store")
}

// Restore loads the persisted session once at startup. Absence, a corrupt
// payload or an expired token all read as "not logged in", never an error.
func (svc *Service) Restore() (Session, bool) {
	sess, err := svc.store.LoadSession()
	if err != nil {
		return Session{}, false
	}
	if _, err := ParseToken(sess.Token, svc.conf); err != nil {
		_ = svc.store.ClearSession()
		return Session{}, false
	}
	svc.setStatus(StatusAuthenticated, &sess)
	return sess, true
}

// Current returns the authenticated session, if any.
func (svc *Service) Current() (Session, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if svc.current == nil {
		return Session{}, false
	}
	return *svc.current, true
}

func (svc *Service) Status() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.status
}

// HasPermission applies the capability gate to the current principal.
func (svc *Service) HasPermission(capability string) bool {
	sess, ok := svc.Current()
	return ok && sess.User.HasPermission(capability)
}

// SwitchRole swaps the current principal for the demo directory entry of the
// requested role. This is a demo-only escape hatch: it is refused outside
// debug mode.
func (svc *Service) SwitchRole(role string) (Session, error) {
	if !svc.conf.Debug {
		return Session{}, core.NewPermissionError("switch_role")
	}
	email, ok := DemoAccounts[role]
	if !ok {
		return Session{}, core.NewValidationError(
			errors.New("unknown role"),
			core.FieldError{Field: "role", Error: "unknown role: " + role},
		)
	}

	usr, err := svc.users.GetByEmail(email)
	if err != nil {
		return Session{}, errors.Wrap(err, "finding demo account")
	}
	token, err := GenerateToken(NewClaims(usr, svc.conf), svc.conf)
	if err != nil {
		return Session{}, errors.Wrap(err, "generating token")
	}

	sess := Session{Token: token, User: usr}
	if err = svc.store.SaveSession(sess); err != nil {
		return Session{}, errors.Wrap(err, "persisting session")
	}
	svc.setStatus(StatusAuthenticated, &sess)
	return sess, nil
}

// Refresh issues a new token for still-active users within the refresh
// window, preserving the original issue timestamp.
func (svc *Service) Refresh(claims *Claims) (string, error) {
	usr, err := svc.users.GetByID(claims.Subject)
	if err != nil {
		return "", errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return "", ErrAccountDeactivated
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(svc.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", ErrRefreshExpired
	}

	token, err := GenerateToken(NewClaims(usr, svc.conf, claims.OrigIssuedAt), svc.conf)
	return token, errors.Wrap(err, "generating token")
}

func (svc *Service) setStatus(status string, sess *Session) {
	svc.mu.Lock()
	svc.status = status
	svc.current = sess
	svc.mu.Unlock()
}
