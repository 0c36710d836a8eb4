package inmem

import (
	"encoding/json"

	"github.com/darasa/backend/core/session"
	"github.com/darasa/backend/core/user"
)

// storage keys, mirroring the two durable client-storage entries.
const (
	sessionTokenKey     = "auth_token"
	sessionPrincipalKey = "auth_user"
)

type sessionStore struct {
	db *sessionTable
}

func NewSessionStore(db *DB) session.Store {
	return &sessionStore{db: db.session}
}

func (s *sessionStore) SaveSession(sess session.Session) error {
	data, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}

	s.db.Lock()
	defer s.db.Unlock()
	s.db.table[sessionTokenKey] = []byte(sess.Token)
	s.db.table[sessionPrincipalKey] = data
	return nil
}

// LoadSession reads the persisted entries back. Absence or an unreadable
// principal payload both come back as ErrNoSession; corrupt state is treated
// as "not logged in", never surfaced as an error.
func (s *sessionStore) LoadSession() (session.Session, error) {
	s.db.RLock()
	defer s.db.RUnlock()

	token, ok := s.db.table[sessionTokenKey]
	if !ok || len(token) == 0 {
		return session.Session{}, session.ErrNoSession
	}
	data, ok := s.db.table[sessionPrincipalKey]
	if !ok {
		return session.Session{}, session.ErrNoSession
	}

	var usr user.User
	if err := json.Unmarshal(data, &usr); err != nil {
		return session.Session{}, session.ErrNoSession
	}
	return session.Session{Token: string(token), User: usr}, nil
}

func (s *sessionStore) ClearSession() error {
	s.db.Lock()
	defer s.db.Unlock()
	delete(s.db.table, sessionTokenKey)
	delete(s.db.table, sessionPrincipalKey)
	return nil
}
