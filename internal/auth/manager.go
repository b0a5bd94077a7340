package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"net/http"
)

// State of a client session in the login flow.
type State int

const (
	Anonymous State = iota
	Pending         // redirected to the provider, state nonce stored
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

const (
	valIdentity = "identity"
	valState    = "oauth_state"
)

var ErrStateMismatch = errors.New("oauth state mismatch")

type Manager struct {
	store *RedisStore
	name  string
}

func NewManager(store *RedisStore, cookieName string) *Manager {
	return &Manager{store: store, name: cookieName}
}

func (m *Manager) session(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// Identity returns the authenticated identity of the request, if any.
func (m *Manager) Identity(r *http.Request) (Identity, bool, error) {
	s, err := m.session(r)
	if err != nil {
		return Identity{}, false, err
	}
	id, ok := s.Values[valIdentity].(Identity)
	return id, ok, nil
}

func (m *Manager) State(r *http.Request) (State, error) {
	s, err := m.session(r)
	if err != nil {
		return Anonymous, err
	}
	if _, ok := s.Values[valIdentity].(Identity); ok {
		return Authenticated, nil
	}
	if st, ok := s.Values[valState].(string); ok && st != "" {
		return Pending, nil
	}
	return Anonymous, nil
}

// Begin moves the session to Pending and returns the state nonce to send
// to the provider. Any previous identity is dropped.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request) (string, error) {
	s, err := m.session(r)
	if err != nil {
		return "", err
	}
	b := securecookie.GenerateRandomKey(24)
	if b == nil {
		return "", errors.New("oauth state: no entropy")
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	delete(s.Values, valIdentity)
	s.Values[valState] = state
	return state, s.Save(r, w)
}

// CheckState verifies the nonce echoed by the provider callback.
func (m *Manager) CheckState(r *http.Request, state string) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	want, _ := s.Values[valState].(string)
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

// Login moves the session to Authenticated under a fresh session id.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, id Identity) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	if err := m.store.Renew(r.Context(), s); err != nil {
		return err
	}
	delete(s.Values, valState)
	s.Values[valIdentity] = id
	return s.Save(r, w)
}

// Abort returns a pending session to Anonymous.
func (m *Manager) Abort(w http.ResponseWriter, r *http.Request) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	delete(s.Values, valState)
	return s.Save(r, w)
}

// Destroy deletes the session record and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(r, w)
}
