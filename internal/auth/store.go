package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-api/internal/redisx"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"net/http"
	"time"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStore is a gorilla sessions.Store that keeps session values in Redis.
// The cookie only carries the signed session id.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options sessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, secret []byte, opts sessions.Options) *RedisStore {
	codecs := securecookie.CodecsFromPairs(secret)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(opts.MaxAge)
		}
	}
	return &RedisStore{client: client, codecs: codecs, options: opts}
}

func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie yields a fresh anonymous session, not an error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}
	found, err := s.load(r.Context(), id, session)
	if err != nil {
		return session, err
	}
	if found {
		session.ID = id
		session.IsNew = false
	}
	return session, nil
}

// Save persists the values and writes the cookie. A negative MaxAge
// destroys the session.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, key(session.ID)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		id, err := newSessionID()
		if err != nil {
			return err
		}
		session.ID = id
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(session.ID), buf.Bytes(), ttl(session.Options)).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Renew drops the stored record so the next Save issues a new session id.
// Called on login against session fixation.
func (s *RedisStore) Renew(ctx context.Context, session *sessions.Session) error {
	if session.ID != "" {
		if err := s.client.Del(ctx, key(session.ID)).Err(); err != nil {
			return fmt.Errorf("renew session: %w", err)
		}
	}
	session.ID = ""
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string, session *sessions.Session) (bool, error) {
	b, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&session.Values); err != nil {
		return false, fmt.Errorf("decode session: %w", err)
	}
	return true, nil
}

func key(id string) string { return fmt.Sprintf(redisx.KeySession, id) }

func ttl(o *sessions.Options) time.Duration {
	if o.MaxAge > 0 {
		return time.Duration(o.MaxAge) * time.Second
	}
	return defaultSessionTTL
}

func newSessionID() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("session id: no entropy")
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}
