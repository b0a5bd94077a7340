package httpx

import (
	"context"
	"errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-bookstore-api/internal/auth"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/ariefcatur/go-bookstore-api/internal/validate"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

const testCookie = "bookstore.sid"

type fakeProvider struct {
	id  auth.Identity
	err error
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Exchange(_ context.Context, code string) (auth.Identity, error) {
	if p.err != nil {
		return auth.Identity{}, p.err
	}
	if code != "good-code" {
		return auth.Identity{}, errors.New("bad code")
	}
	return p.id, nil
}

type authFixture struct {
	router http.Handler
	books  memBooks
}

func newAuthFixture(t *testing.T, provider auth.Provider, limiter *RateLimiter) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := auth.NewRedisStore(rdb, []byte("test-secret"), sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true})
	mgr := auth.NewManager(store, testCookie)
	log, _ := test.NewNullLogger()

	f := &authFixture{books: memBooks{newMemStore[bookstore.Book, *bookstore.Book](nil)}}
	f.router = NewRouter(Deps{
		Users:     memUsers{newMemStore[bookstore.User, *bookstore.User](nil)},
		Books:     f.books,
		Orders:    newMemStore[bookstore.Order, *bookstore.Order](nil),
		Reviews:   newMemStore[bookstore.Review, *bookstore.Review](nil),
		Sessions:  mgr,
		Validator: validate.New(),
		Log:       log,
		Auth: &AuthHandler{
			Sessions:   mgr,
			Provider:   provider,
			SuccessURL: "/welcome",
			FailureURL: "/signin",
			Limiter:    limiter,
		},
	})
	return f
}

func (f *authFixture) get(t *testing.T, path string, c *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if c != nil {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

// begin starts the flow and returns the pending cookie and the state nonce.
func (f *authFixture) begin(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	rec := f.get(t, "/auth/github", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return cookieFrom(t, rec), state
}

func TestGitHubSignInFlow(t *testing.T) {
	octo := auth.Identity{ID: "583231", Name: "The Octocat", Email: "octocat@github.com", Provider: "github"}
	f := newAuthFixture(t, fakeProvider{id: octo}, nil)

	pending, state := f.begin(t)
	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/auth/me", pending).Code)

	rec := f.get(t, "/auth/github/callback?code=good-code&state="+url.QueryEscape(state), pending)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/welcome", rec.Header().Get("Location"))
	session := cookieFrom(t, rec)
	assert.NotEqual(t, pending.Value, session.Value)

	rec = f.get(t, "/auth/me", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, octo, decodeBody[auth.Identity](t, rec))

	// the session opens the mutation gate
	req := httptest.NewRequest(http.MethodDelete, "/books/"+primitive.NewObjectID().Hex(), nil)
	req.AddCookie(session)
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusNotFound, out.Code)

	rec = f.get(t, "/logout", session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/auth/me", session).Code)
}

func TestCallbackFailuresRedirect(t *testing.T) {
	f := newAuthFixture(t, fakeProvider{id: auth.Identity{ID: "1"}}, nil)

	cases := map[string]func(state string) string{
		"state mismatch": func(string) string { return "/auth/github/callback?code=good-code&state=forged" },
		"bad code":       func(s string) string { return "/auth/github/callback?code=nope&state=" + url.QueryEscape(s) },
		"denied":         func(s string) string { return "/auth/github/callback?error=access_denied&state=" + url.QueryEscape(s) },
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			pending, state := f.begin(t)
			rec := f.get(t, path(state), pending)
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/signin", rec.Header().Get("Location"))
			assert.Equal(t, http.StatusUnauthorized, f.get(t, "/auth/me", pending).Code)
		})
	}
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	f := newAuthFixture(t, fakeProvider{}, NewRateLimiter(1, 2))

	assert.Equal(t, http.StatusFound, f.get(t, "/auth/github", nil).Code)
	assert.Equal(t, http.StatusFound, f.get(t, "/auth/github", nil).Code)
	rec := f.get(t, "/auth/github", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// other routes are not limited
	assert.Equal(t, http.StatusOK, f.get(t, "/books", nil).Code)
}

