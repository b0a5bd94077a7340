package httpx

import (
	"context"
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/auth"
	"net/http"
)

// SessionReader resolves the identity of a request's session.
type SessionReader interface {
	Identity(r *http.Request) (auth.Identity, bool, error)
}

type identityKey struct{}

func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity requireAuth attached to ctx.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// requireAuth rejects requests without an authenticated session with 401.
func requireAuth(sessions SessionReader, ew errorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := sessions.Identity(r)
			if err != nil {
				ew.write(w, r, apperr.Internal(err))
				return
			}
			if !ok {
				ew.write(w, r, apperr.Unauthorized("authentication required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
