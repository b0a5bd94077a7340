package httpx

import (
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/auth"
	"github.com/ariefcatur/go-bookstore-api/internal/logging"
	"github.com/go-chi/chi/v5"
	"net/http"
)

// AuthHandler drives the GitHub sign-in flow.
type AuthHandler struct {
	Sessions   *auth.Manager
	Provider   auth.Provider
	SuccessURL string
	FailureURL string
	Limiter    *RateLimiter

	ew errorWriter
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(h.Limiter.Handler)
		}
		r.Get("/auth/github", h.begin)
		r.Get("/auth/github/callback", h.callback)
	})
	r.Get("/auth/me", h.me)
	r.Get("/logout", h.logout)
}

func (h *AuthHandler) begin(w http.ResponseWriter, r *http.Request) {
	state, err := h.Sessions.Begin(w, r)
	if err != nil {
		h.ew.write(w, r, apperr.Internal(err))
		return
	}
	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		log.WithField("oauth_error", e).Warn("provider denied sign-in")
		h.fail(w, r)
		return
	}
	if err := h.Sessions.CheckState(r, q.Get("state")); err != nil {
		log.WithError(err).Warn("sign-in callback rejected")
		h.fail(w, r)
		return
	}
	id, err := h.Provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.WithError(err).Warn("oauth exchange failed")
		h.fail(w, r)
		return
	}
	if err := h.Sessions.Login(w, r, id); err != nil {
		log.WithError(err).Error("store session")
		h.fail(w, r)
		return
	}
	log.WithField("user", id.ID).Info("signed in")
	http.Redirect(w, r, h.SuccessURL, http.StatusFound)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Abort(w, r); err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("reset pending session")
	}
	http.Redirect(w, r, h.FailureURL, http.StatusFound)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	id, ok, err := h.Sessions.Identity(r)
	if err != nil {
		h.ew.write(w, r, apperr.Internal(err))
		return
	}
	if !ok {
		h.ew.write(w, r, apperr.Unauthorized("not signed in"))
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(w, r); err != nil {
		h.ew.write(w, r, apperr.Internal(err))
		return
	}
	http.Redirect(w, r, h.FailureURL, http.StatusFound)
}
