package httpx

import (
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/ariefcatur/go-bookstore-api/internal/logging"
	"github.com/ariefcatur/go-bookstore-api/internal/metrics"
	"github.com/ariefcatur/go-bookstore-api/internal/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"net/http"
	"time"
)

// Deps is everything the router serves. Events and Docs are optional.
type Deps struct {
	Users   UserStore
	Books   BookStore
	Orders  Store[bookstore.Order]
	Reviews Store[bookstore.Review]

	Sessions SessionReader
	Auth     *AuthHandler
	Docs     interface{ Register(chi.Router) }
	Events   Publisher

	Validator   *validate.Validator
	Log         *logrus.Logger
	ServiceName string
	CORSOrigin  string
	// Verbose adds the underlying error text to 500 responses.
	Verbose bool
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Log), metrics.Instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	if d.Docs != nil {
		d.Docs.Register(r)
	}

	ew := errorWriter{verbose: d.Verbose}
	if d.Auth != nil {
		d.Auth.ew = ew
		if d.Auth.Limiter != nil {
			d.Auth.Limiter.ew = ew
		}
		d.Auth.Register(r)
	}

	gate := requireAuth(d.Sessions, ew)
	dec := decoder{v: d.Validator}
	var events *emitter
	if d.Events != nil {
		events = &emitter{pub: d.Events, producer: d.ServiceName}
	}

	users := usersResource(d.Users)
	books := booksResource(d.Books)
	orders := ordersResource(d.Orders, d.Books)
	reviews := reviewsResource(d.Reviews)
	users.dec, users.ew, users.events = dec, ew, events
	books.dec, books.ew, books.events = dec, ew, events
	orders.dec, orders.ew, orders.events = dec, ew, events
	reviews.dec, reviews.ew, reviews.events = dec, ew, events
	users.Register(r, gate)
	books.Register(r, gate)
	orders.Register(r, gate)
	reviews.Register(r, gate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ew.write(w, r, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ew.write(w, r, &apperr.Error{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Message: "method not allowed"})
	})
	return r
}
