// Package logging wires logrus as the process logger and carries a
// request-scoped entry through the request context.
package logging

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"net/http"
	"os"
	"time"
)

type ctxKey struct{}

// New builds the process logger. JSON output is meant for production.
func New(level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// WithEntry stores e in ctx.
func WithEntry(ctx context.Context, e *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// FromContext returns the request entry, or one on the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// RequestLogger must run after middleware.RequestID.
func RequestLogger(l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := l.WithField("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(WithEntry(r.Context(), entry)))

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := logrus.Fields{
				"method":   r.Method,
				"route":    route,
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}
			switch {
			case status >= 500:
				entry.WithFields(fields).Error("request")
			case status >= 400:
				entry.WithFields(fields).Warn("request")
			default:
				entry.WithFields(fields).Info("request")
			}
		})
	}
}
