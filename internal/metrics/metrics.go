package metrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookstore",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookstore",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Request latency by method and route.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	eventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Change events handed to the producer, by result.",
	}, []string{"result"})

	eventsAudited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Change events seen by the auditor, by result.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		eventsPublished,
		eventsAudited,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request metrics labelled by chi route pattern, so ids
// in paths do not explode the label space.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// EventPublished counts producer outcomes: "queued", "dropped", "failed".
func EventPublished(result string) { eventsPublished.WithLabelValues(result).Inc() }

// EventAudited counts auditor outcomes: "recorded", "duplicate", "failed".
func EventAudited(result string) { eventsAudited.WithLabelValues(result).Inc() }
