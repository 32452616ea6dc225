package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry guarda los collectors de la app.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pet_care",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pet_care",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pet_care",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)

	activitiesLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pet_care",
			Subsystem: "activities",
			Name:      "logged_total",
			Help:      "Activity submissions by kind and whether they were idempotent replays.",
		},
		[]string{"kind", "idempotent"},
	)

	carePlans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pet_care",
			Subsystem: "care_plans",
			Name:      "requests_total",
			Help:      "Care plan requests by outcome (created, existing, rate_limited, timeout, upstream_error).",
		},
		[]string{"outcome"},
	)

	breedDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pet_care",
			Subsystem: "ai",
			Name:      "breed_detections_total",
			Help:      "Breed detection attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		activitiesLogged,
		carePlans,
		breedDetections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler expone /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler mide cada request usando el patrón de ruta de chi (no el path crudo).
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordActivity(kind string, idempotent bool) {
	activitiesLogged.WithLabelValues(kind, strconv.FormatBool(idempotent)).Inc()
}

func RecordCarePlan(outcome string) {
	carePlans.WithLabelValues(outcome).Inc()
}

func RecordBreedDetection(outcome string) {
	breedDetections.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
