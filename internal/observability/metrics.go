// Package observability exposes Prometheus metrics for HTTP traffic, money
// movements and background jobs.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/payday/internal/funds"
)

type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	movementsTotal  *prometheus.CounterVec
	amountMoved     *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payday_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payday_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payday_movements_total",
		Help: "Committed money movements by kind.",
	}, []string{"kind"})
	moved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payday_amount_moved_total",
		Help: "Sum of absolute ledger amounts written, by movement kind.",
	}, []string{"kind"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payday_job_runs_total",
		Help: "Background job runs by job and outcome.",
	}, []string{"job", "status"})

	registry.MustRegister(requests, duration, movements, moved, jobs)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		movementsTotal:  movements,
		amountMoved:     moved,
		jobRuns:         jobs,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}

	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Notify counts a committed movement.
func (m *Metrics) Notify(_ context.Context, mv *funds.Movement) error {
	if m == nil {
		return nil
	}

	kind := string(mv.Kind)
	m.movementsTotal.WithLabelValues(kind).Inc()

	for _, e := range mv.Entries {
		m.amountMoved.WithLabelValues(kind).Add(e.Amount.Abs().InexactFloat64())
	}

	return nil
}

// TrackJob records the outcome of one job run and returns err unchanged.
func (m *Metrics) TrackJob(job string, err error) error {
	if m == nil {
		return err
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	m.jobRuns.WithLabelValues(job, status).Inc()

	return err
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}

	return m.registry
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unknown"
}
