package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a query, used as metric label values.
const (
	outcomeOK              = "ok"
	outcomeNotFound        = "not_found"
	outcomeMissingConstant = "missing_constant"
	outcomeNumerical       = "numerical"
	outcomeBadRequest      = "bad_request"
)

type metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	durationSeconds  *prometheus.HistogramVec
	queriesTotal     *prometheus.CounterVec
	streamsActive    prometheus.Gauge
	streamFramesSent prometheus.Counter
}

// newMetrics registers on its own registry so that several servers may coexist in a process.
func newMetrics(bodies int) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazykepler_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "code"},
		),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lazykepler_http_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazykepler_queries_total",
				Help: "Total number of catalog queries by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		streamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lazykepler_streams_active",
			Help: "Number of open position streams.",
		}),
		streamFramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lazykepler_stream_frames_total",
			Help: "Total number of frames sent on position streams.",
		}),
	}
	catalogBodies := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lazykepler_catalog_bodies",
		Help: "Number of bodies in the catalog.",
	})
	catalogBodies.Set(float64(bodies))
	m.registry.MustRegister(m.requestsTotal, m.durationSeconds, m.queriesTotal,
		m.streamsActive, m.streamFramesSent, catalogBodies)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) query(op, outcome string) {
	m.queriesTotal.WithLabelValues(op, outcome).Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// middleware records request count and duration for each request, labelled with the
// route pattern rather than the raw path to bound cardinality.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(rw.statusCode)
		m.requestsTotal.WithLabelValues(path, r.Method, code).Inc()
		m.durationSeconds.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
