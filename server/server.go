// Package server exposes the queries of a catalog over HTTP: JSON endpoints, a websocket
// stream of positions, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/fishsicles/lazykepler"
)

const (
	defaultTrajectorySamples = 360
	maxTrajectorySamples     = 100000
)

// Server holds the HTTP server and the catalog it serves.
type Server struct {
	catalog    *lazykepler.Catalog
	clock      lazykepler.Clock
	logger     kitlog.Logger
	metrics    *metrics
	handler    http.Handler
	httpServer *http.Server
}

// New returns a server for a fully built catalog.
func New(addr string, catalog *lazykepler.Catalog, clock lazykepler.Clock, logger kitlog.Logger) *Server {
	s := &Server{
		catalog: catalog,
		clock:   clock,
		logger:  kitlog.With(logger, "subsys", "api"),
		metrics: newMetrics(catalog.Len()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.HandleFunc("GET /v1/bodies", s.bodies)
	mux.HandleFunc("GET /v1/bodies/{name}/position", s.position)
	mux.HandleFunc("GET /v1/bodies/{name}/trajectory", s.trajectory)
	mux.HandleFunc("GET /v1/distance", s.distance)
	mux.HandleFunc("GET /v1/delay", s.delay)
	mux.HandleFunc("GET /v1/link", s.link)
	mux.HandleFunc("GET /v1/acceleration", s.acceleration)
	mux.HandleFunc("GET /v1/stream", s.stream)

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.metrics.middleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root handler, with middlewares.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("message", "starting server", "addr", s.httpServer.Addr, "bodies", s.catalog.Len())
		errc <- s.httpServer.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	level.Info(s.logger).Log("message", "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		lvl := level.Info
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			lvl = level.Debug
		}
		lvl(s.logger).Log("method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds(), "remote", r.RemoteAddr)
	})
}

type apiError struct {
	Error string `json:"error"`
}

// writeJSON encodes v before writing the header, so that an encoding failure is a 500.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		level.Error(s.logger).Log("message", "encoding response", "err", err)
		code = http.StatusInternalServerError
		body, _ = json.Marshal(apiError{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}

// fail maps a query error to its HTTP status and records its outcome.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code, outcome := http.StatusInternalServerError, outcomeNumerical
	switch {
	case errors.Is(err, lazykepler.ErrNotFound):
		code, outcome = http.StatusNotFound, outcomeNotFound
	case errors.Is(err, lazykepler.ErrMissingConstant):
		code, outcome = http.StatusUnprocessableEntity, outcomeMissingConstant
	case errors.Is(err, lazykepler.ErrNumerical):
		level.Error(s.logger).Log("op", op, "err", err)
	case errors.Is(err, lazykepler.ErrInvalidTime):
		code, outcome = http.StatusBadRequest, outcomeBadRequest
	default:
		code, outcome = http.StatusBadRequest, outcomeBadRequest
	}
	s.metrics.query(op, outcome)
	s.writeJSON(w, code, apiError{Error: err.Error()})
}

func (s *Server) ok(w http.ResponseWriter, op string, v interface{}) {
	s.metrics.query(op, outcomeOK)
	s.writeJSON(w, http.StatusOK, v)
}

// queryTime reads the query time from `t` (in the time unit) or `date` (calendar date).
// Both absent is t=0.
func (s *Server) queryTime(r *http.Request) (float64, error) {
	q := r.URL.Query()
	if v := q.Get("t"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, err
		}
		return t, lazykepler.CheckTime(t)
	}
	if v := q.Get("date"); v != "" {
		dt, err := lazykepler.ParseDate(v)
		if err != nil {
			return 0, err
		}
		return s.clock.At(dt)
	}
	return 0, nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "bodies": s.catalog.Len()})
}

type bodyJSON struct {
	Name               string  `json:"name"`
	SemimajorAxis      float64 `json:"semimajorAxis"`
	Eccentricity       float64 `json:"eccentricity"`
	Period             float64 `json:"period"`
	MeanAnomalyAtEpoch float64 `json:"meanAnomalyAtEpoch"`
	Visual             string  `json:"visual,omitempty"`
}

type bodiesJSON struct {
	TimeUnit string     `json:"timeUnit"`
	DistUnit string     `json:"distUnit"`
	Origin   string     `json:"origin"`
	Bodies   []bodyJSON `json:"bodies"`
}

func (s *Server) bodies(w http.ResponseWriter, r *http.Request) {
	units := s.catalog.Units()
	rsp := bodiesJSON{TimeUnit: units.Time, DistUnit: units.Dist, Origin: s.catalog.Origin()}
	for _, name := range s.catalog.Names() {
		o, _ := s.catalog.Orbit(name)
		rsp.Bodies = append(rsp.Bodies, bodyJSON{
			Name:               name,
			SemimajorAxis:      o.SemimajorAxis(),
			Eccentricity:       o.Eccentricity(),
			Period:             o.Period(),
			MeanAnomalyAtEpoch: o.MeanAnomalyAtEpoch(),
			Visual:             o.Visual(),
		})
	}
	s.ok(w, "bodies", rsp)
}

type positionJSON struct {
	Body     string    `json:"body"`
	T        float64   `json:"t"`
	Position []float64 `json:"position"`
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	t, err := s.queryTime(r)
	if err != nil {
		s.fail(w, "position", err)
		return
	}
	name := lazykepler.NormalizeName(r.PathValue("name"))
	R, err := s.catalog.Position(name, t)
	if err != nil {
		s.fail(w, "position", err)
		return
	}
	s.ok(w, "position", positionJSON{Body: name, T: t, Position: R})
}

type trajectoryJSON struct {
	Body    string      `json:"body"`
	Period  float64     `json:"period"`
	Visual  string      `json:"visual,omitempty"`
	Samples [][]float64 `json:"samples"` // t, x, y, z
}

func (s *Server) trajectory(w http.ResponseWriter, r *http.Request) {
	samples := defaultTrajectorySamples
	if v := r.URL.Query().Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTrajectorySamples {
			s.fail(w, "trajectory", errors.New("samples must be an integer in [1, 100000]"))
			return
		}
		samples = n
	}
	name := lazykepler.NormalizeName(r.PathValue("name"))
	o, err := s.catalog.Orbit(name)
	if err != nil {
		s.fail(w, "trajectory", err)
		return
	}
	traj, err := o.Trajectory(samples)
	if err != nil {
		s.fail(w, "trajectory", err)
		return
	}
	rsp := trajectoryJSON{Body: name, Period: o.Period(), Visual: o.Visual(), Samples: make([][]float64, len(traj))}
	for i, smp := range traj {
		rsp.Samples[i] = []float64{smp.T, smp.R[0], smp.R[1], smp.R[2]}
	}
	s.ok(w, "trajectory", rsp)
}

type scalarJSON struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	T     float64 `json:"t"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// pair reads the `from` (required) and `to` (origin when empty) bodies.
func pair(r *http.Request) (from, to string, err error) {
	q := r.URL.Query()
	from = lazykepler.NormalizeName(q.Get("from"))
	if from == "" {
		return "", "", errors.New("missing `from` body")
	}
	return from, lazykepler.NormalizeName(q.Get("to")), nil
}

func (s *Server) distance(w http.ResponseWriter, r *http.Request) {
	from, to, err := pair(r)
	if err != nil {
		s.fail(w, "distance", err)
		return
	}
	t, err := s.queryTime(r)
	if err != nil {
		s.fail(w, "distance", err)
		return
	}
	d, err := s.catalog.Distance(from, to, t)
	if err != nil {
		s.fail(w, "distance", err)
		return
	}
	if to == "" {
		to = s.catalog.Origin()
	}
	s.ok(w, "distance", scalarJSON{From: from, To: to, T: t, Value: d, Unit: s.catalog.Units().Dist})
}

func (s *Server) delay(w http.ResponseWriter, r *http.Request) {
	from, to, err := pair(r)
	if err != nil {
		s.fail(w, "delay", err)
		return
	}
	t, err := s.queryTime(r)
	if err != nil {
		s.fail(w, "delay", err)
		return
	}
	d, err := s.catalog.CommDelay(from, to, t)
	if err != nil {
		s.fail(w, "delay", err)
		return
	}
	if to == "" {
		to = s.catalog.Origin()
	}
	s.ok(w, "delay", scalarJSON{From: from, To: to, T: t, Value: d, Unit: s.catalog.Units().Time})
}

func (s *Server) link(w http.ResponseWriter, r *http.Request) {
	from, to, err := pair(r)
	if err != nil {
		s.fail(w, "link", err)
		return
	}
	t, err := s.queryTime(r)
	if err != nil {
		s.fail(w, "link", err)
		return
	}
	l, err := s.catalog.Link(from, to, t)
	if err != nil {
		s.fail(w, "link", err)
		return
	}
	s.ok(w, "link", l)
}

func (s *Server) acceleration(w http.ResponseWriter, r *http.Request) {
	body := lazykepler.NormalizeName(r.URL.Query().Get("body"))
	if body == "" {
		s.fail(w, "acceleration", errors.New("missing `body`"))
		return
	}
	t, err := s.queryTime(r)
	if err != nil {
		s.fail(w, "acceleration", err)
		return
	}
	g, err := s.catalog.Acceleration(body, t)
	if err != nil {
		s.fail(w, "acceleration", err)
		return
	}
	s.ok(w, "acceleration", scalarJSON{From: body, To: s.catalog.Origin(), T: t, Value: g, Unit: "g"})
}
