package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/fishsicles/lazykepler"
)

const (
	defaultFPS  = 10
	maxFPS      = 60
	writeWait   = 5 * time.Second
	defaultStep = 1
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// frame holds the position of every body at one time.
type frame struct {
	T      float64              `json:"t"`
	Bodies map[string][]float64 `json:"bodies"`
	Error  string               `json:"error,omitempty"`
}

type streamParams struct {
	from, step float64
	fps        float64
	frames     int // 0 streams until the client leaves
}

func parseStreamParams(r *http.Request) (streamParams, error) {
	q := r.URL.Query()
	p := streamParams{step: defaultStep, fps: defaultFPS}
	var err error
	if v := q.Get("from"); v != "" {
		if p.from, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("invalid `from`: %w", err)
		}
	}
	if v := q.Get("step"); v != "" {
		if p.step, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("invalid `step`: %w", err)
		}
	}
	for name, v := range map[string]float64{"from": p.from, "step": p.step} {
		if err := lazykepler.CheckTime(v); err != nil {
			return p, fmt.Errorf("invalid `%s`: %w", name, err)
		}
	}
	if v := q.Get("fps"); v != "" {
		if p.fps, err = strconv.ParseFloat(v, 64); err != nil || p.fps <= 0 || p.fps > maxFPS {
			return p, fmt.Errorf("`fps` must be in (0, %d]", maxFPS)
		}
	}
	if v := q.Get("frames"); v != "" {
		if p.frames, err = strconv.Atoi(v); err != nil || p.frames < 0 {
			return p, errors.New("`frames` must be a non-negative integer")
		}
	}
	return p, nil
}

// stream pushes the position of every body, advancing time by `step` at `fps` frames per second.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	p, err := parseStreamParams(r)
	if err != nil {
		s.fail(w, "stream", err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied.
		level.Warn(s.logger).Log("message", "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	s.metrics.streamsActive.Inc()
	defer s.metrics.streamsActive.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Reading is required to process control frames; any error means the client left.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(p.fps), 1)
	names := s.catalog.Names()
	for i := 0; p.frames == 0 || i < p.frames; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		f := frame{T: p.from + float64(i)*p.step, Bodies: make(map[string][]float64, len(names))}
		if err := lazykepler.CheckTime(f.T); err != nil {
			// from + i*step overflowed.
			s.metrics.query("stream", outcomeBadRequest)
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(writeWait))
			return
		}
		for _, name := range names {
			R, err := s.catalog.Position(name, f.T)
			if err != nil {
				f.Error = err.Error()
				break
			}
			f.Bodies[name] = R
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			level.Debug(s.logger).Log("message", "stream closed", "err", err)
			return
		}
		s.metrics.streamFramesSent.Inc()
		if f.Error != "" {
			s.metrics.query("stream", outcomeNumerical)
			return
		}
	}
	s.metrics.query("stream", outcomeOK)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), time.Now().Add(writeWait))
}
