// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ManuGH/tizenplay/internal/drift"
	"github.com/ManuGH/tizenplay/internal/health"
	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/hybrid"
	"github.com/ManuGH/tizenplay/internal/manifest"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/remote"
	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// MaxCommandWait bounds a single command long-poll.
	MaxCommandWait = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

var (
	errMissingURL   = errors.New("url is required")
	errMissingState = errors.New("state is required")
	errVideoID      = errors.New("videoId does not match path")
)

// Orchestrator receives the host signals that drive hybrid playback.
type Orchestrator interface {
	HandleNavigation(location string)
	HandleHostState(code host.StateCode)
	Status() hybrid.Status
}

// Drift receives host video events that affect drift tracking.
type Drift interface {
	NotifyRateChange()
	NotifySeeked()
	LastSample() drift.Sample
	Suspended() bool
}

// Deps are the components the bridge routes to.
type Deps struct {
	Orchestrator Orchestrator
	Drift        Drift
	Video        *remote.Video
	Player       *remote.Player
	Native       *remote.Native
	Outbox       *remote.Outbox
	Metadata     *remote.MetadataStore
	Manifests    *manifest.Store
	// Health serves /healthz and /readyz; a manager without checkers is
	// used when nil.
	Health  *health.Manager
	Version string
}

// Config holds the construction-time bridge settings.
type Config struct {
	// RateLimit is requests per minute per client on /api; zero disables it.
	RateLimit int
	// CommandWait is the long-poll duration when the shim names none.
	CommandWait time.Duration
	// TracingService names the tracer; empty disables request spans.
	TracingService string
}

// Server is the bridge HTTP handler.
type Server struct {
	deps        Deps
	router      chi.Router
	commandWait atomic.Int64
	// location is the last navigated URL, replayed when the accessor
	// identity changes after the navigation was reported.
	location atomic.Value
}

// New builds the router.
func New(deps Deps, cfg Config) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(deps.Version)
	}
	s := &Server{deps: deps}
	s.SetCommandWait(cfg.CommandWait)

	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(Metrics)
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	r.Use(AccessLog)

	r.Get("/healthz", deps.Health.ServeHealth)
	r.Get("/readyz", deps.Health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/manifests/{file}", manifest.Handler(deps.Manifests))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(RateLimit(cfg.RateLimit, time.Minute))
		}
		r.Post("/host/navigation", s.handleNavigation("navigation"))
		r.Post("/host/hashchange", s.handleNavigation("hashchange"))
		r.Post("/host/state", s.handleState)
		r.Post("/host/video", s.handleVideo)
		r.Post("/host/video/events", s.handleVideoEvent)
		r.Put("/streams/{videoID}", s.handleStreams)
		r.Get("/commands", s.handleCommands)
		r.Post("/native/events", s.handleNativeEvent)
		r.Get("/status", s.handleStatus)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetCommandWait changes the default long-poll duration.
func (s *Server) SetCommandWait(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if d > MaxCommandWait {
		d = MaxCommandWait
	}
	s.commandWait.Store(int64(d))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type navigationRequest struct {
	URL string `json:"url"`
	// VideoID is the page player's accessor identity at navigation time.
	VideoID string `json:"videoId,omitempty"`
}

func (s *Server) handleNavigation(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigationRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, errMissingURL)
			return
		}
		metrics.RecordHostSignal(kind)
		if req.VideoID != "" {
			s.deps.Player.SetVideoID(req.VideoID)
		}
		s.location.Store(req.URL)
		s.deps.Orchestrator.HandleNavigation(req.URL)
		w.WriteHeader(http.StatusAccepted)
	}
}

type stateRequest struct {
	State *int `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.State == nil {
		writeError(w, http.StatusBadRequest, errMissingState)
		return
	}
	metrics.RecordHostSignal("state")
	s.deps.Orchestrator.HandleHostState(host.StateCode(*req.State))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var snap remote.VideoSnapshot
	if err := decode(w, r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.RecordHostSignal("video")
	s.deps.Video.Update(snap)
	prev, _ := s.deps.Player.VideoID()
	s.deps.Player.SetVideoID(snap.VideoID)
	if snap.VideoID != prev {
		if loc, _ := s.location.Load().(string); loc != "" {
			s.deps.Orchestrator.HandleNavigation(loc)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type videoEventRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleVideoEvent(w http.ResponseWriter, r *http.Request) {
	var req videoEventRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	switch req.Type {
	case "ratechange":
		s.deps.Drift.NotifyRateChange()
	case "seeked":
		s.deps.Drift.NotifySeeked()
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown video event %q", req.Type))
		return
	}
	metrics.RecordHostSignal("video_event")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	var rec stream.Metadata
	if err := decode(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if rec.VideoID != "" && rec.VideoID != videoID {
		writeError(w, http.StatusBadRequest, errVideoID)
		return
	}
	rec.VideoID = videoID
	if err := s.deps.Metadata.Put(rec); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.RecordHostSignal("streams")
	w.WriteHeader(http.StatusNoContent)
}

type commandsResponse struct {
	Commands []remote.Command `json:"commands"`
}

// handleCommands long-polls the outbox. It answers 204 when the wait elapses
// with nothing queued.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	wait := time.Duration(s.commandWait.Load())
	if raw := r.URL.Query().Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid wait %q", raw))
			return
		}
		wait = min(d, MaxCommandWait)
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()

	cmds, err := s.deps.Outbox.Next(ctx)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, commandsResponse{Commands: cmds})
}

func (s *Server) handleNativeEvent(w http.ResponseWriter, r *http.Request) {
	var ev remote.NativeEvent
	if err := decode(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Native.Dispatch(ev); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.RecordHostSignal("native_event")
	w.WriteHeader(http.StatusNoContent)
}

type driftStatus struct {
	Suspended bool    `json:"suspended"`
	Tier      string  `json:"tier,omitempty"`
	Drift     float64 `json:"drift"`
	DropRatio float64 `json:"dropRatio"`
}

type statusResponse struct {
	Version     string        `json:"version"`
	Playback    hybrid.Status `json:"playback"`
	Drift       driftStatus   `json:"drift"`
	OutboxDepth int           `json:"outboxDepth"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	sample := s.deps.Drift.LastSample()
	writeJSON(w, http.StatusOK, statusResponse{
		Version:  s.deps.Version,
		Playback: s.deps.Orchestrator.Status(),
		Drift: driftStatus{
			Suspended: s.deps.Drift.Suspended(),
			Tier:      string(sample.Tier),
			Drift:     sample.Drift,
			DropRatio: sample.DropRatio,
		},
		OutboxDepth: s.deps.Outbox.Len(),
	})
}
