// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"time"

	"github.com/ManuGH/tizenplay/internal/bridge"
	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/config"
	"github.com/ManuGH/tizenplay/internal/drift"
	"github.com/ManuGH/tizenplay/internal/health"
	"github.com/ManuGH/tizenplay/internal/hybrid"
	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/manifest"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/ManuGH/tizenplay/internal/remote"
	"github.com/ManuGH/tizenplay/internal/stream"
)

// Runtime holds the single instance of every playback component, wired
// together and exposed through the bridge.
type Runtime struct {
	Outbox       *remote.Outbox
	Video        *remote.Video
	Player       *remote.Player
	Native       *remote.Native
	Toaster      *remote.Toaster
	Metadata     *remote.MetadataStore
	Discoverer   *native.Discoverer
	Binding      *native.Binding
	Manifests    *manifest.Store
	Synthesizer  *manifest.Synthesizer
	Drift        *drift.Corrector
	Orchestrator *hybrid.Orchestrator
	Health       *health.Manager
	Bridge       *bridge.Server
}

// shimStaleAfter is how long the shim may go without polling before
// readiness degrades; it exceeds the longest poll.
const shimStaleAfter = bridge.MaxCommandWait + 15*time.Second

// RuntimeOption customises NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	clock    clock.Clock
	resolver stream.Resolver
}

// WithClock replaces the real clock in every timed component.
func WithClock(c clock.Clock) RuntimeOption {
	return func(o *runtimeOptions) { o.clock = c }
}

// WithResolver replaces the cipher resolver.
func WithResolver(r stream.Resolver) RuntimeOption {
	return func(o *runtimeOptions) { o.resolver = r }
}

// NewRuntime builds the components for cfg.
func NewRuntime(cfg config.AppConfig, opts ...RuntimeOption) *Runtime {
	o := runtimeOptions{clock: clock.Real(), resolver: stream.PlainCipherResolver}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{}
	rt.Outbox = remote.NewOutbox(remote.DefaultOutboxCapacity)
	rt.Video = remote.NewVideo(rt.Outbox, o.clock)
	rt.Player = remote.NewPlayer(rt.Outbox)
	rt.Native = remote.NewNative(rt.Outbox)
	rt.Toaster = remote.NewToaster(rt.Outbox, cfg.Notifications.ToastInterval, cfg.Notifications.ToastBurst)
	rt.Metadata = remote.NewMetadataStore(remote.DefaultMetadataCapacity)

	rt.Discoverer = native.NewDiscoverer(
		[]native.Scope{rt.Native.Scope()},
		cfg.Playback.ScriptLocations,
		rt.Native.Loader(),
	)
	rt.Discoverer.SetLoadTimeout(cfg.Playback.ScriptLoadTimeout)
	rt.Binding = native.NewBinding(rt.Discoverer, cfg.NativeOptions(), native.WithClock(o.clock))

	rt.Manifests = manifest.NewStore(cfg.PublicURL)
	rt.Synthesizer = manifest.NewSynthesizer(rt.Manifests)

	rt.Drift = drift.New(cfg.DriftSettings(), drift.WithClock(o.clock))
	rt.Drift.Attach(rt.Video)

	rt.Orchestrator = hybrid.New(hybrid.Deps{
		Native:    rt.Binding,
		Manifests: rt.Synthesizer,
		Drift:     rt.Drift,
		Video:     rt.Video,
		Player:    rt.Player,
		Toaster:   rt.Toaster,
		Metadata:  rt.Metadata,
		Resolver:  o.resolver,
		Clock:     o.clock,
	}, cfg.HybridOptions())

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewLastSeenChecker("shim", rt.Outbox.LastPoll, shimStaleAfter))
	rt.Health.RegisterChecker(health.NewChecker("native", func(context.Context) health.CheckResult {
		if rt.Native.Available() {
			return health.CheckResult{Status: health.StatusHealthy, Message: "decoder API available"}
		}
		return health.CheckResult{Status: health.StatusDegraded, Message: "host playback only"}
	}))

	tracing := ""
	if cfg.Telemetry.Enabled {
		tracing = "tizenplay/bridge"
	}
	rt.Bridge = bridge.New(bridge.Deps{
		Orchestrator: rt.Orchestrator,
		Drift:        rt.Drift,
		Video:        rt.Video,
		Player:       rt.Player,
		Native:       rt.Native,
		Outbox:       rt.Outbox,
		Metadata:     rt.Metadata,
		Manifests:    rt.Manifests,
		Health:       rt.Health,
		Version:      cfg.Version,
	}, bridge.Config{
		RateLimit:      cfg.API.RateLimit,
		CommandWait:    cfg.API.CommandWait,
		TracingService: tracing,
	})
	return rt
}

// Apply pushes a reloaded configuration into the running components.
// Listen, PublicURL, rate limit and telemetry only take effect on restart.
func (rt *Runtime) Apply(cfg config.AppConfig) {
	log.Configure(log.Config{Level: cfg.LogLevel, Service: "tizenplay", Version: cfg.Version})
	rt.Drift.UpdateSettings(cfg.DriftSettings())
	rt.Binding.UpdateOptions(cfg.NativeOptions())
	rt.Discoverer.SetLoadTimeout(cfg.Playback.ScriptLoadTimeout)
	rt.Toaster.SetLimit(cfg.Notifications.ToastInterval, cfg.Notifications.ToastBurst)
	rt.Bridge.SetCommandWait(cfg.API.CommandWait)
	rt.Orchestrator.UpdateConfig(cfg.HybridOptions())
}

// Close tears down native playback and stops background work.
func (rt *Runtime) Close() {
	rt.Orchestrator.Close()
	rt.Discoverer.Close()
	rt.Drift.Detach()
}
