// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hybrid

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/manifest"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/ManuGH/tizenplay/internal/selector"
	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/ManuGH/tizenplay/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NativePlayer is the native binding as seen by the orchestrator.
type NativePlayer interface {
	Open(ctx context.Context, resource string) error
	Play() error
	Pause() error
	SeekTo(positionMs float64) error
	Stop()
	Close()
	State() native.State
	Subscribe(kind native.EventKind, fn func(native.Event)) func()
}

// ManifestBuilder turns a stream pair into a locator the decoder can open.
type ManifestBuilder interface {
	Build(video, audio stream.Descriptor) (manifest.Locator, error)
	Invalidate()
}

// DriftController is the drift corrector handoff. Suspend is called with the
// orchestrator's lock held and must not call back into it.
type DriftController interface {
	Suspend()
	Resume()
	SetCodecFamily(f stream.CodecFamily)
}

// Deps are the collaborators of an Orchestrator. Resolver and Clock are
// optional.
type Deps struct {
	Native    NativePlayer
	Manifests ManifestBuilder
	Drift     DriftController
	Video     host.Video
	Player    host.Player
	Toaster   host.Toaster
	Metadata  host.MetadataProvider
	Resolver  stream.Resolver
	Clock     clock.Clock
}

// Status is a point-in-time view for diagnostics.
type Status struct {
	VideoID      string       `json:"videoId,omitempty"`
	NativeActive bool         `json:"nativeActive"`
	Starting     bool         `json:"starting"`
	NativeState  native.State `json:"nativeState"`
	Enabled      bool         `json:"enabled"`
}

// overrides remembers what the attempt changed on the host so it can be
// put back.
type overrides struct {
	generation uint64
	muted      bool
}

// Orchestrator drives native playback from host navigation.
type Orchestrator struct {
	deps   Deps
	clock  clock.Clock
	tracer trace.Tracer
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	unsub  []func()

	// navMu serializes navigation handling so teardown and schedule pair up.
	navMu sync.Mutex

	mu         sync.Mutex
	opts       Options
	identity   string
	generation uint64
	active     bool
	pending    context.CancelFunc
	pendingGen uint64
	applied    *overrides
	closed     bool
}

// New wires an orchestrator and subscribes to native error events.
func New(deps Deps, opts Options) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		deps:   deps,
		clock:  deps.Clock,
		tracer: telemetry.Tracer("tizenplay/hybrid"),
		logger: log.WithComponent("hybrid"),
		ctx:    ctx,
		cancel: cancel,
		opts:   opts.withDefaults(),
	}
	o.unsub = append(o.unsub, deps.Native.Subscribe(native.KindError, o.onNativeError))
	return o
}

// UpdateConfig replaces the options snapshot. Attempts already running keep
// the snapshot they started with.
func (o *Orchestrator) UpdateConfig(opts Options) {
	o.mu.Lock()
	o.opts = opts.withDefaults()
	enabled := o.opts.Enabled
	active := o.active
	o.mu.Unlock()

	if !enabled && active {
		o.teardown("disabled")
	}
}

// Status reports the current identity and playback mode.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	s := Status{
		VideoID:      o.identity,
		NativeActive: o.active,
		Starting:     o.pending != nil && !o.active,
		Enabled:      o.opts.Enabled,
	}
	o.mu.Unlock()
	s.NativeState = o.deps.Native.State()
	return s
}

// HandleNavigation reacts to a host location change. Both path and fragment
// navigation signals feed into it; repeats for the same video are ignored.
func (o *Orchestrator) HandleNavigation(location string) {
	o.navMu.Lock()
	defer o.navMu.Unlock()

	if !host.IsWatchLocation(location) {
		o.mu.Lock()
		o.identity = ""
		o.mu.Unlock()
		o.teardown("left_watch")
		return
	}

	id, ok := host.ResolveIdentity(o.deps.Player, location)
	if !ok {
		return
	}

	o.mu.Lock()
	if o.closed || id == o.identity {
		o.mu.Unlock()
		return
	}
	prev := o.identity
	o.identity = id
	o.mu.Unlock()

	o.logger.Info().
		Str(log.FieldEvent, "hybrid.identity_changed").
		Str(log.FieldVideoID, id).
		Str("previous", prev).
		Str(log.FieldLocation, location).
		Msg("video identity changed")

	o.teardown("identity_changed")
	o.schedule(id)
}

// HandleHostState mirrors the host player's state onto the native decoder.
// It does nothing unless native playback is active.
func (o *Orchestrator) HandleHostState(code host.StateCode) {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()
	if !active {
		return
	}

	var err error
	switch code {
	case host.StatePlaying:
		err = o.deps.Native.Play()
	case host.StatePaused:
		err = o.deps.Native.Pause()
	case host.StateEnded:
		o.teardown("host_ended")
	}
	if err != nil {
		o.logger.Debug().Err(err).Str("host_state", code.String()).Msg("native mirror call failed")
	}
}

// Teardown stops native playback, restores the host and resumes drift
// correction. Pending starts are cancelled.
func (o *Orchestrator) Teardown() {
	o.teardown("requested")
}

// Wait blocks until every scheduled start attempt has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close tears down, cancels outstanding attempts and waits for them.
func (o *Orchestrator) Close() {
	o.navMu.Lock()
	defer o.navMu.Unlock()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.teardown("shutdown")
	o.wg.Wait()
	for _, fn := range o.unsub {
		fn()
	}
}

func (o *Orchestrator) teardown(reason string) {
	o.mu.Lock()
	o.generation++
	cancel := o.pending
	o.pending = nil
	wasActive := o.active
	o.active = false
	o.restoreLocked(0)
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if o.deps.Native.State() != native.StateNone {
		o.deps.Native.Stop()
		o.deps.Native.Close()
	}
	if !wasActive {
		return
	}

	o.deps.Manifests.Invalidate()
	if o.deps.Drift != nil {
		o.deps.Drift.Resume()
	}
	metrics.SetNativeActive(false)
	o.logger.Info().
		Str(log.FieldEvent, "hybrid.teardown").
		Str("reason", reason).
		Msg("native playback stopped")
}

func (o *Orchestrator) schedule(id string) {
	o.mu.Lock()
	ctx, cancel := context.WithCancel(o.ctx)
	o.pending = cancel
	gen := o.generation
	o.pendingGen = gen
	o.mu.Unlock()

	ctx = log.ContextWithVideoID(ctx, id)
	ctx = log.ContextWithAttemptID(ctx, uuid.NewString())

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		o.run(ctx, gen, id)
	}()
}

// run waits out the settle delay and then starts, unless navigation moved
// on in the meantime.
func (o *Orchestrator) run(ctx context.Context, gen uint64, id string) {
	o.mu.Lock()
	opts := o.opts
	o.mu.Unlock()

	if opts.SettleDelay > 0 {
		select {
		case <-o.clock.After(opts.SettleDelay):
		case <-ctx.Done():
			o.finish(ctx, gen, id, ErrSuperseded)
			return
		}
	}
	if !o.current(gen, id) {
		o.finish(ctx, gen, id, ErrSuperseded)
		return
	}

	o.mu.Lock()
	opts = o.opts
	o.mu.Unlock()

	o.finish(ctx, gen, id, o.start(ctx, gen, id, opts))
}

// current reports whether gen is still the live attempt for id.
func (o *Orchestrator) current(gen uint64, id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.closed && o.generation == gen && o.identity == id
}

func (o *Orchestrator) start(ctx context.Context, gen uint64, id string, opts Options) (err error) {
	if !opts.Enabled {
		return ErrDisabled
	}

	began := o.clock.Now()
	var source string
	ctx, span := o.tracer.Start(ctx, "hybrid.start", trace.WithAttributes(telemetry.StartAttributes(id, "")...))
	defer func() {
		metrics.ObserveStartLatency(source, startOutcome(err), o.clock.Now().Sub(began).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(telemetry.ResultAttributes(result(err))...)
		span.End()
	}()

	meta, err := o.awaitMetadata(ctx, id, opts)
	if err != nil {
		return err
	}

	resource := meta.ManifestURL
	source = "manifest_url"
	if resource == "" {
		source = "synthesized"
		sel, err := selector.Pick(ctx, meta, opts.Selection, o.deps.Resolver)
		if err != nil {
			return err
		}
		span.SetAttributes(telemetry.SelectionAttributes(
			sel.Video.Codecs(), sel.Video.Height, sel.Video.FPS, sel.Audio.Codecs(), sel.Audio.Bitrate)...)

		loc, err := o.deps.Manifests.Build(sel.Video, sel.Audio)
		if err != nil {
			return err
		}
		resource = loc.URL
		if o.deps.Drift != nil {
			o.deps.Drift.SetCodecFamily(sel.Video.Family())
		}
	}
	span.SetAttributes(telemetry.StartAttributes("", source)...)

	if !o.applyOverrides(gen) {
		return ErrSuperseded
	}

	if err := o.deps.Native.Open(ctx, resource); err != nil {
		o.restore(gen)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if err := o.deps.Native.Play(); err != nil {
		o.deps.Native.Close()
		o.restore(gen)
		return fmt.Errorf("native play: %w", err)
	}
	if pos := o.deps.Video.CurrentTime(); pos > 0 {
		if err := o.deps.Native.SeekTo(pos * 1000); err != nil {
			o.logger.Debug().Err(err).Float64("position_s", pos).Msg("initial native seek failed")
		}
	}
	o.deps.Video.Play()

	o.mu.Lock()
	if o.closed || o.generation != gen {
		o.mu.Unlock()
		o.deps.Native.Stop()
		o.deps.Native.Close()
		o.restore(gen)
		return ErrSuperseded
	}
	// The handoff stays under the lock so a teardown cannot resume drift
	// correction before it has been suspended.
	o.active = true
	if o.deps.Drift != nil {
		o.deps.Drift.Suspend()
	}
	metrics.SetNativeActive(true)
	logger := log.WithContext(ctx, o.logger)
	logger.Info().
		Str(log.FieldEvent, "hybrid.started").
		Str("source", source).
		Str(log.FieldLocator, resource).
		Msg("native playback started")
	o.mu.Unlock()
	return nil
}

// awaitMetadata polls the provider at a fixed interval for a bounded number
// of attempts.
func (o *Orchestrator) awaitMetadata(ctx context.Context, id string, opts Options) (stream.Metadata, error) {
	for attempt := 1; ; attempt++ {
		if meta, ok := o.deps.Metadata.Lookup(id); ok && meta.Ready() {
			return meta, nil
		}
		if attempt >= opts.MetadataPollAttempts {
			return stream.Metadata{}, fmt.Errorf("%w after %d attempts", ErrMetadataUnavailable, attempt)
		}
		select {
		case <-o.clock.After(opts.MetadataPollInterval):
		case <-ctx.Done():
			return stream.Metadata{}, ctx.Err()
		}
	}
}

// applyOverrides mutes and hides the host element and clears the player
// background. It refuses when gen is no longer current.
func (o *Orchestrator) applyOverrides(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.generation != gen {
		return false
	}
	if o.applied == nil {
		o.applied = &overrides{generation: gen, muted: o.deps.Video.Muted()}
	}
	o.deps.Video.SetMuted(true)
	o.deps.Video.SetHidden(true)
	o.deps.Player.SetTransparent(true)
	return true
}

func (o *Orchestrator) restore(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.restoreLocked(gen)
}

// restoreLocked undoes the host overrides. A non-zero gen only restores
// overrides applied by that attempt.
func (o *Orchestrator) restoreLocked(gen uint64) {
	if o.applied == nil || (gen != 0 && o.applied.generation != gen) {
		return
	}
	o.deps.Video.SetMuted(o.applied.muted)
	o.deps.Video.SetHidden(false)
	o.deps.Player.SetTransparent(false)
	o.applied = nil
}

func (o *Orchestrator) onNativeError(ev native.Event) {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()
	if !active {
		return
	}

	payload := ""
	if e, ok := ev.(native.Error); ok {
		payload = e.Payload
	}
	o.logger.Warn().
		Str(log.FieldEvent, "hybrid.native_error").
		Str("payload", payload).
		Msg("native decoder failed, falling back to host playback")
	o.teardown("native_error")
	o.toast("Native playback stopped", "Falling back to the built-in player.")
}

// finish records the outcome of an attempt and notifies the user about
// failures that cost them native playback.
func (o *Orchestrator) finish(ctx context.Context, gen uint64, id string, err error) {
	res := result(err)
	metrics.RecordPlaybackStart(res)

	o.mu.Lock()
	if o.pendingGen == gen {
		o.pending = nil
	}
	o.mu.Unlock()

	logger := log.WithContext(ctx, o.logger)
	switch res {
	case "started":
		return
	case "disabled", "superseded", "canceled":
		logger.Debug().
			Str(log.FieldEvent, "hybrid.start_aborted").
			Str("result", res).
			Msg("native start skipped")
		return
	case "selection_failed", "manifest_failed", "no_metadata":
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "hybrid.start_aborted").
			Str("result", res).
			Msg("native start aborted, host playback continues")
	default:
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "hybrid.start_failed").
			Str("result", res).
			Msg("native start failed, host playback restored")
	}
	o.toast("Native playback unavailable", fmt.Sprintf("%s: %v", id, err))
}

func (o *Orchestrator) toast(title, message string) {
	if o.deps.Toaster != nil {
		o.deps.Toaster.Toast(title, message)
	}
}

// startOutcome folds a result into the latency histogram's outcome label.
func startOutcome(err error) string {
	switch result(err) {
	case "started":
		return "ok"
	case "superseded", "canceled", "disabled":
		return "aborted"
	default:
		return "failed"
	}
}

// result maps an attempt error onto its metric label.
func result(err error) string {
	switch {
	case err == nil:
		return "started"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	case errors.Is(err, ErrSuperseded), errors.Is(err, native.ErrClosed):
		return "superseded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrMetadataUnavailable):
		return "no_metadata"
	case errors.Is(err, selector.ErrSelectionFailure):
		return "selection_failed"
	case errors.Is(err, manifest.ErrManifestFailure):
		return "manifest_failed"
	case native.IsUnsupported(err):
		return "unsupported"
	default:
		return "prepare_failed"
	}
}
