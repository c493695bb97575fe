// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package native binds the vendor decoder API to a guarded lifecycle state
// machine with bounded asynchronous readiness.
package native

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	DefaultInjectionTimeout = 3 * time.Second
	DefaultPrepareTimeout   = 5 * time.Second
)

// Options bounds the asynchronous phases of Open.
type Options struct {
	InjectionTimeout time.Duration
	PrepareTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.InjectionTimeout <= 0 {
		o.InjectionTimeout = DefaultInjectionTimeout
	}
	if o.PrepareTimeout <= 0 {
		o.PrepareTimeout = DefaultPrepareTimeout
	}
	return o
}

// Option configures a Binding.
type Option func(*Binding)

// WithClock overrides the time source used for the open timeouts.
func WithClock(c clock.Clock) Option {
	return func(b *Binding) { b.clock = c }
}

// prepareAttempt resolves exactly once; the first settle wins.
type prepareAttempt struct {
	settled atomic.Bool
	result  chan error
	timer   clock.Timer
}

// Binding owns the native decoder handle and its lifecycle state.
type Binding struct {
	disc   *Discoverer
	clock  clock.Clock
	fsm    *machine
	events observers
	logger zerolog.Logger

	openMu sync.Mutex // serializes Open

	mu      sync.Mutex
	opts    Options
	state   State
	player  Player
	session uint64
	pending *prepareAttempt
}

// NewBinding creates a binding in StateNone.
func NewBinding(disc *Discoverer, opts Options, options ...Option) *Binding {
	b := &Binding{
		disc:   disc,
		clock:  clock.Real(),
		fsm:    mustMachine(),
		logger: log.WithComponent("native"),
		opts:   opts.withDefaults(),
		state:  StateNone,
	}
	for _, o := range options {
		o(b)
	}
	return b
}

// UpdateOptions applies new bounds to subsequent Open calls.
func (b *Binding) UpdateOptions(opts Options) {
	b.mu.Lock()
	b.opts = opts.withDefaults()
	b.mu.Unlock()
}

// State returns the current lifecycle state.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers fn for events of kind. The returned func unregisters it.
func (b *Binding) Subscribe(kind EventKind, fn func(Event)) func() {
	return b.events.subscribe(kind, fn)
}

// Open loads resource into the native decoder and waits until it is prepared.
// Any failure leaves the binding in StateNone.
func (b *Binding) Open(ctx context.Context, resource string) error {
	b.openMu.Lock()
	defer b.openMu.Unlock()

	if b.State() != StateNone {
		b.Close()
	}

	b.mu.Lock()
	opts := b.opts
	b.mu.Unlock()

	p, err := b.acquire(ctx, opts.InjectionTimeout)
	if err != nil {
		return err
	}

	if err := p.Open(resource); err != nil {
		b.logger.Warn().Err(err).Str(log.FieldEvent, "native.open_failed").Msg("native open failed")
		return fmt.Errorf("native open: %w", err)
	}

	att := &prepareAttempt{result: make(chan error, 1)}

	b.mu.Lock()
	b.session++
	session := b.session
	b.player = p
	b.pending = att
	b.transitionLocked(opOpen)
	b.mu.Unlock()

	b.configure(p, session)

	// The timeout is armed before prepare starts so a synchronous callback
	// always finds it.
	b.mu.Lock()
	att.timer = b.clock.AfterFunc(opts.PrepareTimeout, func() {
		b.settle(att, ErrPrepareTimeout, "timeout")
	})
	b.mu.Unlock()

	err = p.PrepareAsync(
		func() { b.settle(att, nil, "ready") },
		func(err error) { b.settle(att, &PrepareError{Err: err}, "error") },
	)
	if err != nil {
		b.settle(att, &PrepareError{Err: err}, "error")
	}

	select {
	case err := <-att.result:
		return err
	case <-ctx.Done():
		b.settle(att, ctx.Err(), "canceled")
		return <-att.result
	}
}

// acquire resolves the native player, waiting a bounded time on a pending
// injection. A timeout on that wait is soft: the scopes are checked once more.
func (b *Binding) acquire(ctx context.Context, timeout time.Duration) (Player, error) {
	if b.disc == nil {
		return nil, ErrUnsupported
	}
	switch b.disc.Discover() {
	case CapabilityAvailable:
	case CapabilityPending:
		if inj := b.disc.Injection(); inj != nil {
			select {
			case <-inj.Done():
			case <-b.clock.After(timeout):
				b.logger.Debug().
					Str(log.FieldEvent, "native.inject_wait_timeout").
					Dur("timeout", timeout).
					Msg("injection still pending, rechecking capability")
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	default:
		return nil, ErrUnsupported
	}

	p, ok := b.disc.Lookup()
	if !ok {
		return nil, ErrUnsupported
	}
	return p, nil
}

// configure applies the initial display setup and installs the listener.
func (b *Binding) configure(p Player, session uint64) {
	if err := p.SetDisplayRect(0, 0, DisplayWidth, DisplayHeight); err != nil {
		b.logger.Debug().Err(err).Msg("set display rect failed")
	}
	if err := p.SetDisplayMethod(DisplayFullScreen); err != nil {
		b.logger.Debug().Err(err).Msg("set display method failed")
	}
	l := Listener{
		OnBufferingStart:    func() { b.dispatch(session, BufferingStart{}) },
		OnBufferingComplete: func() { b.dispatch(session, BufferingComplete{}) },
		OnStreamCompleted:   func() { b.dispatch(session, Ended{}) },
		OnCurrentPlayTime:   func(ms int64) { b.dispatch(session, TimeUpdate{PositionMs: ms}) },
		OnError:             func(payload string) { b.dispatch(session, Error{Payload: payload}) },
	}
	if err := p.SetListener(l); err != nil {
		b.logger.Debug().Err(err).Msg("set listener failed")
	}
}

// dispatch forwards a decoder signal from the current session to observers.
func (b *Binding) dispatch(session uint64, ev Event) {
	b.mu.Lock()
	stale := session != b.session || b.state == StateNone
	b.mu.Unlock()
	if stale {
		return
	}

	if e, ok := ev.(Error); ok {
		b.logger.Warn().
			Str(log.FieldEvent, "native.error").
			Str("payload", e.Payload).
			Msg("native decoder reported an error")
	}
	b.events.emit(ev)
	if ev.Kind() == KindEnded {
		b.Stop()
	}
}

// settle resolves att once. Later calls are ignored.
func (b *Binding) settle(att *prepareAttempt, err error, outcome string) {
	if !att.settled.CompareAndSwap(false, true) {
		return
	}

	var closeHandle Player
	b.mu.Lock()
	if att.timer != nil {
		att.timer.Stop()
	}
	if b.pending == att {
		b.pending = nil
		if err == nil {
			b.transitionLocked(opPrepared)
		} else {
			b.transitionLocked(opPrepareFailed)
			closeHandle = b.player
			b.player = nil
		}
	}
	b.mu.Unlock()

	if closeHandle != nil {
		if cerr := closeHandle.Close(); cerr != nil {
			b.logger.Debug().Err(cerr).Msg("native close after failed prepare")
		}
	}

	metrics.RecordPrepare(outcome)
	ev := b.logger.Debug()
	if err != nil {
		ev = b.logger.Warn().Err(err)
	}
	ev.Str(log.FieldEvent, "native.prepare_"+outcome).Msg("native prepare settled")

	att.result <- err
}

// Play starts or resumes playback from Ready or Paused.
func (b *Binding) Play() error {
	return b.guarded(opPlay, func(p Player) error { return p.Play() })
}

// Pause pauses playback from Playing.
func (b *Binding) Pause() error {
	return b.guarded(opPause, func(p Player) error { return p.Pause() })
}

// SeekTo seeks to positionMs, rounded to whole milliseconds. Permitted in
// Ready, Playing and Paused.
func (b *Binding) SeekTo(positionMs float64) error {
	ms := int64(math.Round(positionMs))
	if ms < 0 {
		ms = 0
	}
	return b.guarded(opSeek, func(p Player) error { return p.SeekTo(ms) })
}

// SetDisplayRegion moves the decoder output. Permitted whenever a handle is open.
func (b *Binding) SetDisplayRegion(x, y, w, h float64) error {
	return b.guarded(opDisplay, func(p Player) error {
		return p.SetDisplayRect(
			int(math.Round(x)), int(math.Round(y)),
			int(math.Round(w)), int(math.Round(h)),
		)
	})
}

// guarded runs call only when op is permitted from the current state and
// commits the transition after the native call succeeds.
func (b *Binding) guarded(o op, call func(Player) error) error {
	b.mu.Lock()
	from := b.state
	_, ok := b.fsm.next(from, o)
	p := b.player
	b.mu.Unlock()
	if !ok || p == nil {
		return nil
	}

	if err := call(p); err != nil {
		b.logger.Debug().Err(err).Str("op", string(o)).Msg("native call failed")
		return fmt.Errorf("native %s: %w", o, err)
	}

	b.mu.Lock()
	if b.state == from {
		b.transitionLocked(o)
	}
	b.mu.Unlock()
	return nil
}

// Stop returns any open handle to Idle. Native errors are ignored.
func (b *Binding) Stop() {
	b.mu.Lock()
	if !b.transitionLocked(opStop) {
		b.mu.Unlock()
		return
	}
	p := b.player
	b.mu.Unlock()

	if p != nil {
		if err := p.Stop(); err != nil {
			b.logger.Debug().Err(err).Msg("native stop failed")
		}
	}
}

// Close releases the handle and returns to None. A pending Open fails with
// ErrClosed. Native errors are ignored.
func (b *Binding) Close() {
	b.mu.Lock()
	if !b.transitionLocked(opClose) {
		b.mu.Unlock()
		return
	}
	p := b.player
	att := b.pending
	b.player = nil
	b.pending = nil
	b.mu.Unlock()

	if att != nil {
		b.settle(att, ErrClosed, "canceled")
	}
	if p != nil {
		if err := p.Close(); err != nil {
			b.logger.Debug().Err(err).Msg("native close failed")
		}
	}
}

// transitionLocked applies o to the current state. Caller must hold b.mu.
func (b *Binding) transitionLocked(o op) bool {
	from := b.state
	to, ok := b.fsm.next(from, o)
	if !ok {
		return false
	}
	if to == from {
		return true
	}
	b.state = to
	metrics.RecordNativeTransition(string(from), string(to))
	b.logger.Debug().
		Str(log.FieldEvent, "native.transition").
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(to)).
		Str("op", string(o)).
		Msg("native state changed")
	return true
}

// IsUnsupported reports whether err means the native path is unavailable.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
