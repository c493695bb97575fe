// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
)

// Capability is the result of a discovery pass.
type Capability int

const (
	CapabilityUnavailable Capability = iota
	CapabilityAvailable
	CapabilityPending
)

func (c Capability) String() string {
	switch c {
	case CapabilityAvailable:
		return "available"
	case CapabilityPending:
		return "pending"
	default:
		return "unavailable"
	}
}

// Scope is a place the native API may already be reachable from.
type Scope interface {
	Lookup() (Player, bool)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func() (Player, bool)

func (f ScopeFunc) Lookup() (Player, bool) { return f() }

// Loader loads the native API script from one location.
type Loader interface {
	Load(ctx context.Context, location string) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, location string) error

func (f LoaderFunc) Load(ctx context.Context, location string) error { return f(ctx, location) }

// Injection is the single-shot result of an asynchronous script injection.
type Injection struct {
	done chan struct{}
	once sync.Once
	ok   bool
}

func newInjection() *Injection {
	return &Injection{done: make(chan struct{})}
}

func (i *Injection) resolve(ok bool) {
	i.once.Do(func() {
		i.ok = ok
		close(i.done)
	})
}

// Done is closed once the injection has resolved.
func (i *Injection) Done() <-chan struct{} { return i.done }

// Result reports the outcome; false while still pending.
func (i *Injection) Result() bool {
	select {
	case <-i.done:
		return i.ok
	default:
		return false
	}
}

// Wait blocks until the injection resolves or ctx ends.
func (i *Injection) Wait(ctx context.Context) (bool, error) {
	select {
	case <-i.done:
		return i.ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// DefaultLoadTimeout bounds a single script location.
const DefaultLoadTimeout = 3 * time.Second

// Discoverer finds the native API in the configured scopes, injecting it on
// demand.
type Discoverer struct {
	scopes      []Scope
	locations   []string
	loader      Loader
	loadTimeout time.Duration

	mu        sync.Mutex
	injection *Injection
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewDiscoverer checks scopes in order (current scope first) and, when none
// answers, tries locations in order through loader.
func NewDiscoverer(scopes []Scope, locations []string, loader Loader) *Discoverer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Discoverer{
		scopes:      scopes,
		locations:   append([]string(nil), locations...),
		loader:      loader,
		loadTimeout: DefaultLoadTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetLoadTimeout changes the per-location bound for future injections.
func (d *Discoverer) SetLoadTimeout(t time.Duration) {
	if t <= 0 {
		return
	}
	d.mu.Lock()
	d.loadTimeout = t
	d.mu.Unlock()
}

// Lookup returns the first player reachable from the scopes.
func (d *Discoverer) Lookup() (Player, bool) {
	for _, s := range d.scopes {
		if p, ok := s.Lookup(); ok && p != nil {
			return p, true
		}
	}
	return nil, false
}

// Discover never blocks. When the API is not reachable it starts (or joins)
// the injection attempt and reports CapabilityPending until it resolves.
func (d *Discoverer) Discover() Capability {
	if _, ok := d.Lookup(); ok {
		return CapabilityAvailable
	}

	d.mu.Lock()
	inj := d.injection
	if inj == nil {
		if d.loader == nil || len(d.locations) == 0 || d.ctx.Err() != nil {
			d.mu.Unlock()
			return CapabilityUnavailable
		}
		inj = newInjection()
		d.injection = inj
		d.wg.Add(1)
		go d.inject(inj, d.loadTimeout)
	}
	d.mu.Unlock()

	select {
	case <-inj.Done():
		if _, ok := d.Lookup(); ok {
			return CapabilityAvailable
		}
		return CapabilityUnavailable
	default:
		return CapabilityPending
	}
}

// Injection returns the shared injection future, or nil if none was started.
func (d *Discoverer) Injection() *Injection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.injection
}

// Close aborts an in-flight injection and waits for it to finish.
func (d *Discoverer) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *Discoverer) inject(inj *Injection, timeout time.Duration) {
	defer d.wg.Done()
	logger := log.WithComponent("native")

	for _, loc := range d.locations {
		ctx, cancel := context.WithTimeout(d.ctx, timeout)
		err := d.loader.Load(ctx, loc)
		cancel()
		if err != nil {
			logger.Debug().Err(err).
				Str(log.FieldEvent, "native.inject_failed").
				Str(log.FieldLocation, loc).
				Msg("script location failed")
			if d.ctx.Err() != nil {
				break
			}
			continue
		}
		if _, ok := d.Lookup(); ok {
			logger.Info().
				Str(log.FieldEvent, "native.injected").
				Str(log.FieldLocation, loc).
				Msg("native api injected")
			metrics.RecordInjection("loaded")
			inj.resolve(true)
			return
		}
	}

	logger.Warn().
		Str(log.FieldEvent, "native.inject_exhausted").
		Int("locations", len(d.locations)).
		Msg("native api not available after injection")
	metrics.RecordInjection("failed")
	inj.resolve(false)
}
