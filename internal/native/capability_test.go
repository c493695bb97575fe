// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDiscover_ScopeOrder(t *testing.T) {
	inner := newFakePlayer()
	outer := newFakePlayer()
	disc := NewDiscoverer([]Scope{
		ScopeFunc(func() (Player, bool) { return nil, false }),
		ScopeFunc(func() (Player, bool) { return outer, true }),
		ScopeFunc(func() (Player, bool) { return inner, true }),
	}, nil, nil)

	assert.Equal(t, CapabilityAvailable, disc.Discover())
	p, ok := disc.Lookup()
	require.True(t, ok)
	assert.Same(t, outer, p)
	assert.Nil(t, disc.Injection())
}

func TestDiscover_UnavailableWithoutLocations(t *testing.T) {
	disc := NewDiscoverer(nil, nil, LoaderFunc(func(context.Context, string) error { return nil }))
	assert.Equal(t, CapabilityUnavailable, disc.Discover())
	assert.Nil(t, disc.Injection())
}

func TestDiscover_InjectionTriesLocationsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := newFakePlayer()
	var loaded atomic.Bool
	gate := make(chan struct{})

	var mu sync.Mutex
	var tried []string
	loader := LoaderFunc(func(ctx context.Context, loc string) error {
		<-gate
		mu.Lock()
		tried = append(tried, loc)
		mu.Unlock()
		if loc == "second" {
			loaded.Store(true)
			return nil
		}
		return errors.New("404")
	})
	scope := ScopeFunc(func() (Player, bool) {
		if loaded.Load() {
			return p, true
		}
		return nil, false
	})
	disc := NewDiscoverer([]Scope{scope}, []string{"first", "second", "third"}, loader)
	defer disc.Close()

	assert.Equal(t, CapabilityPending, disc.Discover())
	inj := disc.Injection()
	require.NotNil(t, inj)
	assert.False(t, inj.Result())

	assert.Equal(t, CapabilityPending, disc.Discover())
	assert.Same(t, inj, disc.Injection(), "concurrent discovery must share one injection")

	close(gate)
	ok, err := inj.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, inj.Result())
	assert.Equal(t, CapabilityAvailable, disc.Discover())

	mu.Lock()
	assert.Equal(t, []string{"first", "second"}, tried)
	mu.Unlock()
}

func TestDiscover_InjectionExhausted(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int32
	loader := LoaderFunc(func(context.Context, string) error {
		calls.Add(1)
		return errors.New("load error")
	})
	disc := NewDiscoverer(nil, []string{"a", "b"}, loader)
	defer disc.Close()

	require.Equal(t, CapabilityPending, disc.Discover())
	ok, err := disc.Injection().Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, CapabilityUnavailable, disc.Discover())
	assert.Equal(t, int32(2), calls.Load())
}

func TestInjection_WaitHonoursContext(t *testing.T) {
	inj := newInjection()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := inj.Wait(ctx)
	assert.False(t, ok)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	inj.resolve(true)
	inj.resolve(false)
	assert.True(t, inj.Result())
}

func TestDiscoverer_CloseAbortsInjection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	loader := LoaderFunc(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	disc := NewDiscoverer(nil, []string{"a", "b", "c"}, loader)
	require.Equal(t, CapabilityPending, disc.Discover())
	inj := disc.Injection()

	disc.Close()
	assert.False(t, inj.Result())
	select {
	case <-inj.Done():
	default:
		t.Fatal("injection should be resolved after Close")
	}
	assert.Equal(t, CapabilityUnavailable, disc.Discover())
}
