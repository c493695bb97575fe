// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import (
	"errors"
	"sync"
)

var errNative = errors.New("native layer exploded")

// fakePlayer records native calls and exposes the prepare callbacks.
type fakePlayer struct {
	mu        sync.Mutex
	calls     []string
	failAll   bool
	listener  Listener
	onSuccess func()
	onError   func(error)
	prepared  chan struct{}
	// prepareNow answers PrepareAsync synchronously when set.
	prepareNow func(onSuccess func(), onError func(error))
	lastSeek   int64
	lastRect   [4]int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{prepared: make(chan struct{}, 1)}
}

func (f *fakePlayer) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failAll {
		return errNative
	}
	return nil
}

func (f *fakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlayer) setFailAll(v bool) {
	f.mu.Lock()
	f.failAll = v
	f.mu.Unlock()
}

func (f *fakePlayer) Open(string) error { return f.record("open") }

func (f *fakePlayer) SetDisplayRect(x, y, w, h int) error {
	f.mu.Lock()
	f.lastRect = [4]int{x, y, w, h}
	f.mu.Unlock()
	return f.record("setDisplayRect")
}

func (f *fakePlayer) SetDisplayMethod(string) error { return f.record("setDisplayMethod") }

func (f *fakePlayer) SetListener(l Listener) error {
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
	return f.record("setListener")
}

func (f *fakePlayer) PrepareAsync(onSuccess func(), onError func(error)) error {
	if err := f.record("prepareAsync"); err != nil {
		return err
	}
	f.mu.Lock()
	f.onSuccess, f.onError = onSuccess, onError
	now := f.prepareNow
	f.mu.Unlock()
	if now != nil {
		now(onSuccess, onError)
	}
	select {
	case f.prepared <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakePlayer) Play() error  { return f.record("play") }
func (f *fakePlayer) Pause() error { return f.record("pause") }
func (f *fakePlayer) Stop() error  { return f.record("stop") }
func (f *fakePlayer) Close() error { return f.record("close") }

func (f *fakePlayer) SeekTo(ms int64) error {
	f.mu.Lock()
	f.lastSeek = ms
	f.mu.Unlock()
	return f.record("seekTo")
}

func (f *fakePlayer) succeed() {
	f.mu.Lock()
	fn := f.onSuccess
	f.mu.Unlock()
	fn()
}

func (f *fakePlayer) fail(err error) {
	f.mu.Lock()
	fn := f.onError
	f.mu.Unlock()
	fn(err)
}

func (f *fakePlayer) Listener() Listener {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener
}

// availableDiscoverer exposes p from the current scope.
func availableDiscoverer(p Player) *Discoverer {
	return NewDiscoverer([]Scope{ScopeFunc(func() (Player, bool) { return p, true })}, nil, nil)
}

// immediatePrepare makes PrepareAsync succeed synchronously.
func immediatePrepare(onSuccess func(), _ func(error)) { onSuccess() }
