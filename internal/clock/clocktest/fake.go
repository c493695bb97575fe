// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package clocktest provides a manually advanced clock for tests.
package clocktest

import (
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock"
)

// Fake is a clock.Clock whose time only moves on Advance. Timer callbacks run
// synchronously on the goroutine calling Advance, outside the internal lock.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

var _ clock.Clock = (*Fake)(nil)

// New returns a fake clock starting at start.
func New(start time.Time) *Fake {
	return &Fake{now: start}
}

type fakeTimer struct {
	f        *Fake
	seq      int
	deadline time.Time
	period   time.Duration
	fn       func()
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTimer) Stop() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	t.f.remove(t)
	return wasActive
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

type fakeTicker struct{ *fakeTimer }

func (t fakeTicker) Stop() { t.fakeTimer.Stop() }

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives once the clock has advanced by d.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	f.add(&fakeTimer{f: f, deadline: f.Now().Add(d), ch: ch})
	return ch
}

// AfterFunc runs fn once the clock has advanced by d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) clock.Timer {
	t := &fakeTimer{f: f, deadline: f.Now().Add(d), fn: fn}
	f.add(t)
	return t
}

// NewTicker returns a ticker firing every d of fake time.
func (f *Fake) NewTicker(d time.Duration) clock.Ticker {
	if d <= 0 {
		panic("clocktest: non-positive ticker interval")
	}
	t := &fakeTimer{f: f, deadline: f.Now().Add(d), period: d, ch: make(chan time.Time, 1)}
	f.add(t)
	return fakeTicker{t}
}

// Pending reports how many timers, tickers and After channels are armed.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Advance moves the clock forward by d, firing everything that falls due in
// deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDue(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = next.deadline
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			next.stopped = true
			f.remove(next)
		}
		now := f.now
		f.mu.Unlock()

		switch {
		case next.fn != nil:
			next.fn()
		case next.ch != nil:
			select {
			case next.ch <- now:
			default:
			}
		}
	}
}

func (f *Fake) add(t *fakeTimer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.seq = f.seq
	f.timers = append(f.timers, t)
}

// nextDue returns the earliest timer due at or before target. Caller must hold f.mu.
func (f *Fake) nextDue(target time.Time) *fakeTimer {
	if len(f.timers) == 0 {
		return nil
	}
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].deadline.Equal(f.timers[j].deadline) {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].deadline.Before(f.timers[j].deadline)
	})
	if f.timers[0].deadline.After(target) {
		return nil
	}
	return f.timers[0]
}

// remove drops t from the armed set. Caller must hold f.mu.
func (f *Fake) remove(t *fakeTimer) {
	out := f.timers[:0]
	for _, cur := range f.timers {
		if cur != t {
			out = append(out, cur)
		}
	}
	f.timers = out
}
