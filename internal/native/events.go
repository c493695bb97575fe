// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import "sync"

// EventKind names a native signal.
type EventKind string

const (
	KindBufferingStart    EventKind = "buffering_start"
	KindBufferingComplete EventKind = "buffering_complete"
	KindEnded             EventKind = "ended"
	KindTimeUpdate        EventKind = "time_update"
	KindError             EventKind = "error"
)

// Event is one of BufferingStart, BufferingComplete, Ended, TimeUpdate or Error.
type Event interface {
	Kind() EventKind
	isEvent()
}

type BufferingStart struct{}

type BufferingComplete struct{}

// Ended is emitted when the stream completes; the binding stops itself.
type Ended struct{}

// TimeUpdate carries the decoder position.
type TimeUpdate struct {
	PositionMs int64
}

// Error carries the opaque decoder error payload.
type Error struct {
	Payload string
}

func (BufferingStart) Kind() EventKind    { return KindBufferingStart }
func (BufferingComplete) Kind() EventKind { return KindBufferingComplete }
func (Ended) Kind() EventKind             { return KindEnded }
func (TimeUpdate) Kind() EventKind        { return KindTimeUpdate }
func (Error) Kind() EventKind             { return KindError }

func (BufferingStart) isEvent()    {}
func (BufferingComplete) isEvent() {}
func (Ended) isEvent()             {}
func (TimeUpdate) isEvent()        {}
func (Error) isEvent()             {}

type observer struct {
	id uint64
	fn func(Event)
}

// observers fans events out per kind in registration order.
type observers struct {
	mu     sync.Mutex
	nextID uint64
	byKind map[EventKind][]observer
}

func (o *observers) subscribe(kind EventKind, fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.byKind == nil {
		o.byKind = make(map[EventKind][]observer)
	}
	o.nextID++
	id := o.nextID
	o.byKind[kind] = append(o.byKind[kind], observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { o.unsubscribe(kind, id) })
	}
}

func (o *observers) unsubscribe(kind EventKind, id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := o.byKind[kind]
	out := make([]observer, 0, len(list))
	for _, obs := range list {
		if obs.id != id {
			out = append(out, obs)
		}
	}
	o.byKind[kind] = out
}

// emit calls the observers outside the lock so they may re-enter the binding.
func (o *observers) emit(ev Event) {
	o.mu.Lock()
	list := append([]observer(nil), o.byKind[ev.Kind()]...)
	o.mu.Unlock()
	for _, obs := range list {
		obs.fn(ev)
	}
}
