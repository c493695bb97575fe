// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import "fmt"

// State is the lifecycle state of the native decoder handle.
type State string

const (
	StateNone    State = "none"
	StateIdle    State = "idle"
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

func (s State) String() string { return string(s) }

// op is an input to the lifecycle machine.
type op string

const (
	opOpen          op = "open"
	opPrepared      op = "prepared"
	opPrepareFailed op = "prepare_failed"
	opPlay          op = "play"
	opPause         op = "pause"
	opStop          op = "stop"
	opClose         op = "close"
	opSeek          op = "seek"
	opDisplay       op = "display"
)

// transition is a single edge. Self-loops mark operations that are permitted
// without changing state.
type transition struct {
	From State
	Op   op
	To   State
}

var active = []State{StateIdle, StateReady, StatePlaying, StatePaused}

func lifecycle() []transition {
	t := []transition{
		{StateNone, opOpen, StateIdle},
		{StateIdle, opPrepared, StateReady},
		{StateIdle, opPrepareFailed, StateNone},
		{StateReady, opPlay, StatePlaying},
		{StatePaused, opPlay, StatePlaying},
		{StatePlaying, opPause, StatePaused},
		{StateReady, opSeek, StateReady},
		{StatePlaying, opSeek, StatePlaying},
		{StatePaused, opSeek, StatePaused},
	}
	for _, s := range active {
		t = append(t,
			transition{s, opStop, StateIdle},
			transition{s, opClose, StateNone},
			transition{s, opDisplay, s},
		)
	}
	return t
}

// machine is a lookup table over the lifecycle edges. It holds no state of
// its own; the binding owns the current state under its mutex.
type machine struct {
	index map[string]State
}

func newMachine(transitions []transition) (*machine, error) {
	idx := make(map[string]State, len(transitions))
	for _, t := range transitions {
		k := key(t.From, t.Op)
		if _, exists := idx[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Op)
		}
		idx[k] = t.To
	}
	return &machine{index: idx}, nil
}

func mustMachine() *machine {
	m, err := newMachine(lifecycle())
	if err != nil {
		panic(err)
	}
	return m
}

// next returns the target state of op from the given state, if permitted.
func (m *machine) next(from State, o op) (State, bool) {
	to, ok := m.index[key(from, o)]
	return to, ok
}

func key(from State, o op) string {
	return string(from) + "|" + string(o)
}
