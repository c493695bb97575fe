// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTable(t *testing.T) {
	m := mustMachine()

	type edge struct {
		from State
		op   op
		to   State
		ok   bool
	}
	tests := []edge{
		{StateNone, opOpen, StateIdle, true},
		{StateIdle, opOpen, "", false},
		{StateIdle, opPrepared, StateReady, true},
		{StateIdle, opPrepareFailed, StateNone, true},
		{StateReady, opPlay, StatePlaying, true},
		{StatePaused, opPlay, StatePlaying, true},
		{StateIdle, opPlay, "", false},
		{StatePlaying, opPlay, "", false},
		{StatePlaying, opPause, StatePaused, true},
		{StateReady, opPause, "", false},
		{StateNone, opStop, "", false},
		{StateNone, opClose, "", false},
		{StateIdle, opSeek, "", false},
		{StatePaused, opSeek, StatePaused, true},
		{StateNone, opDisplay, "", false},
	}
	for _, s := range active {
		tests = append(tests,
			edge{s, opStop, StateIdle, true},
			edge{s, opClose, StateNone, true},
			edge{s, opDisplay, s, true},
		)
	}

	for _, tt := range tests {
		to, ok := m.next(tt.from, tt.op)
		assert.Equal(t, tt.ok, ok, "%s --%s-->", tt.from, tt.op)
		if tt.ok {
			assert.Equal(t, tt.to, to, "%s --%s-->", tt.from, tt.op)
		}
	}
}

func TestNewMachine_RejectsDuplicates(t *testing.T) {
	_, err := newMachine([]transition{
		{StateNone, opOpen, StateIdle},
		{StateNone, opOpen, StateReady},
	})
	require.Error(t, err)
}
