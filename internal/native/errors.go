// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported means the native decoder API never became reachable.
	ErrUnsupported = errors.New("native player unsupported")
	// ErrPrepareTimeout means prepare did not report within its bound.
	ErrPrepareTimeout = errors.New("native prepare timed out")
	// ErrClosed means the binding was closed while an open was in flight.
	ErrClosed = errors.New("native player closed")
)

// PrepareError wraps a failure reported by the decoder during prepare.
type PrepareError struct {
	Err error
}

func (e *PrepareError) Error() string {
	if e.Err == nil {
		return "native prepare failed"
	}
	return fmt.Sprintf("native prepare failed: %v", e.Err)
}

func (e *PrepareError) Unwrap() error { return e.Err }
