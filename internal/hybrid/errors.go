// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hybrid

import "errors"

var (
	// ErrDisabled is returned when native playback is switched off.
	ErrDisabled = errors.New("native playback disabled")
	// ErrMetadataUnavailable is returned when no stream metadata appeared
	// within the poll budget.
	ErrMetadataUnavailable = errors.New("stream metadata unavailable")
	// ErrSuperseded is returned when navigation moved on before the attempt
	// could take over playback.
	ErrSuperseded = errors.New("playback attempt superseded")
)
