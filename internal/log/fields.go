// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldVideoID   = "video_id"
	FieldAttemptID = "attempt_id"
	FieldRequestID = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Media / stream fields
	FieldCodec      = "codec"
	FieldResolution = "resolution"
	FieldFPS        = "fps"
	FieldBitrate    = "bitrate"
	FieldMimeType   = "mime_type"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Drift fields
	FieldTier      = "tier"
	FieldDrift     = "drift_s"
	FieldDropRatio = "drop_ratio"
	FieldRate      = "playback_rate"

	// Path / URL fields
	FieldLocation = "location"
	FieldLocator  = "locator"
)
