// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package host describes the parts of the host page the playback core reads
// and writes.
package host

import "github.com/ManuGH/tizenplay/internal/stream"

// FrameStats are the cumulative decoder frame counters of the video element.
type FrameStats struct {
	Dropped uint64
	Total   uint64
}

// Video is the host page's <video> element.
type Video interface {
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Paused() bool
	Ended() bool
	PlaybackRate() float64
	Muted() bool
	SetMuted(muted bool)
	Play()
	Pause()
	// FrameStats returns false when the element exposes no quality counters.
	FrameStats() (FrameStats, bool)
	// SetHidden toggles the opacity/visibility override.
	SetHidden(hidden bool)
}

// Player is the host player container.
type Player interface {
	// VideoID returns the identity from the player's own accessor, if any.
	VideoID() (string, bool)
	// SetTransparent toggles the background override that reveals the
	// native decoder plane.
	SetTransparent(transparent bool)
}

// Toaster shows a transient user notification.
type Toaster interface {
	Toast(title, message string)
}

// MetadataProvider exposes the stream metadata record populated for a video.
type MetadataProvider interface {
	Lookup(videoID string) (stream.Metadata, bool)
}

// StateCode is the host player's numeric state.
type StateCode int

const (
	StateUnstarted StateCode = -1
	StateEnded     StateCode = 0
	StatePlaying   StateCode = 1
	StatePaused    StateCode = 2
	StateBuffering StateCode = 3
	StateCued      StateCode = 5
)

func (s StateCode) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return "unknown"
	}
}
