// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package hybrid coordinates native playback with the host page.
//
// The Orchestrator follows host navigation, derives the current video
// identity and, after a settle delay, starts native playback of that video:
// it waits for stream metadata, selects streams, synthesizes a manifest,
// hides and mutes the host element and opens the native decoder. While
// native playback is active the host element keeps playing muted so the
// host UI stays live, host play/pause/ended states are mirrored onto the
// decoder and the drift corrector is suspended.
//
// Every failure restores the host overrides; host playback is always the
// fallback.
package hybrid
