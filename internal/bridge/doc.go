// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bridge exposes the HTTP surface the page-side shim talks to.
//
// The shim posts host signals (navigation, player state, video snapshots,
// decoder events, stream metadata) and long-polls /api/v1/commands for the
// work queued by the playback core. Synthesized manifests are served from
// /manifests so the native decoder can open them by URL.
package bridge
