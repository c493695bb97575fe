// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package remote adapts the host page, reached through the bridge, to the
// interfaces of the playback core.
//
// The page-side shim reports state snapshots and events over HTTP and
// collects commands from an Outbox by long-polling. Writes made by the core
// (seeks, mute and visibility overrides, native decoder calls, toasts) are
// applied to the local snapshot immediately and queued as commands.
package remote
