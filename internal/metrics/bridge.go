// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsQueuedTotal counts commands queued for the host shim by type.
	CommandsQueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_commands_queued_total",
		Help: "Commands queued on the host outbox by type",
	}, []string{"type"})

	// CommandsDroppedTotal counts commands evicted before the shim collected them.
	CommandsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_commands_dropped_total",
		Help: "Commands dropped from the host outbox by type and reason",
	}, []string{"type", "reason"})

	// OutboxDepth is the number of commands waiting for the shim.
	OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tizenplay_outbox_depth",
		Help: "Commands waiting on the host outbox",
	})

	// HostSignalsTotal counts signals received from the host shim.
	HostSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_host_signals_total",
		Help: "Signals received from the host shim by kind",
	}, []string{"kind"})
)

// RecordCommandQueued records a queued command and the resulting depth.
func RecordCommandQueued(cmdType string, depth int) {
	if cmdType == "" {
		cmdType = "unknown"
	}
	CommandsQueuedTotal.WithLabelValues(cmdType).Inc()
	OutboxDepth.Set(float64(depth))
}

// RecordCommandDropped records a dropped command with a concrete reason.
func RecordCommandDropped(cmdType, reason string) {
	if cmdType == "" {
		cmdType = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	CommandsDroppedTotal.WithLabelValues(cmdType, reason).Inc()
}

// SetOutboxDepth publishes the current outbox depth.
func SetOutboxDepth(depth int) {
	OutboxDepth.Set(float64(depth))
}

// RecordHostSignal records an inbound host signal.
func RecordHostSignal(kind string) {
	HostSignalsTotal.WithLabelValues(normalizeLabel(kind,
		"navigation", "hashchange", "state", "video", "video_event", "streams", "native_event")).Inc()
}
