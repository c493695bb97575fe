// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	startSourceManifestURL = "manifest_url"
	startSourceSynthesized = "synthesized"

	startOutcomeOK      = "ok"
	startOutcomeFailed  = "failed"
	startOutcomeAborted = "aborted"
)

// StartLatencySeconds measures a native start from the end of the settle
// delay until the decoder plays, or until the attempt gave up.
var StartLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "tizenplay_playback_start_seconds",
	Help:    "Native start latency from attempt to playing, by stream source and outcome",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 20},
}, []string{"source", "outcome"})

// ObserveStartLatency records one attempt. An empty source means the
// attempt ended before a stream was chosen.
func ObserveStartLatency(source, outcome string, seconds float64) {
	if source == "" {
		source = "none"
	}
	StartLatencySeconds.WithLabelValues(
		normalizeLabel(source, startSourceManifestURL, startSourceSynthesized, "none"),
		normalizeLabel(outcome, startOutcomeOK, startOutcomeFailed, startOutcomeAborted),
	).Observe(seconds)
}
