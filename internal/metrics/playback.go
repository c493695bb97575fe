// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NativeTransitionsTotal counts native player state transitions.
	NativeTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_native_transitions_total",
		Help: "Native player state transitions by source and target state",
	}, []string{"from", "to"})

	// NativePrepareTotal counts prepare outcomes (ready, error, timeout, canceled).
	NativePrepareTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_native_prepare_total",
		Help: "Native prepare attempts by outcome",
	}, []string{"outcome"})

	// CapabilityInjectionTotal counts script injection outcomes.
	CapabilityInjectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_capability_injection_total",
		Help: "Native capability injection attempts by outcome",
	}, []string{"outcome"})

	// SelectionTotal counts stream selection outcomes.
	SelectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_selection_total",
		Help: "Stream selection outcomes by result and codec family",
	}, []string{"result", "family"})

	// ManifestsPublishedTotal counts synthesized manifests handed to the native player.
	ManifestsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tizenplay_manifests_published_total",
		Help: "Synthesized manifests published under an ephemeral locator",
	})

	// PlaybackStartsTotal counts hybrid start attempts by result.
	PlaybackStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_playback_starts_total",
		Help: "Hybrid playback start attempts by result",
	}, []string{"result"})

	// NativeActive is 1 while the native decoder owns visible output.
	NativeActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tizenplay_native_active",
		Help: "Whether native playback currently owns visible output",
	})

	// DriftCorrectionsTotal counts corrective actions by tier.
	DriftCorrectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_drift_corrections_total",
		Help: "Drift corrections issued by tier",
	}, []string{"tier"})

	// DriftBackoffsTotal counts force-sync give-ups.
	DriftBackoffsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tizenplay_drift_backoffs_total",
		Help: "Times the drift corrector entered extended cooldown after repeated forced syncs",
	})

	// DriftSeconds observes absolute drift at evaluation time.
	DriftSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tizenplay_drift_seconds",
		Help:    "Absolute drift between expected and actual host position",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 3.5, 5, 10},
	})

	// ToastsTotal counts user-visible notifications by delivery result.
	ToastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_toasts_total",
		Help: "Toast notifications by result (sent, throttled)",
	}, []string{"result"})

	// ConfigReloadsTotal counts configuration reloads by result.
	ConfigReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tizenplay_config_reloads_total",
		Help: "Configuration reloads by result",
	}, []string{"result"})
)

// RecordNativeTransition records a native state change.
func RecordNativeTransition(from, to string) {
	NativeTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordPrepare records a prepare outcome.
func RecordPrepare(outcome string) {
	NativePrepareTotal.WithLabelValues(normalizeLabel(outcome, "ready", "error", "timeout", "canceled")).Inc()
}

// RecordInjection records a capability injection outcome.
func RecordInjection(outcome string) {
	CapabilityInjectionTotal.WithLabelValues(normalizeLabel(outcome, "loaded", "failed")).Inc()
}

// RecordSelection records a selection result for a codec family.
func RecordSelection(result, family string) {
	SelectionTotal.WithLabelValues(
		normalizeLabel(result, "selected", "no_video", "no_audio"),
		normalizeLabel(family, "av1", "vp9", "vp8", "avc", "hevc", "opus", "aac"),
	).Inc()
}

// RecordPlaybackStart records the outcome of a hybrid start attempt.
func RecordPlaybackStart(result string) {
	PlaybackStartsTotal.WithLabelValues(normalizeLabel(result,
		"started", "disabled", "no_metadata", "selection_failed", "manifest_failed",
		"unsupported", "prepare_failed", "superseded", "canceled")).Inc()
}

// SetNativeActive flips the native-active gauge.
func SetNativeActive(active bool) {
	if active {
		NativeActive.Set(1)
		return
	}
	NativeActive.Set(0)
}

// RecordDriftCorrection records a correction tier and the drift that caused it.
func RecordDriftCorrection(tier string, drift float64) {
	DriftCorrectionsTotal.WithLabelValues(normalizeLabel(tier, "force", "subtle", "aggressive", "hard_jump", "reset")).Inc()
	if drift < 0 {
		drift = -drift
	}
	DriftSeconds.Observe(drift)
}

// RecordDriftBackoff records a force-sync give-up.
func RecordDriftBackoff() {
	DriftBackoffsTotal.Inc()
}

// RecordToast records a toast delivery result.
func RecordToast(result string) {
	ToastsTotal.WithLabelValues(normalizeLabel(result, "sent", "throttled")).Inc()
}

// RecordConfigReload records a configuration reload result.
func RecordConfigReload(result string) {
	ConfigReloadsTotal.WithLabelValues(normalizeLabel(result, "success", "failed")).Inc()
}

func normalizeLabel(v string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return "unknown"
}
