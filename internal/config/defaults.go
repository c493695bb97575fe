// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/tizenplay/internal/drift"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/ManuGH/tizenplay/internal/selector"
)

// DefaultListen is the bridge listen address.
const DefaultListen = "127.0.0.1:8765"

// DefaultScriptLocations are the known places the vendor API script lives.
var DefaultScriptLocations = []string{
	"$WEBAPIS/webapis/webapis.js",
	"file:///usr/share/webapis/webapis.js",
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	d := drift.DefaultSettings()
	widened := make([]string, 0, len(d.WidenedFamilies))
	for _, f := range d.WidenedFamilies {
		widened = append(widened, string(f))
	}

	return AppConfig{
		Listen:    DefaultListen,
		PublicURL: "http://" + DefaultListen,
		LogLevel:  "info",
		API: APIConfig{
			RateLimit:   600,
			CommandWait: 25 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		Playback: PlaybackConfig{
			NativeEnabled:        true,
			SettleDelay:          time.Second,
			MetadataPollInterval: 500 * time.Millisecond,
			MetadataPollAttempts: 20,
			InjectionTimeout:     native.DefaultInjectionTimeout,
			PrepareTimeout:       native.DefaultPrepareTimeout,
			ScriptLocations:      append([]string(nil), DefaultScriptLocations...),
			ScriptLoadTimeout:    native.DefaultLoadTimeout,
		},
		Selection: SelectionConfig{
			PreferredQuality:    "auto",
			PreferredAudioCodec: selector.DefaultAudioCodec,
		},
		Drift: DriftConfig{
			Enabled:             d.Enabled,
			TickInterval:        d.TickInterval,
			Cooldown:            d.Cooldown,
			SpeedThreshold:      d.SpeedThreshold,
			CriticalDropRatio:   d.CriticalDropRatio,
			MaxForceSyncs:       d.MaxForceSyncs,
			ForceBackoff:        d.ForceBackoff,
			ResetThreshold:      d.ResetThreshold,
			HardJumpThreshold:   d.HardJumpThreshold,
			AggressiveThreshold: d.AggressiveThreshold,
			WarningThreshold:    d.WarningThreshold,
			WidenedCodecs:       widened,
		},
		Notifications: NotificationsConfig{
			ToastInterval: 5 * time.Second,
			ToastBurst:    2,
		},
	}
}
