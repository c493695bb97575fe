// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"
	"time"

	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/ManuGH/tizenplay/internal/validate"
)

// Validate checks an AppConfig and reports every invalid field at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.HostPort("Listen", cfg.Listen)
	v.URL("PublicURL", cfg.PublicURL, []string{"http", "https"})
	if _, err := validate.ParseLogLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		v.AddError("LogLevel", err.Error(), cfg.LogLevel)
	}

	v.Range("API.RateLimit", cfg.API.RateLimit, 1, 100000)
	v.DurationRange("API.CommandWait", cfg.API.CommandWait, time.Second, 5*time.Minute)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	p := cfg.Playback
	v.DurationRange("Playback.SettleDelay", p.SettleDelay, 0, 30*time.Second)
	v.DurationRange("Playback.MetadataPollInterval", p.MetadataPollInterval, 10*time.Millisecond, 10*time.Second)
	v.Range("Playback.MetadataPollAttempts", p.MetadataPollAttempts, 1, 1000)
	v.DurationRange("Playback.InjectionTimeout", p.InjectionTimeout, 10*time.Millisecond, time.Minute)
	v.DurationRange("Playback.PrepareTimeout", p.PrepareTimeout, 10*time.Millisecond, time.Minute)
	v.DurationRange("Playback.ScriptLoadTimeout", p.ScriptLoadTimeout, 10*time.Millisecond, time.Minute)
	for _, loc := range p.ScriptLocations {
		v.NotEmpty("Playback.ScriptLocations", loc)
	}

	v.OneOf("Selection.PreferredAudioCodec", strings.ToLower(cfg.Selection.PreferredAudioCodec),
		[]string{string(stream.FamilyOpus), string(stream.FamilyAAC), "mp4a"})

	d := cfg.Drift
	v.DurationRange("Drift.TickInterval", d.TickInterval, 50*time.Millisecond, 10*time.Second)
	v.DurationRange("Drift.Cooldown", d.Cooldown, 0, time.Minute)
	v.DurationRange("Drift.ForceBackoff", d.ForceBackoff, time.Second, 5*time.Minute)
	v.FloatRange("Drift.SpeedThreshold", d.SpeedThreshold, 1.0, 16.0)
	v.FloatRange("Drift.CriticalDropRatio", d.CriticalDropRatio, 0.01, 1.0)
	v.Range("Drift.MaxForceSyncs", d.MaxForceSyncs, 1, 50)
	if !(d.WarningThreshold > 0 &&
		d.WarningThreshold < d.AggressiveThreshold &&
		d.AggressiveThreshold < d.HardJumpThreshold &&
		d.HardJumpThreshold < d.ResetThreshold) {
		v.AddError("Drift", "thresholds must satisfy 0 < warning < aggressive < hardJump < reset", []float64{
			d.WarningThreshold, d.AggressiveThreshold, d.HardJumpThreshold, d.ResetThreshold,
		})
	}
	for _, c := range d.WidenedCodecs {
		switch stream.CodecFamily(strings.ToLower(c)) {
		case stream.FamilyAV1, stream.FamilyVP9, stream.FamilyVP8, stream.FamilyAVC, stream.FamilyHEVC:
		default:
			v.AddError("Drift.WidenedCodecs", "unknown video codec family", c)
		}
	}

	v.DurationRange("Notifications.ToastInterval", cfg.Notifications.ToastInterval, 0, time.Hour)
	v.Range("Notifications.ToastBurst", cfg.Notifications.ToastBurst, 1, 100)

	return v.Err()
}
