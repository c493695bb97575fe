// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"
)

// mergeFileConfig overlays the values present in the file onto cfg.
func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	if f == nil {
		return nil
	}
	setString(&cfg.Listen, f.Listen)
	setString(&cfg.PublicURL, f.PublicURL)
	setString(&cfg.LogLevel, f.LogLevel)

	setInt(&cfg.API.RateLimit, f.API.RateLimit)
	if err := setDuration(&cfg.API.CommandWait, "api.commandWait", f.API.CommandWait); err != nil {
		return err
	}

	setBool(&cfg.Telemetry.Enabled, f.Telemetry.Enabled)
	setString(&cfg.Telemetry.Exporter, f.Telemetry.Exporter)
	setString(&cfg.Telemetry.Endpoint, f.Telemetry.Endpoint)
	setFloat(&cfg.Telemetry.SamplingRate, f.Telemetry.SamplingRate)

	p := f.Playback
	setBool(&cfg.Playback.NativeEnabled, p.NativeEnabled)
	setInt(&cfg.Playback.MetadataPollAttempts, p.MetadataPollAttempts)
	if len(p.ScriptLocations) > 0 {
		cfg.Playback.ScriptLocations = append([]string(nil), p.ScriptLocations...)
	}
	for _, d := range []struct {
		dst  *time.Duration
		name string
		raw  string
	}{
		{&cfg.Playback.SettleDelay, "playback.settleDelay", p.SettleDelay},
		{&cfg.Playback.MetadataPollInterval, "playback.metadataPollInterval", p.MetadataPollInterval},
		{&cfg.Playback.InjectionTimeout, "playback.injectionTimeout", p.InjectionTimeout},
		{&cfg.Playback.PrepareTimeout, "playback.prepareTimeout", p.PrepareTimeout},
		{&cfg.Playback.ScriptLoadTimeout, "playback.scriptLoadTimeout", p.ScriptLoadTimeout},
		{&cfg.Drift.TickInterval, "drift.tickInterval", f.Drift.TickInterval},
		{&cfg.Drift.Cooldown, "drift.cooldown", f.Drift.Cooldown},
		{&cfg.Drift.ForceBackoff, "drift.forceBackoff", f.Drift.ForceBackoff},
		{&cfg.Notifications.ToastInterval, "notifications.toastInterval", f.Notifications.ToastInterval},
	} {
		if err := setDuration(d.dst, d.name, d.raw); err != nil {
			return err
		}
	}

	s := f.Selection
	setString(&cfg.Selection.PreferredQuality, s.PreferredQuality)
	setString(&cfg.Selection.PreferredAudioCodec, s.PreferredAudioCodec)
	setBool(&cfg.Selection.DisableAV1, s.DisableAV1)
	setBool(&cfg.Selection.DisableVP9, s.DisableVP9)
	setBool(&cfg.Selection.DisableAVC, s.DisableAVC)
	setBool(&cfg.Selection.DisableVP8, s.DisableVP8)
	setBool(&cfg.Selection.DisableHEVC, s.DisableHEVC)
	setBool(&cfg.Selection.DisableHighFPS, s.DisableHighFPS)

	d := f.Drift
	setBool(&cfg.Drift.Enabled, d.Enabled)
	setFloat(&cfg.Drift.SpeedThreshold, d.SpeedThreshold)
	setFloat(&cfg.Drift.CriticalDropRatio, d.CriticalDropRatio)
	setInt(&cfg.Drift.MaxForceSyncs, d.MaxForceSyncs)
	setFloat(&cfg.Drift.ResetThreshold, d.ResetThreshold)
	setFloat(&cfg.Drift.HardJumpThreshold, d.HardJumpThreshold)
	setFloat(&cfg.Drift.AggressiveThreshold, d.AggressiveThreshold)
	setFloat(&cfg.Drift.WarningThreshold, d.WarningThreshold)
	if d.WidenedCodecs != nil {
		cfg.Drift.WidenedCodecs = append([]string(nil), d.WidenedCodecs...)
	}

	setInt(&cfg.Notifications.ToastBurst, f.Notifications.ToastBurst)
	return nil
}

// mergeEnvConfig applies TIZENPLAY_* overrides (highest priority).
func mergeEnvConfig(cfg *AppConfig) {
	cfg.Listen = ParseString(EnvPrefix+"LISTEN", cfg.Listen)
	cfg.PublicURL = ParseString(EnvPrefix+"PUBLIC_URL", cfg.PublicURL)
	cfg.LogLevel = ParseString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)

	cfg.API.RateLimit = ParseInt(EnvPrefix+"RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.CommandWait = ParseDuration(EnvPrefix+"COMMAND_WAIT", cfg.API.CommandWait)

	cfg.Telemetry.Enabled = ParseBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString(EnvPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString(EnvPrefix+"OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat(EnvPrefix+"TRACE_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Playback.NativeEnabled = ParseBool(EnvPrefix+"NATIVE_ENABLED", cfg.Playback.NativeEnabled)
	cfg.Playback.SettleDelay = ParseDuration(EnvPrefix+"SETTLE_DELAY", cfg.Playback.SettleDelay)
	cfg.Playback.MetadataPollInterval = ParseDuration(EnvPrefix+"METADATA_POLL_INTERVAL", cfg.Playback.MetadataPollInterval)
	cfg.Playback.MetadataPollAttempts = ParseInt(EnvPrefix+"METADATA_POLL_ATTEMPTS", cfg.Playback.MetadataPollAttempts)
	cfg.Playback.InjectionTimeout = ParseDuration(EnvPrefix+"INJECTION_TIMEOUT", cfg.Playback.InjectionTimeout)
	cfg.Playback.PrepareTimeout = ParseDuration(EnvPrefix+"PREPARE_TIMEOUT", cfg.Playback.PrepareTimeout)
	cfg.Playback.ScriptLocations = ParseList(EnvPrefix+"SCRIPT_LOCATIONS", cfg.Playback.ScriptLocations)

	cfg.Selection.PreferredQuality = ParseString(EnvPrefix+"PREFERRED_QUALITY", cfg.Selection.PreferredQuality)
	cfg.Selection.PreferredAudioCodec = ParseString(EnvPrefix+"AUDIO_CODEC", cfg.Selection.PreferredAudioCodec)
	cfg.Selection.DisableAV1 = ParseBool(EnvPrefix+"DISABLE_AV1", cfg.Selection.DisableAV1)
	cfg.Selection.DisableVP9 = ParseBool(EnvPrefix+"DISABLE_VP9", cfg.Selection.DisableVP9)
	cfg.Selection.DisableAVC = ParseBool(EnvPrefix+"DISABLE_AVC", cfg.Selection.DisableAVC)
	cfg.Selection.DisableVP8 = ParseBool(EnvPrefix+"DISABLE_VP8", cfg.Selection.DisableVP8)
	cfg.Selection.DisableHEVC = ParseBool(EnvPrefix+"DISABLE_HEVC", cfg.Selection.DisableHEVC)
	cfg.Selection.DisableHighFPS = ParseBool(EnvPrefix+"DISABLE_HIGH_FPS", cfg.Selection.DisableHighFPS)

	cfg.Drift.Enabled = ParseBool(EnvPrefix+"DRIFT_ENABLED", cfg.Drift.Enabled)
	cfg.Drift.SpeedThreshold = ParseFloat(EnvPrefix+"DRIFT_SPEED_THRESHOLD", cfg.Drift.SpeedThreshold)
	cfg.Drift.TickInterval = ParseDuration(EnvPrefix+"DRIFT_TICK_INTERVAL", cfg.Drift.TickInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", name, raw, err)
	}
	*dst = d
	return nil
}
