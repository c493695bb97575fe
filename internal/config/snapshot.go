// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"

	"github.com/ManuGH/tizenplay/internal/drift"
	"github.com/ManuGH/tizenplay/internal/hybrid"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/ManuGH/tizenplay/internal/selector"
	"github.com/ManuGH/tizenplay/internal/stream"
)

// SelectionPreferences returns the stream selector snapshot.
func (c AppConfig) SelectionPreferences() selector.Preferences {
	s := c.Selection
	return selector.Preferences{
		PreferredQuality:    s.PreferredQuality,
		DisableAV1:          s.DisableAV1,
		DisableVP9:          s.DisableVP9,
		DisableAVC:          s.DisableAVC,
		DisableVP8:          s.DisableVP8,
		DisableHEVC:         s.DisableHEVC,
		DisableHighFPS:      s.DisableHighFPS,
		PreferredAudioCodec: s.PreferredAudioCodec,
	}
}

// DriftSettings returns the drift corrector snapshot. Settings without a
// configuration key keep their defaults.
func (c AppConfig) DriftSettings() drift.Settings {
	s := drift.DefaultSettings()
	d := c.Drift
	s.Enabled = d.Enabled
	s.TickInterval = d.TickInterval
	s.Cooldown = d.Cooldown
	s.SpeedThreshold = d.SpeedThreshold
	s.CriticalDropRatio = d.CriticalDropRatio
	s.MaxForceSyncs = d.MaxForceSyncs
	s.ForceBackoff = d.ForceBackoff
	s.ResetThreshold = d.ResetThreshold
	s.HardJumpThreshold = d.HardJumpThreshold
	s.AggressiveThreshold = d.AggressiveThreshold
	s.WarningThreshold = d.WarningThreshold
	s.WidenedFamilies = make([]stream.CodecFamily, 0, len(d.WidenedCodecs))
	for _, f := range d.WidenedCodecs {
		s.WidenedFamilies = append(s.WidenedFamilies, stream.CodecFamily(strings.ToLower(f)))
	}
	return s
}

// NativeOptions returns the native binding snapshot.
func (c AppConfig) NativeOptions() native.Options {
	return native.Options{
		InjectionTimeout: c.Playback.InjectionTimeout,
		PrepareTimeout:   c.Playback.PrepareTimeout,
	}
}

// HybridOptions returns the orchestrator snapshot.
func (c AppConfig) HybridOptions() hybrid.Options {
	return hybrid.Options{
		Enabled:              c.Playback.NativeEnabled,
		SettleDelay:          c.Playback.SettleDelay,
		MetadataPollInterval: c.Playback.MetadataPollInterval,
		MetadataPollAttempts: c.Playback.MetadataPollAttempts,
		Selection:            c.SelectionPreferences(),
	}
}
