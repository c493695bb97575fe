// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package drift

import (
	"time"

	"github.com/ManuGH/tizenplay/internal/stream"
)

// Settings is the configuration snapshot applied to every tick. Positions and
// thresholds are in seconds.
type Settings struct {
	Enabled bool

	TickInterval   time.Duration
	Cooldown       time.Duration
	SpeedThreshold float64

	CriticalDropRatio float64
	StressDropRatio   float64
	ForceNudge        float64
	MaxForceSyncs     int
	ForceBackoff      time.Duration

	ResetThreshold      float64
	HardJumpThreshold   float64
	AggressiveThreshold float64
	WarningThreshold    float64

	AggressiveFraction float64
	SubtleFraction     float64
	SubtleCap          float64

	ResetNudge       float64
	ResetResumeDelay time.Duration
	ResetCooldown    time.Duration

	// WidenedFamilies get their hard-jump and aggressive thresholds
	// multiplied by WidenFactor.
	WidenedFamilies []stream.CodecFamily
	WidenFactor     float64
}

// DefaultSettings returns the tuned defaults.
func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		TickInterval:        500 * time.Millisecond,
		Cooldown:            time.Second,
		SpeedThreshold:      1.2,
		CriticalDropRatio:   0.25,
		StressDropRatio:     0.08,
		ForceNudge:          0.15,
		MaxForceSyncs:       3,
		ForceBackoff:        10 * time.Second,
		ResetThreshold:      3.5,
		HardJumpThreshold:   2.5,
		AggressiveThreshold: 1.5,
		WarningThreshold:    0.25,
		AggressiveFraction:  0.4,
		SubtleFraction:      0.2,
		SubtleCap:           0.05,
		ResetNudge:          0.1,
		ResetResumeDelay:    200 * time.Millisecond,
		ResetCooldown:       3 * time.Second,
		WidenedFamilies:     []stream.CodecFamily{stream.FamilyHEVC},
		WidenFactor:         1.5,
	}
}

// normalize fills zero values from the defaults.
func (s Settings) normalize() Settings {
	d := DefaultSettings()
	if s.TickInterval <= 0 {
		s.TickInterval = d.TickInterval
	}
	if s.Cooldown < 0 {
		s.Cooldown = d.Cooldown
	}
	if s.SpeedThreshold <= 0 {
		s.SpeedThreshold = d.SpeedThreshold
	}
	if s.CriticalDropRatio <= 0 {
		s.CriticalDropRatio = d.CriticalDropRatio
	}
	if s.StressDropRatio <= 0 {
		s.StressDropRatio = d.StressDropRatio
	}
	if s.ForceNudge <= 0 {
		s.ForceNudge = d.ForceNudge
	}
	if s.MaxForceSyncs <= 0 {
		s.MaxForceSyncs = d.MaxForceSyncs
	}
	if s.ForceBackoff <= 0 {
		s.ForceBackoff = d.ForceBackoff
	}
	if s.ResetThreshold <= 0 {
		s.ResetThreshold = d.ResetThreshold
	}
	if s.HardJumpThreshold <= 0 {
		s.HardJumpThreshold = d.HardJumpThreshold
	}
	if s.AggressiveThreshold <= 0 {
		s.AggressiveThreshold = d.AggressiveThreshold
	}
	if s.WarningThreshold <= 0 {
		s.WarningThreshold = d.WarningThreshold
	}
	if s.AggressiveFraction <= 0 || s.AggressiveFraction > 1 {
		s.AggressiveFraction = d.AggressiveFraction
	}
	if s.SubtleFraction <= 0 || s.SubtleFraction > 1 {
		s.SubtleFraction = d.SubtleFraction
	}
	if s.SubtleCap <= 0 {
		s.SubtleCap = d.SubtleCap
	}
	if s.ResetNudge <= 0 {
		s.ResetNudge = d.ResetNudge
	}
	if s.ResetResumeDelay <= 0 {
		s.ResetResumeDelay = d.ResetResumeDelay
	}
	if s.ResetCooldown <= 0 {
		s.ResetCooldown = d.ResetCooldown
	}
	if s.WidenFactor < 1 {
		s.WidenFactor = d.WidenFactor
	}
	return s
}

func (s Settings) widened(f stream.CodecFamily) bool {
	for _, w := range s.WidenedFamilies {
		if w == f {
			return true
		}
	}
	return false
}
