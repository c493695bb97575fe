// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// FileConfig represents the YAML configuration structure. Durations are Go
// duration strings ("500ms"). Pointer fields distinguish "unset" from zero.
type FileConfig struct {
	Listen    string `yaml:"listen,omitempty"`
	PublicURL string `yaml:"publicURL,omitempty"`
	LogLevel  string `yaml:"logLevel,omitempty"`

	API           APIFileConfig           `yaml:"api,omitempty"`
	Telemetry     TelemetryFileConfig     `yaml:"telemetry,omitempty"`
	Playback      PlaybackFileConfig      `yaml:"playback,omitempty"`
	Selection     SelectionFileConfig     `yaml:"selection,omitempty"`
	Drift         DriftFileConfig         `yaml:"drift,omitempty"`
	Notifications NotificationsFileConfig `yaml:"notifications,omitempty"`
}

// APIFileConfig configures the host bridge.
type APIFileConfig struct {
	RateLimit   *int   `yaml:"rateLimit,omitempty"`
	CommandWait string `yaml:"commandWait,omitempty"`
}

// TelemetryFileConfig configures tracing.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

// PlaybackFileConfig configures native playback and the start sequence.
type PlaybackFileConfig struct {
	NativeEnabled        *bool    `yaml:"nativeEnabled,omitempty"`
	SettleDelay          string   `yaml:"settleDelay,omitempty"`
	MetadataPollInterval string   `yaml:"metadataPollInterval,omitempty"`
	MetadataPollAttempts *int     `yaml:"metadataPollAttempts,omitempty"`
	InjectionTimeout     string   `yaml:"injectionTimeout,omitempty"`
	PrepareTimeout       string   `yaml:"prepareTimeout,omitempty"`
	ScriptLocations      []string `yaml:"scriptLocations,omitempty"`
	ScriptLoadTimeout    string   `yaml:"scriptLoadTimeout,omitempty"`
}

// SelectionFileConfig configures stream selection.
type SelectionFileConfig struct {
	PreferredQuality    string `yaml:"preferredQuality,omitempty"`
	PreferredAudioCodec string `yaml:"preferredAudioCodec,omitempty"`
	DisableAV1          *bool  `yaml:"disableAV1,omitempty"`
	DisableVP9          *bool  `yaml:"disableVP9,omitempty"`
	DisableAVC          *bool  `yaml:"disableAVC,omitempty"`
	DisableVP8          *bool  `yaml:"disableVP8,omitempty"`
	DisableHEVC         *bool  `yaml:"disableHEVC,omitempty"`
	DisableHighFPS      *bool  `yaml:"disableHighFPS,omitempty"`
}

// DriftFileConfig configures the drift corrector.
type DriftFileConfig struct {
	Enabled             *bool    `yaml:"enabled,omitempty"`
	TickInterval        string   `yaml:"tickInterval,omitempty"`
	Cooldown            string   `yaml:"cooldown,omitempty"`
	SpeedThreshold      *float64 `yaml:"speedThreshold,omitempty"`
	CriticalDropRatio   *float64 `yaml:"criticalDropRatio,omitempty"`
	MaxForceSyncs       *int     `yaml:"maxForceSyncs,omitempty"`
	ForceBackoff        string   `yaml:"forceBackoff,omitempty"`
	ResetThreshold      *float64 `yaml:"resetThreshold,omitempty"`
	HardJumpThreshold   *float64 `yaml:"hardJumpThreshold,omitempty"`
	AggressiveThreshold *float64 `yaml:"aggressiveThreshold,omitempty"`
	WarningThreshold    *float64 `yaml:"warningThreshold,omitempty"`
	WidenedCodecs       []string `yaml:"widenedCodecs,omitempty"`
}

// NotificationsFileConfig configures toast throttling.
type NotificationsFileConfig struct {
	ToastInterval string `yaml:"toastInterval,omitempty"`
	ToastBurst    *int   `yaml:"toastBurst,omitempty"`
}

// AppConfig is the effective configuration after defaults, file and env.
type AppConfig struct {
	Version   string
	Listen    string
	PublicURL string
	LogLevel  string

	API           APIConfig
	Telemetry     TelemetryConfig
	Playback      PlaybackConfig
	Selection     SelectionConfig
	Drift         DriftConfig
	Notifications NotificationsConfig
}

// APIConfig holds bridge settings.
type APIConfig struct {
	RateLimit   int // requests per minute per client
	CommandWait time.Duration
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// PlaybackConfig holds native playback settings.
type PlaybackConfig struct {
	NativeEnabled        bool
	SettleDelay          time.Duration
	MetadataPollInterval time.Duration
	MetadataPollAttempts int
	InjectionTimeout     time.Duration
	PrepareTimeout       time.Duration
	ScriptLocations      []string
	ScriptLoadTimeout    time.Duration
}

// SelectionConfig holds stream selection preferences.
type SelectionConfig struct {
	PreferredQuality    string
	PreferredAudioCodec string
	DisableAV1          bool
	DisableVP9          bool
	DisableAVC          bool
	DisableVP8          bool
	DisableHEVC         bool
	DisableHighFPS      bool
}

// DriftConfig holds the tunable subset of drift settings.
type DriftConfig struct {
	Enabled             bool
	TickInterval        time.Duration
	Cooldown            time.Duration
	SpeedThreshold      float64
	CriticalDropRatio   float64
	MaxForceSyncs       int
	ForceBackoff        time.Duration
	ResetThreshold      float64
	HardJumpThreshold   float64
	AggressiveThreshold float64
	WarningThreshold    float64
	WidenedCodecs       []string
}

// NotificationsConfig holds toast throttling.
type NotificationsConfig struct {
	ToastInterval time.Duration
	ToastBurst    int
}
