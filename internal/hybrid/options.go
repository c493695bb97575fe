// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hybrid

import (
	"time"

	"github.com/ManuGH/tizenplay/internal/selector"
)

const (
	DefaultSettleDelay          = time.Second
	DefaultMetadataPollInterval = 500 * time.Millisecond
	DefaultMetadataPollAttempts = 20
)

// Options is the configuration snapshot read at the start of each attempt.
type Options struct {
	// Enabled gates native playback. Disabled orchestrators still tear down.
	Enabled bool

	SettleDelay          time.Duration
	MetadataPollInterval time.Duration
	MetadataPollAttempts int

	Selection selector.Preferences
}

func (o Options) withDefaults() Options {
	if o.SettleDelay < 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.MetadataPollInterval <= 0 {
		o.MetadataPollInterval = DefaultMetadataPollInterval
	}
	if o.MetadataPollAttempts <= 0 {
		o.MetadataPollAttempts = DefaultMetadataPollAttempts
	}
	return o
}
