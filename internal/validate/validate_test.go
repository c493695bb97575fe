// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Accumulates(t *testing.T) {
	v := New()
	v.Range("MetadataPollAttempts", 0, 1, 100)
	v.FloatRange("SpeedThreshold", 0.5, 1.0, 4.0)
	v.DurationRange("SettleDelay", -time.Second, 0, 10*time.Second)
	v.OneOf("PreferredAudioCodec", "flac", []string{"opus", "aac"})
	v.NotEmpty("Listen", "  ")
	v.URL("PublicURL", "ftp://host", []string{"http", "https"})
	v.HostPort("Listen", "127.0.0.1:http-alt")

	require.False(t, v.IsValid())
	err := v.Err()
	require.Error(t, err)

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"MetadataPollAttempts", "SpeedThreshold", "SettleDelay",
		"PreferredAudioCodec", "Listen", "PublicURL", "Listen",
	}, fields)
	assert.Contains(t, err.Error(), "; ")
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	v.Range("n", 5, 1, 10)
	v.FloatRange("f", 1.2, 1.0, 4.0)
	v.DurationRange("d", time.Second, 0, time.Minute)
	v.OneOf("codec", "opus", []string{"opus", "aac"})
	v.URL("u", "http://127.0.0.1:8765", []string{"http"})
	v.HostPort("listen", ":8765")

	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, lvl)

	_, err = ParseLogLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
