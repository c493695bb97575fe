// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/tizenplay/internal/bridge"
	"github.com/rs/zerolog"
)

// ServerConfig bounds the bridge HTTP server.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig leaves room in the write timeout for the longest
// command long-poll.
func DefaultServerConfig(listen string) ServerConfig {
	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    bridge.MaxCommandWait + 10*time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Deps contains what the Manager serves.
type Deps struct {
	Logger  zerolog.Logger
	Handler http.Handler
	// Listener, when set, is used instead of listening on ListenAddr.
	Listener net.Listener
}

// Validate checks required dependencies.
func (d Deps) Validate() error {
	if d.Handler == nil {
		return ErrMissingHandler
	}
	return nil
}
