// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/tizenplay/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestApp_RequiresManager(t *testing.T) {
	app := NewApp(zerolog.Nop(), nil, nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}

func TestApp_ReloadAppliesAndShutdownIsClean(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback:\n  nativeEnabled: true\n"), 0o600))

	loader := config.NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	cfg.API.RateLimit = 0
	holder := config.NewHolder(cfg, loader)
	rt := NewRuntime(cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	mgr, err := NewManager(DefaultServerConfig(""), Deps{Logger: zerolog.Nop(), Handler: rt.Bridge, Listener: ln})
	require.NoError(t, err)

	app := NewApp(zerolog.Nop(), mgr, holder, rt)
	app.reloadSignal = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	_ = mgr.Addr()

	require.True(t, rt.Orchestrator.Status().Enabled)
	require.NoError(t, os.WriteFile(path, []byte("playback:\n  nativeEnabled: false\n"), 0o600))
	require.Eventually(t, func() bool {
		return !rt.Orchestrator.Status().Enabled
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
