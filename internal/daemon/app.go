// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package daemon owns the process lifecycle: the bridge server, the drift
// loop and configuration hot reload.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/tizenplay/internal/config"
	"github.com/rs/zerolog"
)

// App supervises the long-lived goroutines and delegates serving to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	runtime      *Runtime
	reloadSignal os.Signal
}

// NewApp creates an App. holder may be nil to disable reloads.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, runtime *Runtime) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		runtime:      runtime,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run blocks until ctx is cancelled or a subsystem fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.runtime != nil {
		a.manager.RegisterShutdownHook("runtime", func(context.Context) error {
			a.runtime.Close()
			return nil
		})
		g.Go(func() error {
			return a.runtime.Drift.Run(ctx)
		})
	}

	if a.holder != nil {
		// Best-effort: a missing watcher only costs automatic reloads.
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		a.manager.RegisterShutdownHook("config-watcher", func(context.Context) error {
			a.holder.Wait()
			return nil
		})

		if a.runtime != nil {
			applyCh := make(chan config.AppConfig, 1)
			a.holder.RegisterListener(applyCh)
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case cfg := <-applyCh:
						a.runtime.Apply(cfg)
					}
				}
			})
		}

		if a.reloadSignal != nil {
			g.Go(func() error {
				hup := make(chan os.Signal, 1)
				signal.Notify(hup, a.reloadSignal)
				defer signal.Stop(hup)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hup:
						a.logger.Info().
							Str("event", "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")
						if err := a.holder.Reload(ctx); err != nil {
							a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
						}
					}
				}
			})
		}
	}

	g.Go(func() error {
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
