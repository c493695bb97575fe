// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the daemon configuration (defaults, YAML file,
// TIZENPLAY_* environment overrides), validates it, and hot-reloads it.
// Components never read the configuration directly; they receive snapshots
// derived from AppConfig at start-up and on every successful reload.
package config
