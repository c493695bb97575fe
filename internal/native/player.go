// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package native

// Display constants applied right after open.
const (
	DisplayWidth      = 1920
	DisplayHeight     = 1080
	DisplayFullScreen = "PLAYER_DISPLAY_MODE_FULL_SCREEN"
)

// Player is the contract assumed of the vendor playback object.
type Player interface {
	Open(url string) error
	SetDisplayRect(x, y, w, h int) error
	SetDisplayMethod(method string) error
	SetListener(l Listener) error
	// PrepareAsync starts preparation and reports through exactly one of the
	// callbacks. A returned error means preparation never started.
	PrepareAsync(onSuccess func(), onError func(err error)) error
	Play() error
	Pause() error
	Stop() error
	Close() error
	SeekTo(positionMs int64) error
}

// Listener receives raw decoder signals. Nil fields are ignored.
type Listener struct {
	OnBufferingStart    func()
	OnBufferingComplete func()
	OnStreamCompleted   func()
	OnCurrentPlayTime   func(positionMs int64)
	OnError             func(payload string)
}
