// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/rs/zerolog"
)

// NativeEventType names a signal the shim reports about the native decoder.
type NativeEventType string

const (
	EvAvailable         NativeEventType = "available"
	EvPrepared          NativeEventType = "prepared"
	EvPrepareError      NativeEventType = "prepare_error"
	EvBufferingStart    NativeEventType = "buffering_start"
	EvBufferingComplete NativeEventType = "buffering_complete"
	EvEnded             NativeEventType = "ended"
	EvTimeUpdate        NativeEventType = "time_update"
	EvError             NativeEventType = "error"
	EvScriptLoaded      NativeEventType = "script_loaded"
	EvScriptError       NativeEventType = "script_error"
)

// NativeEvent is one report from the shim.
type NativeEvent struct {
	Type       NativeEventType `json:"type"`
	PositionMs int64           `json:"positionMs,omitempty"`
	Payload    string          `json:"payload,omitempty"`
	// CommandID correlates script results with their inject_script command.
	CommandID string `json:"commandId,omitempty"`
}

var (
	// ErrUnknownEvent is returned by Dispatch for unrecognised event types.
	ErrUnknownEvent = errors.New("unknown native event")
	// ErrScriptLoad is returned by the script loader when the shim reports a
	// failed injection.
	ErrScriptLoad = errors.New("script load failed")
)

// Native is the vendor decoder API driven through the shim. It implements
// native.Player; calls are queued as commands and decoder callbacks arrive
// through Dispatch.
type Native struct {
	outbox *Outbox
	logger zerolog.Logger

	mu        sync.Mutex
	available bool
	listener  native.Listener
	onSuccess func()
	onError   func(error)
	scripts   map[string]chan error
	order     []string
}

var _ native.Player = (*Native)(nil)

// NewNative returns a decoder proxy that is unavailable until the shim
// reports the API.
func NewNative(outbox *Outbox) *Native {
	return &Native{
		outbox:  outbox,
		logger:  log.WithComponent("remote"),
		scripts: make(map[string]chan error),
	}
}

// Scope exposes the decoder to native discovery once the shim has reported
// it available.
func (n *Native) Scope() native.Scope {
	return native.ScopeFunc(func() (native.Player, bool) {
		n.mu.Lock()
		defer n.mu.Unlock()
		return n, n.available
	})
}

// Available reports whether the shim has reported the decoder API.
func (n *Native) Available() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.available
}

// SetAvailable records whether the page exposes the decoder API.
func (n *Native) SetAvailable(ok bool) {
	n.mu.Lock()
	n.available = ok
	n.mu.Unlock()
}

func (n *Native) push(cmd Command) error {
	n.outbox.Push(cmd)
	return nil
}

func (n *Native) Open(url string) error {
	return n.push(Command{Type: CmdNativeOpen, Resource: url})
}

func (n *Native) SetDisplayRect(x, y, w, h int) error {
	return n.push(Command{Type: CmdNativeDisplayRect, Rect: &Rect{X: x, Y: y, Width: w, Height: h}})
}

func (n *Native) SetDisplayMethod(mode string) error {
	return n.push(Command{Type: CmdNativeDisplayMethod, Mode: mode})
}

func (n *Native) SetListener(l native.Listener) error {
	n.mu.Lock()
	n.listener = l
	n.mu.Unlock()
	return nil
}

// PrepareAsync queues the prepare call; the outcome arrives as a prepared or
// prepare_error event.
func (n *Native) PrepareAsync(onSuccess func(), onError func(error)) error {
	n.mu.Lock()
	n.onSuccess, n.onError = onSuccess, onError
	n.mu.Unlock()
	return n.push(Command{Type: CmdNativePrepare})
}

func (n *Native) Play() error  { return n.push(Command{Type: CmdNativePlay}) }
func (n *Native) Pause() error { return n.push(Command{Type: CmdNativePause}) }
func (n *Native) Stop() error  { return n.push(Command{Type: CmdNativeStop}) }

// Close queues the close call and drops any outstanding prepare callbacks.
func (n *Native) Close() error {
	n.mu.Lock()
	n.onSuccess, n.onError = nil, nil
	n.mu.Unlock()
	return n.push(Command{Type: CmdNativeClose})
}

func (n *Native) SeekTo(positionMs int64) error {
	return n.push(Command{Type: CmdNativeSeek, PositionMs: positionMs})
}

// Dispatch routes a shim report to the prepare callbacks, the decoder
// listener or a waiting script load. Callbacks run on the caller's goroutine.
func (n *Native) Dispatch(ev NativeEvent) error {
	switch ev.Type {
	case EvAvailable:
		n.SetAvailable(true)
	case EvPrepared:
		if fn, _ := n.takePrepare(); fn != nil {
			fn()
		}
	case EvPrepareError:
		if _, fn := n.takePrepare(); fn != nil {
			fn(errors.New(ev.Payload))
		}
	case EvBufferingStart:
		if l := n.currentListener(); l.OnBufferingStart != nil {
			l.OnBufferingStart()
		}
	case EvBufferingComplete:
		if l := n.currentListener(); l.OnBufferingComplete != nil {
			l.OnBufferingComplete()
		}
	case EvEnded:
		if l := n.currentListener(); l.OnStreamCompleted != nil {
			l.OnStreamCompleted()
		}
	case EvTimeUpdate:
		if l := n.currentListener(); l.OnCurrentPlayTime != nil {
			l.OnCurrentPlayTime(ev.PositionMs)
		}
	case EvError:
		if l := n.currentListener(); l.OnError != nil {
			l.OnError(ev.Payload)
		}
	case EvScriptLoaded:
		n.resolveScript(ev.CommandID, nil)
	case EvScriptError:
		n.resolveScript(ev.CommandID, fmt.Errorf("%w: %s", ErrScriptLoad, ev.Payload))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

func (n *Native) takePrepare() (func(), func(error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, e := n.onSuccess, n.onError
	n.onSuccess, n.onError = nil, nil
	return s, e
}

func (n *Native) currentListener() native.Listener {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.listener
}

// Loader returns the script loader used by native discovery.
func (n *Native) Loader() native.Loader {
	return native.LoaderFunc(n.loadScript)
}

// loadScript asks the shim to inject the script at location and waits for
// its report. A successful load also marks the API available, so the
// discoverer's re-check finds it.
func (n *Native) loadScript(ctx context.Context, location string) error {
	cmd := Command{Type: CmdInjectScript, Resource: location}
	done := make(chan error, 1)

	n.mu.Lock()
	cmd = n.outbox.Push(cmd)
	n.scripts[cmd.ID] = done
	n.order = append(n.order, cmd.ID)
	n.mu.Unlock()

	defer n.forgetScript(cmd.ID)

	select {
	case err := <-done:
		if err == nil {
			n.SetAvailable(true)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolveScript completes the load matching id, or the oldest outstanding
// load when the shim sent no id.
func (n *Native) resolveScript(id string, err error) {
	n.mu.Lock()
	if id == "" && len(n.order) > 0 {
		id = n.order[0]
	}
	done, ok := n.scripts[id]
	n.mu.Unlock()
	if !ok {
		n.logger.Debug().Str("command_id", id).Msg("script result without a waiting load")
		return
	}
	select {
	case done <- err:
	default:
	}
}

func (n *Native) forgetScript(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.scripts, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}
