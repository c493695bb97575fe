// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/google/uuid"
)

// CommandType names an action the shim performs on the page.
type CommandType string

const (
	CmdNativeOpen          CommandType = "native_open"
	CmdNativeDisplayRect   CommandType = "native_set_display_rect"
	CmdNativeDisplayMethod CommandType = "native_set_display_method"
	CmdNativePrepare       CommandType = "native_prepare"
	CmdNativePlay          CommandType = "native_play"
	CmdNativePause         CommandType = "native_pause"
	CmdNativeStop          CommandType = "native_stop"
	CmdNativeClose         CommandType = "native_close"
	CmdNativeSeek          CommandType = "native_seek"
	CmdInjectScript        CommandType = "inject_script"
	CmdVideoSeek           CommandType = "video_seek"
	CmdVideoMute           CommandType = "video_mute"
	CmdVideoHide           CommandType = "video_hide"
	CmdVideoPlay           CommandType = "video_play"
	CmdVideoPause          CommandType = "video_pause"
	CmdPlayerTransparent   CommandType = "player_transparent"
	CmdToast               CommandType = "toast"
)

// Rect is a display region in screen pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Command is one queued action. Only the fields relevant to Type are set.
type Command struct {
	ID         string      `json:"id"`
	Type       CommandType `json:"type"`
	Resource   string      `json:"resource,omitempty"`
	PositionMs int64       `json:"positionMs,omitempty"`
	Seconds    float64     `json:"seconds,omitempty"`
	Flag       *bool       `json:"flag,omitempty"`
	Rect       *Rect       `json:"rect,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Title      string      `json:"title,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// DefaultOutboxCapacity bounds the queue while no shim is polling.
const DefaultOutboxCapacity = 256

// Outbox is a bounded FIFO of commands collected by long-polling. When full
// the oldest command is dropped.
type Outbox struct {
	mu       sync.Mutex
	queue    []Command
	capacity int
	wake     chan struct{}
	polling  int
	lastPoll time.Time
}

// NewOutbox returns an empty outbox holding at most capacity commands.
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	return &Outbox{capacity: capacity, wake: make(chan struct{})}
}

// Push assigns cmd an ID, queues it and wakes waiting pollers.
func (o *Outbox) Push(cmd Command) Command {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	o.mu.Lock()
	if len(o.queue) >= o.capacity {
		dropped := o.queue[0]
		o.queue = o.queue[1:]
		metrics.RecordCommandDropped(string(dropped.Type), "full")
		logger := log.WithComponent("remote")
		logger.Warn().
			Str(log.FieldEvent, "remote.command_dropped").
			Str("type", string(dropped.Type)).
			Msg("outbox full, dropped oldest command")
	}
	o.queue = append(o.queue, cmd)
	depth := len(o.queue)
	close(o.wake)
	o.wake = make(chan struct{})
	o.mu.Unlock()

	metrics.RecordCommandQueued(string(cmd.Type), depth)
	return cmd
}

// Next returns every queued command, waiting until at least one is queued
// or ctx ends. On ctx end it returns ctx.Err() and nothing is consumed.
func (o *Outbox) Next(ctx context.Context) ([]Command, error) {
	o.mu.Lock()
	o.polling++
	o.lastPoll = time.Now()
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.polling--
		o.lastPoll = time.Now()
		o.mu.Unlock()
	}()

	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			out := o.queue
			o.queue = nil
			o.mu.Unlock()
			metrics.SetOutboxDepth(0)
			return out, nil
		}
		wake := o.wake
		o.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len reports the number of queued commands.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func boolPtr(b bool) *bool { return &b }

// LastPoll reports when the shim last collected commands. A poll in
// progress counts as now; the zero time means it never polled.
func (o *Outbox) LastPoll() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.polling > 0 {
		return time.Now()
	}
	return o.lastPoll
}
