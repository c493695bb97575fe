// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/host"
)

// maxExtrapolation caps how far a stale snapshot's position is projected.
const maxExtrapolation = 2 * time.Second

// VideoSnapshot is the state of the host <video> element as reported by the
// shim. Frame counters are zero when the element exposes none.
type VideoSnapshot struct {
	CurrentTime   float64 `json:"currentTime"`
	Paused        bool    `json:"paused"`
	Ended         bool    `json:"ended"`
	PlaybackRate  float64 `json:"playbackRate"`
	Muted         bool    `json:"muted"`
	DroppedFrames uint64  `json:"droppedFrames"`
	TotalFrames   uint64  `json:"totalFrames"`
	VideoID       string  `json:"videoId,omitempty"`
}

// Video is a host.Video backed by shim snapshots. Reads project the last
// reported position forward while playing; writes update the snapshot and
// queue a command.
type Video struct {
	outbox *Outbox
	clock  clock.Clock

	mu      sync.Mutex
	snap    VideoSnapshot
	at      time.Time
	hidden  bool
	hasSnap bool
}

var _ host.Video = (*Video)(nil)

// NewVideo returns a paused element at position zero.
func NewVideo(outbox *Outbox, c clock.Clock) *Video {
	if c == nil {
		c = clock.Real()
	}
	return &Video{
		outbox: outbox,
		clock:  c,
		snap:   VideoSnapshot{Paused: true, PlaybackRate: 1},
		at:     c.Now(),
	}
}

// Update replaces the snapshot with one reported by the shim.
func (v *Video) Update(s VideoSnapshot) {
	if s.PlaybackRate <= 0 {
		s.PlaybackRate = 1
	}
	v.mu.Lock()
	v.snap = s
	v.at = v.clock.Now()
	v.hasSnap = true
	v.mu.Unlock()
}

// Snapshot returns the last reported state.
func (v *Video) Snapshot() (VideoSnapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap, v.hasSnap
}

func (v *Video) CurrentTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	pos := v.snap.CurrentTime
	if v.snap.Paused || v.snap.Ended {
		return pos
	}
	elapsed := v.clock.Now().Sub(v.at)
	if elapsed > maxExtrapolation {
		elapsed = maxExtrapolation
	}
	if elapsed > 0 {
		pos += elapsed.Seconds() * v.snap.PlaybackRate
	}
	return pos
}

func (v *Video) SetCurrentTime(seconds float64) {
	v.mu.Lock()
	v.snap.CurrentTime = seconds
	v.snap.Ended = false
	v.at = v.clock.Now()
	v.mu.Unlock()
	v.outbox.Push(Command{Type: CmdVideoSeek, Seconds: seconds})
}

func (v *Video) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.Paused
}

func (v *Video) Ended() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.Ended
}

func (v *Video) PlaybackRate() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.PlaybackRate
}

func (v *Video) Muted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.Muted
}

func (v *Video) SetMuted(muted bool) {
	v.mu.Lock()
	v.snap.Muted = muted
	v.mu.Unlock()
	v.outbox.Push(Command{Type: CmdVideoMute, Flag: boolPtr(muted)})
}

func (v *Video) Play() {
	v.mu.Lock()
	v.rebaseLocked()
	v.snap.Paused = false
	v.mu.Unlock()
	v.outbox.Push(Command{Type: CmdVideoPlay})
}

func (v *Video) Pause() {
	v.mu.Lock()
	v.rebaseLocked()
	v.snap.Paused = true
	v.mu.Unlock()
	v.outbox.Push(Command{Type: CmdVideoPause})
}

func (v *Video) FrameStats() (host.FrameStats, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snap.TotalFrames == 0 {
		return host.FrameStats{}, false
	}
	return host.FrameStats{Dropped: v.snap.DroppedFrames, Total: v.snap.TotalFrames}, true
}

func (v *Video) SetHidden(hidden bool) {
	v.mu.Lock()
	v.hidden = hidden
	v.mu.Unlock()
	v.outbox.Push(Command{Type: CmdVideoHide, Flag: boolPtr(hidden)})
}

// Hidden reports the visibility override last requested.
func (v *Video) Hidden() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidden
}

// rebaseLocked folds the projected position into the snapshot before the
// paused flag changes.
func (v *Video) rebaseLocked() {
	if !v.snap.Paused && !v.snap.Ended {
		now := v.clock.Now()
		elapsed := now.Sub(v.at)
		if elapsed > maxExtrapolation {
			elapsed = maxExtrapolation
		}
		if elapsed > 0 {
			v.snap.CurrentTime += elapsed.Seconds() * v.snap.PlaybackRate
		}
		v.at = now
	}
}

// Player is a host.Player whose identity accessor is fed by the shim.
type Player struct {
	outbox *Outbox

	mu          sync.Mutex
	videoID     string
	transparent bool
}

var _ host.Player = (*Player)(nil)

// NewPlayer returns a player container without an identity.
func NewPlayer(outbox *Outbox) *Player {
	return &Player{outbox: outbox}
}

// SetVideoID records the identity reported by the page's player accessor.
func (p *Player) SetVideoID(id string) {
	p.mu.Lock()
	p.videoID = id
	p.mu.Unlock()
}

func (p *Player) VideoID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID, p.videoID != ""
}

func (p *Player) SetTransparent(transparent bool) {
	p.mu.Lock()
	p.transparent = transparent
	p.mu.Unlock()
	p.outbox.Push(Command{Type: CmdPlayerTransparent, Flag: boolPtr(transparent)})
}

// Transparent reports the background override last requested.
func (p *Player) Transparent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transparent
}
