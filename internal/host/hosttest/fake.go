// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package hosttest provides in-memory host page collaborators for tests.
package hosttest

import (
	"sync"

	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/stream"
)

// Video is a scriptable host.Video.
type Video struct {
	mu       sync.Mutex
	current  float64
	paused   bool
	ended    bool
	rate     float64
	muted    bool
	hidden   bool
	stats    host.FrameStats
	hasStats bool

	Seeks  []float64
	Plays  int
	Pauses int
}

var _ host.Video = (*Video)(nil)

// NewVideo returns a playing element at position pos and rate.
func NewVideo(pos, rate float64) *Video {
	return &Video{current: pos, rate: rate}
}

func (v *Video) CurrentTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *Video) SetCurrentTime(s float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = s
	v.Seeks = append(v.Seeks, s)
}

func (v *Video) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

func (v *Video) Ended() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ended
}

func (v *Video) PlaybackRate() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rate
}

func (v *Video) Muted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

func (v *Video) SetMuted(m bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = m
}

func (v *Video) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = false
	v.Plays++
}

func (v *Video) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = true
	v.Pauses++
}

func (v *Video) FrameStats() (host.FrameStats, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats, v.hasStats
}

func (v *Video) SetHidden(h bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hidden = h
}

// Hidden reports the visibility override.
func (v *Video) Hidden() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidden
}

// SetPosition moves the element without recording a seek.
func (v *Video) SetPosition(s float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = s
}

// SetRate changes the playback rate.
func (v *Video) SetRate(r float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rate = r
}

// SetPaused flips the paused flag without counting a call.
func (v *Video) SetPaused(p bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = p
}

// SetFrameStats publishes cumulative frame counters.
func (v *Video) SetFrameStats(dropped, total uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = host.FrameStats{Dropped: dropped, Total: total}
	v.hasStats = true
}

// SeekCount returns the number of recorded seeks.
func (v *Video) SeekCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.Seeks)
}

// PlayCount returns the number of Play calls.
func (v *Video) PlayCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Plays
}

// Player is a scriptable host.Player.
type Player struct {
	mu          sync.Mutex
	id          string
	transparent bool
}

var _ host.Player = (*Player)(nil)

func (p *Player) VideoID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id, p.id != ""
}

func (p *Player) SetTransparent(t bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transparent = t
}

// SetVideoID sets the accessor's answer.
func (p *Player) SetVideoID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.id = id
}

// Transparent reports the background override.
func (p *Player) Transparent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transparent
}

// Toaster records toasts.
type Toaster struct {
	mu     sync.Mutex
	Titles []string
}

func (t *Toaster) Toast(title, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Titles = append(t.Titles, title)
}

// Count returns the number of toasts shown.
func (t *Toaster) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Titles)
}

// Metadata is a map-backed host.MetadataProvider.
type Metadata struct {
	mu      sync.Mutex
	records map[string]stream.Metadata
}

func (m *Metadata) Lookup(id string) (stream.Metadata, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

// Put stores a record.
func (m *Metadata) Put(r stream.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]stream.Metadata)
	}
	m.records[r.VideoID] = r
}
