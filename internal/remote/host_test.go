// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock/clocktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, o *Outbox) []Command {
	t.Helper()
	if o.Len() == 0 {
		return nil
	}
	cmds, err := o.Next(context.Background())
	require.NoError(t, err)
	return cmds
}

func TestVideo_ProjectsPositionWhilePlaying(t *testing.T) {
	fc := clocktest.New(time.Unix(0, 0))
	v := NewVideo(NewOutbox(8), fc)
	v.Update(VideoSnapshot{CurrentTime: 10, PlaybackRate: 2})

	fc.Advance(500 * time.Millisecond)
	assert.InDelta(t, 11.0, v.CurrentTime(), 1e-9)

	fc.Advance(10 * time.Second)
	assert.InDelta(t, 14.0, v.CurrentTime(), 1e-9, "projection is capped")

	v.Update(VideoSnapshot{CurrentTime: 12, Paused: true, PlaybackRate: 2})
	fc.Advance(time.Second)
	assert.InDelta(t, 12.0, v.CurrentTime(), 1e-9)
}

func TestVideo_WritesQueueCommands(t *testing.T) {
	fc := clocktest.New(time.Unix(0, 0))
	o := NewOutbox(16)
	v := NewVideo(o, fc)
	v.Update(VideoSnapshot{CurrentTime: 5, Paused: true, PlaybackRate: 1})

	v.SetMuted(true)
	v.SetHidden(true)
	v.SetCurrentTime(7.5)
	v.Play()
	v.Pause()

	assert.True(t, v.Muted())
	assert.True(t, v.Hidden())
	assert.True(t, v.Paused())
	assert.InDelta(t, 7.5, v.CurrentTime(), 1e-9)

	cmds := drain(t, o)
	assert.Equal(t, []CommandType{CmdVideoMute, CmdVideoHide, CmdVideoSeek, CmdVideoPlay, CmdVideoPause}, types(cmds))
	require.NotNil(t, cmds[0].Flag)
	assert.True(t, *cmds[0].Flag)
	assert.Equal(t, 7.5, cmds[2].Seconds)
}

func TestVideo_FrameStats(t *testing.T) {
	v := NewVideo(NewOutbox(1), clocktest.New(time.Unix(0, 0)))
	_, ok := v.FrameStats()
	assert.False(t, ok)

	v.Update(VideoSnapshot{DroppedFrames: 3, TotalFrames: 120})
	st, ok := v.FrameStats()
	require.True(t, ok)
	assert.Equal(t, uint64(3), st.Dropped)
	assert.Equal(t, uint64(120), st.Total)
	assert.Equal(t, 1.0, v.PlaybackRate(), "zero rate normalised")
}

func TestPlayer(t *testing.T) {
	o := NewOutbox(4)
	p := NewPlayer(o)

	_, ok := p.VideoID()
	assert.False(t, ok)
	p.SetVideoID("abc123")
	id, ok := p.VideoID()
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)

	p.SetTransparent(true)
	assert.True(t, p.Transparent())
	assert.Equal(t, []CommandType{CmdPlayerTransparent}, types(drain(t, o)))
}
