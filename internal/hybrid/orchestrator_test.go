// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hybrid

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock/clocktest"
	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/host/hosttest"
	"github.com/ManuGH/tizenplay/internal/manifest"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/native"
	"github.com/ManuGH/tizenplay/internal/selector"
	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const baseURL = "http://127.0.0.1:8765"

// decoder is a native.Player that prepares synchronously.
type decoder struct {
	mu       sync.Mutex
	calls    []string
	opened   []string
	seeks    []int64
	listener native.Listener
	failOpen bool
	// hold keeps PrepareAsync pending until the binding times out or closes.
	hold bool
}

func (d *decoder) record(c string) {
	d.mu.Lock()
	d.calls = append(d.calls, c)
	d.mu.Unlock()
}

func (d *decoder) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *decoder) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

func (d *decoder) Open(url string) error {
	d.record("open")
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failOpen {
		return errors.New("decoder refused")
	}
	d.opened = append(d.opened, url)
	return nil
}

func (d *decoder) SetDisplayRect(_, _, _, _ int) error { d.record("setDisplayRect"); return nil }
func (d *decoder) SetDisplayMethod(string) error       { d.record("setDisplayMethod"); return nil }

func (d *decoder) SetListener(l native.Listener) error {
	d.mu.Lock()
	d.listener = l
	d.mu.Unlock()
	return nil
}

func (d *decoder) PrepareAsync(onSuccess func(), _ func(error)) error {
	d.record("prepareAsync")
	d.mu.Lock()
	hold := d.hold
	d.mu.Unlock()
	if !hold {
		onSuccess()
	}
	return nil
}

func (d *decoder) Play() error  { d.record("play"); return nil }
func (d *decoder) Pause() error { d.record("pause"); return nil }
func (d *decoder) Stop() error  { d.record("stop"); return nil }
func (d *decoder) Close() error { d.record("close"); return nil }

func (d *decoder) SeekTo(ms int64) error {
	d.record("seekTo")
	d.mu.Lock()
	d.seeks = append(d.seeks, ms)
	d.mu.Unlock()
	return nil
}

func (d *decoder) fail(payload string) {
	d.mu.Lock()
	l := d.listener
	d.mu.Unlock()
	l.OnError(payload)
}

type driftSpy struct {
	mu        sync.Mutex
	suspended bool
	resumes   int
	family    stream.CodecFamily
	onSuspend func()
}

func (s *driftSpy) Suspend() {
	s.mu.Lock()
	s.suspended = true
	hook := s.onSuspend
	s.onSuspend = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (s *driftSpy) Resume() {
	s.mu.Lock()
	s.suspended = false
	s.resumes++
	s.mu.Unlock()
}

func (s *driftSpy) SetCodecFamily(f stream.CodecFamily) {
	s.mu.Lock()
	s.family = f
	s.mu.Unlock()
}

func (s *driftSpy) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}

type harness struct {
	clock   *clocktest.Fake
	dec     *decoder
	binding *native.Binding
	store   *manifest.Store
	video   *hosttest.Video
	player  *hosttest.Player
	toaster *hosttest.Toaster
	meta    *hosttest.Metadata
	drift   *driftSpy
	orch    *Orchestrator
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		clock:   clocktest.New(time.Unix(1700000000, 0)),
		dec:     &decoder{},
		store:   manifest.NewStore(baseURL),
		video:   hosttest.NewVideo(0, 1),
		player:  &hosttest.Player{},
		toaster: &hosttest.Toaster{},
		meta:    &hosttest.Metadata{},
		drift:   &driftSpy{},
	}
	disc := native.NewDiscoverer([]native.Scope{
		native.ScopeFunc(func() (native.Player, bool) { return h.dec, true }),
	}, nil, nil)
	t.Cleanup(disc.Close)

	h.binding = native.NewBinding(disc, native.Options{PrepareTimeout: 5 * time.Second}, native.WithClock(h.clock))
	h.orch = New(Deps{
		Native:    h.binding,
		Manifests: manifest.NewSynthesizer(h.store),
		Drift:     h.drift,
		Video:     h.video,
		Player:    h.player,
		Toaster:   h.toaster,
		Metadata:  h.meta,
		Clock:     h.clock,
	}, opts)
	t.Cleanup(h.orch.Close)
	return h
}

// settle fires the pending settle-delay timer and waits for the attempt.
func (h *harness) settle(t *testing.T, d time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(d)
	h.orch.Wait()
}

func enabled() Options {
	return Options{
		Enabled:              true,
		SettleDelay:          time.Second,
		MetadataPollInterval: 500 * time.Millisecond,
		MetadataPollAttempts: 3,
	}
}

func abc123() stream.Metadata {
	return stream.Metadata{
		VideoID: "abc123",
		Formats: []stream.Descriptor{
			{
				MimeType: `video/mp4; codecs="avc1.640028"`, Bitrate: 4000000,
				Width: 1920, Height: 1080, FPS: 30,
				URL:        "https://media.example/v?id=abc123&itag=137",
				InitRange:  &stream.ByteRange{Start: 0, End: 99},
				IndexRange: &stream.ByteRange{Start: 100, End: 999},
			},
			{
				MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioSamplingRate: 48000,
				URL:        "https://media.example/a?id=abc123&itag=251",
				InitRange:  &stream.ByteRange{Start: 0, End: 49},
				IndexRange: &stream.ByteRange{Start: 50, End: 499},
			},
		},
	}
}

func startLatencyCount(t *testing.T, source, outcome string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, metrics.StartLatencySeconds.WithLabelValues(source, outcome).(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestStart_EndToEnd(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	before := startLatencyCount(t, "synthesized", "ok")

	h.orch.HandleNavigation("https://www.youtube.com/tv#/watch?v=abc123")
	h.settle(t, time.Second)

	opened := h.dec.Opened()
	require.Len(t, opened, 1)
	assert.True(t, strings.HasPrefix(opened[0], baseURL+"/manifests/"), opened[0])
	assert.True(t, strings.HasSuffix(opened[0], ".mpd"))

	id := strings.TrimSuffix(strings.TrimPrefix(opened[0], baseURL+"/manifests/"), ".mpd")
	doc, ok := h.store.Get(id)
	require.True(t, ok)
	assert.Contains(t, doc, `height="1080"`)
	assert.Contains(t, doc, "opus")

	calls := h.dec.Calls()
	assert.Contains(t, calls, "play")
	assert.Less(t, indexOf(calls, "prepareAsync"), indexOf(calls, "play"))
	assert.Equal(t, native.StatePlaying, h.binding.State())

	assert.True(t, h.video.Muted())
	assert.True(t, h.video.Hidden())
	assert.Equal(t, 1, h.video.PlayCount())
	assert.True(t, h.player.Transparent())
	assert.True(t, h.drift.Suspended())
	assert.Equal(t, stream.FamilyAVC, h.drift.family)

	st := h.orch.Status()
	assert.Equal(t, "abc123", st.VideoID)
	assert.True(t, st.NativeActive)
	assert.False(t, st.Starting)
	assert.Zero(t, h.toaster.Count())
	assert.Equal(t, before+1, startLatencyCount(t, "synthesized", "ok"))
}

func TestStart_PrefersServerManifest(t *testing.T) {
	h := newHarness(t, enabled())
	meta := abc123()
	meta.ManifestURL = "https://media.example/abc123.mpd"
	h.meta.Put(meta)

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	assert.Equal(t, []string{"https://media.example/abc123.mpd"}, h.dec.Opened())
	assert.True(t, h.orch.Status().NativeActive)
}

func TestStart_SeeksNativeToHostPosition(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	h.video.SetPosition(42.5)

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	h.dec.mu.Lock()
	defer h.dec.mu.Unlock()
	assert.Equal(t, []int64{42500}, h.dec.seeks)
}

func TestStart_Disabled(t *testing.T) {
	opts := enabled()
	opts.Enabled = false
	h := newHarness(t, opts)
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	assert.Empty(t, h.dec.Calls())
	assert.False(t, h.video.Muted())
	assert.Zero(t, h.toaster.Count())
}

func TestStart_SelectionFailureLeavesHostUntouched(t *testing.T) {
	opts := enabled()
	opts.Selection = selector.Preferences{DisableAVC: true}
	h := newHarness(t, opts)
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	assert.Empty(t, h.dec.Opened())
	assert.False(t, h.video.Muted())
	assert.False(t, h.video.Hidden())
	assert.False(t, h.player.Transparent())
	assert.Zero(t, h.video.PlayCount())
	assert.Equal(t, 1, h.toaster.Count())
	assert.False(t, h.orch.Status().NativeActive)
}

func TestStart_MetadataPollGivesUp(t *testing.T) {
	h := newHarness(t, enabled())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(time.Second)

	// Attempts 1 and 2 wait one interval each; attempt 3 gives up.
	for i := 0; i < 2; i++ {
		require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
		h.clock.Advance(500 * time.Millisecond)
	}
	h.orch.Wait()

	assert.Empty(t, h.dec.Calls())
	assert.Equal(t, 1, h.toaster.Count())
}

func TestStart_MetadataArrivesWhilePolling(t *testing.T) {
	h := newHarness(t, enabled())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(time.Second)

	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.meta.Put(abc123())
	h.clock.Advance(500 * time.Millisecond)
	h.orch.Wait()

	assert.Len(t, h.dec.Opened(), 1)
	assert.True(t, h.orch.Status().NativeActive)
}

func TestStart_NativeFailureRestoresHost(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	h.video.SetMuted(false)
	h.dec.failOpen = true

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	assert.False(t, h.video.Muted())
	assert.False(t, h.video.Hidden())
	assert.False(t, h.player.Transparent())
	assert.Equal(t, 1, h.toaster.Count())
	assert.Equal(t, native.StateNone, h.binding.State())
	assert.False(t, h.drift.Suspended())
}

func TestStart_PrepareTimeoutRestoresHost(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	h.dec.hold = true

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(time.Second)

	require.Eventually(t, func() bool { return h.binding.State() == native.StateIdle }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(5 * time.Second)
	h.orch.Wait()

	assert.False(t, h.video.Hidden())
	assert.Equal(t, native.StateNone, h.binding.State())
	assert.Equal(t, 1, h.toaster.Count())
}

func TestNavigation_SameIdentityIgnored(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)
	h.orch.HandleNavigation("https://www.youtube.com/tv#/watch?v=abc123&t=10")
	h.orch.Wait()

	assert.Len(t, h.dec.Opened(), 1)
	assert.True(t, h.orch.Status().NativeActive)
}

func TestNavigation_RenavigationDuringSettleDelay(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	other := abc123()
	other.VideoID = "def456"
	h.meta.Put(other)

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	require.Eventually(t, func() bool { return h.clock.Pending() > 0 }, time.Second, time.Millisecond)
	h.clock.Advance(500 * time.Millisecond)

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=def456")
	// The abandoned attempt's timer stays armed next to the new one.
	require.Eventually(t, func() bool { return h.clock.Pending() >= 2 }, time.Second, time.Millisecond)
	h.clock.Advance(time.Second)
	h.orch.Wait()

	assert.Len(t, h.dec.Opened(), 1)
	assert.Equal(t, "def456", h.orch.Status().VideoID)
	assert.True(t, h.orch.Status().NativeActive)
}

func TestNavigation_LeavingWatchTearsDown(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)
	require.True(t, h.orch.Status().NativeActive)

	h.orch.HandleNavigation("https://www.youtube.com/tv#/browse")

	assert.False(t, h.orch.Status().NativeActive)
	assert.Empty(t, h.orch.Status().VideoID)
	assert.Equal(t, native.StateNone, h.binding.State())
	assert.False(t, h.video.Hidden())
	assert.False(t, h.player.Transparent())
	assert.False(t, h.drift.Suspended())
	assert.Equal(t, 1, h.drift.resumes)

	id := strings.TrimSuffix(strings.TrimPrefix(h.dec.Opened()[0], baseURL+"/manifests/"), ".mpd")
	_, ok := h.store.Get(id)
	assert.False(t, ok, "teardown invalidates the manifest locator")
}

func TestNavigation_AccessorIdentityWins(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())
	h.player.SetVideoID("abc123")

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=zzz")
	h.settle(t, time.Second)

	assert.Equal(t, "abc123", h.orch.Status().VideoID)
	assert.Len(t, h.dec.Opened(), 1)
}

func TestHostState_Mirroring(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	h.orch.HandleHostState(host.StatePaused)
	assert.Empty(t, h.dec.Calls(), "mirroring is off while native is inactive")

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)

	h.orch.HandleHostState(host.StatePaused)
	assert.Equal(t, native.StatePaused, h.binding.State())
	h.orch.HandleHostState(host.StatePlaying)
	assert.Equal(t, native.StatePlaying, h.binding.State())
	h.orch.HandleHostState(host.StateBuffering)
	assert.Equal(t, native.StatePlaying, h.binding.State())

	h.orch.HandleHostState(host.StateEnded)
	assert.False(t, h.orch.Status().NativeActive)
	assert.Equal(t, native.StateNone, h.binding.State())
}

func TestStart_HostEndedDuringHandoffResumesDrift(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	ended := make(chan struct{})
	h.drift.onSuspend = func() {
		go func() {
			defer close(ended)
			h.orch.HandleHostState(host.StateEnded)
		}()
		// Give the host signal every chance to overtake the handoff.
		time.Sleep(20 * time.Millisecond)
	}

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)
	<-ended

	assert.False(t, h.orch.Status().NativeActive)
	assert.False(t, h.drift.Suspended())
	assert.Equal(t, 1, h.drift.resumes)
	assert.Equal(t, native.StateNone, h.binding.State())
}

func TestNativeError_FallsBackToHost(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)
	require.True(t, h.orch.Status().NativeActive)

	h.dec.fail("PLAYER_ERROR_CONNECTION_FAILED")

	assert.False(t, h.orch.Status().NativeActive)
	assert.False(t, h.video.Hidden())
	assert.Equal(t, native.StateNone, h.binding.State())
	assert.Equal(t, 1, h.toaster.Count())
}

func TestUpdateConfig_DisableTearsDown(t *testing.T) {
	h := newHarness(t, enabled())
	h.meta.Put(abc123())

	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	h.settle(t, time.Second)
	require.True(t, h.orch.Status().NativeActive)

	opts := enabled()
	opts.Enabled = false
	h.orch.UpdateConfig(opts)

	assert.False(t, h.orch.Status().NativeActive)
	assert.False(t, h.orch.Status().Enabled)
}

func TestClose_CancelsPendingStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, enabled())
	h.orch.HandleNavigation("https://www.youtube.com/watch?v=abc123")
	require.True(t, h.orch.Status().Starting)

	h.orch.Close()
	assert.False(t, h.orch.Status().Starting)
	assert.Empty(t, h.dec.Calls())
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "started"},
		{ErrDisabled, "disabled"},
		{ErrSuperseded, "superseded"},
		{native.ErrClosed, "superseded"},
		{context.Canceled, "canceled"},
		{ErrMetadataUnavailable, "no_metadata"},
		{selector.ErrNoAudio, "selection_failed"},
		{manifest.ErrManifestFailure, "manifest_failed"},
		{native.ErrUnsupported, "unsupported"},
		{native.ErrPrepareTimeout, "prepare_failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, result(tt.err), "%v", tt.err)
	}
}

func TestStartOutcome(t *testing.T) {
	assert.Equal(t, "ok", startOutcome(nil))
	assert.Equal(t, "aborted", startOutcome(ErrSuperseded))
	assert.Equal(t, "aborted", startOutcome(context.DeadlineExceeded))
	assert.Equal(t, "failed", startOutcome(ErrMetadataUnavailable))
	assert.Equal(t, "failed", startOutcome(native.ErrPrepareTimeout))
}

func indexOf(calls []string, c string) int {
	for i, v := range calls {
		if v == c {
			return i
		}
	}
	return -1
}
