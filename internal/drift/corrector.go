// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package drift keeps the host video element's clock close to the expected
// position while it plays above normal speed.
package drift

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/resilience"
	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/rs/zerolog"
)

// Tier is the correction applied on a tick.
type Tier string

const (
	TierNone       Tier = ""
	TierForce      Tier = "force"
	TierSubtle     Tier = "subtle"
	TierAggressive Tier = "aggressive"
	TierHardJump   Tier = "hard_jump"
	TierReset      Tier = "reset"
)

// ownSeekWindow is how long a seeked notification is attributed to our own
// correction.
const ownSeekWindow = time.Second

// Sample is the outcome of the last evaluated tick.
type Sample struct {
	At        time.Time
	Expected  float64
	Actual    float64
	Drift     float64
	DropRatio float64
	Tier      Tier
	Target    float64
}

// Corrector is the drift control loop for one host video element at a time.
// Video methods are invoked with the corrector's lock held and must not call
// back into it.
type Corrector struct {
	clock   clock.Clock
	breaker *resilience.Breaker
	logger  zerolog.Logger
	retick  chan struct{}

	mu        sync.Mutex
	settings  Settings
	family    stream.CodecFamily
	video     host.Video
	suspended bool

	baseTime time.Time
	basePos  float64
	baseRate float64

	stats     host.FrameStats
	haveStats bool

	lastCorrection  time.Time
	cooldownUntil   time.Time
	ignoreSeekUntil time.Time
	resumeTimer     clock.Timer

	last Sample
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(cr *Corrector) { cr.clock = c }
}

// New returns a detached corrector.
func New(settings Settings, opts ...Option) *Corrector {
	c := &Corrector{
		clock:    clock.Real(),
		logger:   log.WithComponent("drift"),
		retick:   make(chan struct{}, 1),
		settings: settings.normalize(),
	}
	for _, o := range opts {
		o(c)
	}
	c.breaker = resilience.NewBreaker("drift_force_sync",
		c.settings.MaxForceSyncs, c.settings.ForceBackoff, resilience.WithClock(c.clock))
	return c
}

// Attach binds the corrector to v, replacing any previous element.
func (c *Corrector) Attach(v host.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelResumeLocked()
	c.video = v
	c.resetLocked(c.clock.Now())
}

// Detach unbinds the current element.
func (c *Corrector) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelResumeLocked()
	c.video = nil
	c.haveStats = false
}

// Suspend stops corrections until Resume, e.g. while native playback owns
// the visible output.
func (c *Corrector) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return
	}
	c.suspended = true
	c.cancelResumeLocked()
	c.logger.Debug().Str(log.FieldEvent, "drift.suspended").Msg("drift correction suspended")
}

// Resume re-enables corrections with a fresh baseline.
func (c *Corrector) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.suspended {
		return
	}
	c.suspended = false
	c.resetLocked(c.clock.Now())
	c.logger.Debug().Str(log.FieldEvent, "drift.resumed").Msg("drift correction resumed")
}

// Suspended reports whether corrections are suspended.
func (c *Corrector) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// UpdateSettings replaces the configuration snapshot.
func (c *Corrector) UpdateSettings(s Settings) {
	s = s.normalize()
	c.mu.Lock()
	old := c.settings
	c.settings = s
	c.mu.Unlock()

	c.breaker.Configure(s.MaxForceSyncs, s.ForceBackoff)
	if old.TickInterval != s.TickInterval {
		select {
		case c.retick <- struct{}{}:
		default:
		}
	}
}

// SetCodecFamily selects the threshold profile for the active video codec.
func (c *Corrector) SetCodecFamily(f stream.CodecFamily) {
	c.mu.Lock()
	c.family = f
	c.mu.Unlock()
}

// NotifyRateChange resets the baseline after a playback rate change.
func (c *Corrector) NotifyRateChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(c.clock.Now())
}

// NotifySeeked resets the baseline after a seek, unless the seek was our own
// correction.
func (c *Corrector) NotifySeeked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	if now.Before(c.ignoreSeekUntil) {
		c.ignoreSeekUntil = time.Time{}
		return
	}
	c.resetLocked(now)
}

// LastSample returns the most recently evaluated sample.
func (c *Corrector) LastSample() Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Run ticks until ctx is done.
func (c *Corrector) Run(ctx context.Context) error {
	c.mu.Lock()
	interval := c.settings.TickInterval
	c.mu.Unlock()

	ticker := c.clock.NewTicker(interval)
	defer func() { ticker.Stop() }()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.cancelResumeLocked()
			c.mu.Unlock()
			return nil
		case <-c.retick:
			ticker.Stop()
			c.mu.Lock()
			interval = c.settings.TickInterval
			c.mu.Unlock()
			ticker = c.clock.NewTicker(interval)
		case <-ticker.C():
			c.Tick()
		}
	}
}

// Tick evaluates drift once. It reports false when the tick was skipped.
func (c *Corrector) Tick() (Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.settings
	v := c.video
	now := c.clock.Now()
	if v == nil || c.suspended || !s.Enabled {
		return Sample{}, false
	}

	if v.Paused() || v.Ended() {
		c.rebaseLocked(now, v.CurrentTime(), v.PlaybackRate())
		return Sample{}, false
	}
	rate := v.PlaybackRate()
	if rate <= s.SpeedThreshold || rate != c.baseRate {
		c.rebaseLocked(now, v.CurrentTime(), rate)
		return Sample{}, false
	}
	if now.Before(c.cooldownUntil) || (!c.lastCorrection.IsZero() && now.Sub(c.lastCorrection) < s.Cooldown) {
		return Sample{}, false
	}
	if !c.breaker.Allow() {
		return Sample{}, false
	}

	actual := v.CurrentTime()
	dropRatio := c.sampleDropsLocked(v)
	sample := Sample{At: now, Actual: actual, DropRatio: dropRatio}

	if dropRatio > s.CriticalDropRatio {
		sample.Tier = TierForce
		sample.Target = actual + s.ForceNudge
		c.seekLocked(v, now, sample.Target)
		metrics.RecordDriftCorrection(string(TierForce), s.ForceNudge)
		c.logCorrection(sample)
		if c.breaker.RecordFailure() {
			metrics.RecordDriftBackoff()
			c.logger.Warn().
				Str(log.FieldEvent, "drift.force_backoff").
				Dur("backoff", s.ForceBackoff).
				Msg("repeated forced syncs, backing off")
		}
		c.last = sample
		return sample, true
	}

	sample.Expected = c.basePos + now.Sub(c.baseTime).Seconds()*rate
	sample.Drift = sample.Expected - actual
	c.breaker.Decay()

	hard, aggressive := s.HardJumpThreshold, s.AggressiveThreshold
	if s.widened(c.family) {
		hard *= s.WidenFactor
		aggressive *= s.WidenFactor
	}

	abs := math.Abs(sample.Drift)
	switch {
	case abs > s.ResetThreshold:
		sample.Tier = TierReset
		sample.Target = actual + s.ResetNudge
		c.resetPlaybackLocked(v, now, sample.Target)
	case abs > hard:
		sample.Tier = TierHardJump
		sample.Target = sample.Expected
		c.seekLocked(v, now, sample.Target)
	case abs > aggressive || (abs > s.WarningThreshold && dropRatio > s.StressDropRatio):
		sample.Tier = TierAggressive
		sample.Target = actual + sample.Drift*s.AggressiveFraction
		c.seekLocked(v, now, sample.Target)
	case abs > s.WarningThreshold:
		step := sample.Drift * s.SubtleFraction
		if math.Abs(step) > s.SubtleCap {
			step = math.Copysign(s.SubtleCap, step)
		}
		sample.Tier = TierSubtle
		sample.Target = actual + step
		c.seekLocked(v, now, sample.Target)
	}

	if sample.Tier != TierNone {
		metrics.RecordDriftCorrection(string(sample.Tier), sample.Drift)
		c.logCorrection(sample)
	}
	c.last = sample
	return sample, true
}

// sampleDropsLocked returns the dropped/total frame ratio since the previous
// sample, or zero when it cannot be computed.
func (c *Corrector) sampleDropsLocked(v host.Video) float64 {
	cur, ok := v.FrameStats()
	if !ok {
		c.haveStats = false
		return 0
	}
	prev, had := c.stats, c.haveStats
	c.stats, c.haveStats = cur, true
	if !had || cur.Total <= prev.Total || cur.Dropped < prev.Dropped {
		return 0
	}
	return float64(cur.Dropped-prev.Dropped) / float64(cur.Total-prev.Total)
}

// seekLocked moves the element without touching the baseline, so drift the
// correction left behind is still measured on the next tick.
func (c *Corrector) seekLocked(v host.Video, now time.Time, target float64) {
	if target < 0 {
		target = 0
	}
	v.SetCurrentTime(target)
	c.lastCorrection = now
	c.ignoreSeekUntil = now.Add(ownSeekWindow)
}

// resetPlaybackLocked pauses, nudges and schedules the resume.
func (c *Corrector) resetPlaybackLocked(v host.Video, now time.Time, target float64) {
	v.Pause()
	c.seekLocked(v, now, target)
	c.cooldownUntil = now.Add(c.settings.ResetCooldown)

	c.cancelResumeLocked()
	c.resumeTimer = c.clock.AfterFunc(c.settings.ResetResumeDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.video != v || c.suspended {
			return
		}
		c.resumeTimer = nil
		v.Play()
		c.rebaseLocked(c.clock.Now(), v.CurrentTime(), v.PlaybackRate())
	})
}

func (c *Corrector) cancelResumeLocked() {
	if c.resumeTimer != nil {
		c.resumeTimer.Stop()
		c.resumeTimer = nil
	}
}

// resetLocked starts over: new baseline, fresh frame counters, force counter
// cleared.
func (c *Corrector) resetLocked(now time.Time) {
	c.breaker.Reset()
	c.haveStats = false
	c.lastCorrection = time.Time{}
	c.cooldownUntil = time.Time{}
	if c.video == nil {
		return
	}
	c.rebaseLocked(now, c.video.CurrentTime(), c.video.PlaybackRate())
	if st, ok := c.video.FrameStats(); ok {
		c.stats, c.haveStats = st, true
	}
}

func (c *Corrector) rebaseLocked(now time.Time, pos, rate float64) {
	c.baseTime = now
	c.basePos = pos
	c.baseRate = rate
}

func (c *Corrector) logCorrection(s Sample) {
	c.logger.Debug().
		Str(log.FieldEvent, "drift.correction").
		Str(log.FieldTier, string(s.Tier)).
		Float64(log.FieldDrift, s.Drift).
		Float64(log.FieldDropRatio, s.DropRatio).
		Float64("target_s", s.Target).
		Msg("drift corrected")
}
