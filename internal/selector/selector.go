// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package selector picks one video and one audio stream for native playback.
//
// Selection is deterministic: the same descriptors and preferences always
// yield the same pick, and ties keep their input order.
package selector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/stream"
)

// DefaultQualityCeiling applies when the preferred quality is "auto" or unparsable.
const DefaultQualityCeiling = 1080

// DefaultAudioCodec is preferred over higher-bitrate alternatives.
const DefaultAudioCodec = "opus"

var (
	// ErrSelectionFailure classifies every "nothing suitable" outcome.
	ErrSelectionFailure = errors.New("no suitable stream")
	ErrNoVideo          = fmt.Errorf("%w: video", ErrSelectionFailure)
	ErrNoAudio          = fmt.Errorf("%w: audio", ErrSelectionFailure)
)

// Preferences are the user/config knobs that shape selection.
type Preferences struct {
	// PreferredQuality is a height ("720", "1080p") or "auto".
	PreferredQuality string

	DisableAV1  bool
	DisableVP9  bool
	DisableAVC  bool
	DisableVP8  bool
	DisableHEVC bool

	// DisableHighFPS excludes video above 30 fps.
	DisableHighFPS bool

	// PreferredAudioCodec names the audio codec family to prefer (default opus).
	PreferredAudioCodec string
}

// QualityCeiling parses PreferredQuality into a height ceiling.
func (p Preferences) QualityCeiling() int {
	q := strings.ToLower(strings.TrimSpace(p.PreferredQuality))
	q = strings.TrimSuffix(q, "p")
	if q == "" || q == "auto" {
		return DefaultQualityCeiling
	}
	h, err := strconv.Atoi(q)
	if err != nil || h <= 0 {
		return DefaultQualityCeiling
	}
	return h
}

func (p Preferences) excluded(f stream.CodecFamily) bool {
	switch f {
	case stream.FamilyAV1:
		return p.DisableAV1
	case stream.FamilyVP9:
		return p.DisableVP9
	case stream.FamilyAVC:
		return p.DisableAVC
	case stream.FamilyVP8:
		return p.DisableVP8
	case stream.FamilyHEVC:
		return p.DisableHEVC
	default:
		return false
	}
}

func (p Preferences) audioFamily() stream.CodecFamily {
	if f := stream.FamilyOf(p.PreferredAudioCodec); f != stream.FamilyUnknown {
		return f
	}
	return stream.FamilyOpus
}

// SelectVideo returns the best video descriptor for prefs.
func SelectVideo(descs []stream.Descriptor, prefs Preferences) (stream.Descriptor, bool) {
	candidates := make([]stream.Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.Kind() != stream.KindVideo || !d.Selectable() {
			continue
		}
		if prefs.excluded(d.Family()) {
			continue
		}
		if prefs.DisableHighFPS && d.FPS > 30 {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return stream.Descriptor{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Height != candidates[j].Height {
			return candidates[i].Height > candidates[j].Height
		}
		return candidates[i].FPS > candidates[j].FPS
	})

	ceiling := prefs.QualityCeiling()
	for _, d := range candidates {
		if d.Height <= ceiling {
			return d, true
		}
	}
	return candidates[0], true
}

// SelectAudio returns the best audio descriptor for prefs.
func SelectAudio(descs []stream.Descriptor, prefs Preferences) (stream.Descriptor, bool) {
	candidates := make([]stream.Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.Kind() == stream.KindAudio && d.Selectable() {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return stream.Descriptor{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Bitrate > candidates[j].Bitrate
	})

	want := prefs.audioFamily()
	for _, d := range candidates {
		if d.Family() == want {
			return d, true
		}
	}
	return candidates[0], true
}

// Resolve fills in URLs for descriptors that only carry a cipher. Failures are
// logged and leave the descriptor unselectable. The input slice is not modified.
func Resolve(ctx context.Context, descs []stream.Descriptor, resolver stream.Resolver) []stream.Descriptor {
	out := make([]stream.Descriptor, len(descs))
	copy(out, descs)
	if resolver == nil {
		return out
	}

	logger := log.WithContext(ctx, log.WithComponent("selector"))
	for i := range out {
		if out[i].URL != "" || out[i].Cipher == "" {
			continue
		}
		resolved, err := resolver.Resolve(ctx, out[i].Cipher)
		if err != nil || resolved == "" {
			logger.Debug().
				Err(err).
				Str(log.FieldEvent, "selector.cipher_unresolved").
				Str(log.FieldMimeType, out[i].MimeType).
				Msg("stream url could not be resolved")
			continue
		}
		out[i].URL = resolved
	}
	return out
}

// Selection is the video/audio pair chosen for one playback attempt.
type Selection struct {
	Video stream.Descriptor
	Audio stream.Descriptor
}

// Pick resolves, then selects video and audio from a metadata record.
func Pick(ctx context.Context, meta stream.Metadata, prefs Preferences, resolver stream.Resolver) (Selection, error) {
	descs := Resolve(ctx, meta.Formats, resolver)

	video, ok := SelectVideo(descs, prefs)
	if !ok {
		metrics.RecordSelection("no_video", "")
		return Selection{}, ErrNoVideo
	}
	audio, ok := SelectAudio(descs, prefs)
	if !ok {
		metrics.RecordSelection("no_audio", string(video.Family()))
		return Selection{}, ErrNoAudio
	}

	metrics.RecordSelection("selected", string(video.Family()))
	logger := log.WithContext(ctx, log.WithComponent("selector"))
	logger.Info().
		Str(log.FieldEvent, "selector.selected").
		Str(log.FieldCodec, video.Codecs()).
		Str(log.FieldResolution, fmt.Sprintf("%dx%d", video.Width, video.Height)).
		Int(log.FieldFPS, video.FPS).
		Str("audio_codec", audio.Codecs()).
		Int64(log.FieldBitrate, audio.Bitrate).
		Msg("streams selected")

	return Selection{Video: video, Audio: audio}, nil
}
