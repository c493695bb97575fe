// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package manifest synthesizes minimal static DASH manifests for the native
// decoder and serves them under ephemeral, process-local locators.
package manifest

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/zencoder/go-dash/v3/mpd"
)

// ErrManifestFailure is returned when no manifest could be produced.
var ErrManifestFailure = errors.New("manifest synthesis failed")

const (
	minBufferTime = "PT1.500S"
	videoSetID    = "0"
	audioSetID    = "1"
)

// Synthesize renders a static single-period MPD with one video and one audio
// representation, each addressed through SegmentBase byte ranges. It returns
// false when either descriptor is absent or the document cannot be rendered.
func Synthesize(video, audio *stream.Descriptor) (string, bool) {
	doc, err := build(video, audio)
	if err != nil {
		return "", false
	}
	return doc, true
}

func build(video, audio *stream.Descriptor) (string, error) {
	if video == nil || audio == nil {
		return "", fmt.Errorf("%w: missing video or audio stream", ErrManifestFailure)
	}
	if video.URL == "" || audio.URL == "" {
		return "", fmt.Errorf("%w: stream without resolved url", ErrManifestFailure)
	}

	m := mpd.NewMPD(mpd.DASH_PROFILE_ONDEMAND, presentationDuration(video, audio), minBufferTime)

	vset, err := m.AddNewAdaptationSetVideoWithID(videoSetID, video.Container(), "progressive", true, 1)
	if err != nil {
		return "", fmt.Errorf("%w: video adaptation set: %v", ErrManifestFailure, err)
	}
	vrep, err := vset.AddNewRepresentationVideo(
		video.Bitrate,
		video.Codecs(),
		"video",
		strconv.Itoa(video.FPS),
		int64(video.Width),
		int64(video.Height),
	)
	if err != nil {
		return "", fmt.Errorf("%w: video representation: %v", ErrManifestFailure, err)
	}
	if err := attachMedia(vrep, video); err != nil {
		return "", err
	}

	aset, err := m.AddNewAdaptationSetAudioWithID(audioSetID, audio.Container(), true, 1, "und")
	if err != nil {
		return "", fmt.Errorf("%w: audio adaptation set: %v", ErrManifestFailure, err)
	}
	arep, err := aset.AddNewRepresentationAudio(
		int64(audio.AudioSamplingRate),
		audio.Bitrate,
		audio.Codecs(),
		"audio",
	)
	if err != nil {
		return "", fmt.Errorf("%w: audio representation: %v", ErrManifestFailure, err)
	}
	if err := attachMedia(arep, audio); err != nil {
		return "", err
	}

	out, err := m.WriteToString()
	if err != nil {
		return "", fmt.Errorf("%w: render: %v", ErrManifestFailure, err)
	}
	return out, nil
}

// attachMedia sets the direct URL and the SegmentBase ranges. The XML encoder
// escapes the URL for embedding.
func attachMedia(rep *mpd.Representation, d *stream.Descriptor) error {
	if err := rep.SetNewBaseURL(d.URL); err != nil {
		return fmt.Errorf("%w: base url: %v", ErrManifestFailure, err)
	}
	if _, err := rep.AddNewSegmentBase(rangeOrZero(d.IndexRange), rangeOrZero(d.InitRange)); err != nil {
		return fmt.Errorf("%w: segment base: %v", ErrManifestFailure, err)
	}
	return nil
}

func rangeOrZero(r *stream.ByteRange) string {
	if r == nil {
		return stream.ByteRange{}.String()
	}
	return r.String()
}

// presentationDuration uses the longer of the two approximate durations.
func presentationDuration(video, audio *stream.Descriptor) string {
	ms := video.ApproxDurationMs
	if audio.ApproxDurationMs > ms {
		ms = audio.ApproxDurationMs
	}
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("PT%d.%03dS", ms/1000, ms%1000)
}
