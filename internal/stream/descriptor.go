// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package stream models the adaptive stream descriptors published by the host
// page's stream metadata provider.
package stream

import (
	"fmt"
	"strings"
)

// Kind classifies a descriptor by its MIME type prefix.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// ByteRange is an inclusive byte range inside a media resource.
type ByteRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// String renders the range in DASH "start-end" form.
func (r ByteRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Descriptor is one selectable adaptive stream.
type Descriptor struct {
	MimeType          string     `json:"mimeType"`
	Bitrate           int64      `json:"bitrate"`
	Width             int        `json:"width,omitempty"`
	Height            int        `json:"height,omitempty"`
	FPS               int        `json:"fps,omitempty"`
	AudioSamplingRate int        `json:"audioSampleRate,omitempty"`
	URL               string     `json:"url,omitempty"`
	Cipher            string     `json:"signatureCipher,omitempty"`
	InitRange         *ByteRange `json:"initRange,omitempty"`
	IndexRange        *ByteRange `json:"indexRange,omitempty"`
	ApproxDurationMs  int64      `json:"approxDurationMs,omitempty"`
}

// Kind derives video/audio from the MIME type prefix.
func (d Descriptor) Kind() Kind {
	mt := strings.ToLower(strings.TrimSpace(d.MimeType))
	switch {
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	case strings.HasPrefix(mt, "audio/"):
		return KindAudio
	default:
		return KindUnknown
	}
}

// Selectable reports whether the descriptor has a resolvable URL and a known kind.
func (d Descriptor) Selectable() bool {
	return d.URL != "" && d.Kind() != KindUnknown
}

// Container returns the bare MIME type without parameters ("video/mp4").
func (d Descriptor) Container() string {
	mt, _, _ := strings.Cut(d.MimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Codecs returns the value of the codecs parameter ("avc1.64001f").
func (d Descriptor) Codecs() string {
	_, params, ok := strings.Cut(d.MimeType, ";")
	if !ok {
		return ""
	}
	for _, p := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "codecs") {
			continue
		}
		return strings.Trim(strings.TrimSpace(val), `"'`)
	}
	return ""
}

// Family returns the codec family of the descriptor.
func (d Descriptor) Family() CodecFamily {
	return FamilyOf(d.Codecs())
}

// Metadata is the per-video record populated by the stream metadata provider.
type Metadata struct {
	VideoID string       `json:"videoId"`
	Formats []Descriptor `json:"formats"`
	// ManifestURL is a ready server-provided streaming resource, when present.
	ManifestURL string `json:"manifestUrl,omitempty"`
}

// Ready reports whether the record carries anything playable.
func (m Metadata) Ready() bool {
	return m.ManifestURL != "" || len(m.Formats) > 0
}
