// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package stream

import "strings"

// CodecFamily groups codec strings that share a decoder path.
type CodecFamily string

const (
	FamilyUnknown CodecFamily = ""
	FamilyAV1     CodecFamily = "av1"
	FamilyVP9     CodecFamily = "vp9"
	FamilyVP8     CodecFamily = "vp8"
	FamilyAVC     CodecFamily = "avc"
	FamilyHEVC    CodecFamily = "hevc"
	FamilyOpus    CodecFamily = "opus"
	FamilyAAC     CodecFamily = "aac"
)

// FamilyOf maps an RFC 6381 codec string to its family. Only the first codec
// of a comma separated list is considered.
func FamilyOf(codecs string) CodecFamily {
	c := strings.ToLower(strings.TrimSpace(codecs))
	if first, _, ok := strings.Cut(c, ","); ok {
		c = strings.TrimSpace(first)
	}
	switch {
	case c == "":
		return FamilyUnknown
	case strings.HasPrefix(c, "av01"), c == "av1":
		return FamilyAV1
	case strings.HasPrefix(c, "vp09"), strings.HasPrefix(c, "vp9"):
		return FamilyVP9
	case strings.HasPrefix(c, "vp08"), strings.HasPrefix(c, "vp8"):
		return FamilyVP8
	case strings.HasPrefix(c, "avc1"), strings.HasPrefix(c, "avc3"):
		return FamilyAVC
	case strings.HasPrefix(c, "hev1"), strings.HasPrefix(c, "hvc1"):
		return FamilyHEVC
	case c == "opus":
		return FamilyOpus
	case strings.HasPrefix(c, "mp4a"):
		return FamilyAAC
	default:
		return FamilyUnknown
	}
}
