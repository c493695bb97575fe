// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by playback spans.
const (
	VideoIDKey      = "playback.video_id"
	SourceKey       = "playback.source"
	VideoCodecKey   = "stream.video_codec"
	AudioCodecKey   = "stream.audio_codec"
	VideoHeightKey  = "stream.video_height"
	VideoFPSKey     = "stream.video_fps"
	AudioBitrateKey = "stream.audio_bitrate"
	ResultKey       = "playback.result"
)

// StartAttributes describes a hybrid start attempt. source is "manifest_url"
// when the server supplied a ready stream, "synthesized" otherwise.
func StartAttributes(videoID, source string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if videoID != "" {
		attrs = append(attrs, attribute.String(VideoIDKey, videoID))
	}
	if source != "" {
		attrs = append(attrs, attribute.String(SourceKey, source))
	}
	return attrs
}

// SelectionAttributes describes the chosen streams.
func SelectionAttributes(videoCodec string, height, fps int, audioCodec string, audioBitrate int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(VideoCodecKey, videoCodec),
		attribute.Int(VideoHeightKey, height),
		attribute.Int(VideoFPSKey, fps),
		attribute.String(AudioCodecKey, audioCodec),
		attribute.Int64(AudioBitrateKey, audioBitrate),
	}
}

// ResultAttributes records how a span ended.
func ResultAttributes(result string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ResultKey, result)}
}

// HTTPAttributes describes a bridge request. status is omitted while zero.
func HTTPAttributes(method, route string, status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	}
	if status != 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}
	return attrs
}
