// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manifest

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type xmlMPD struct {
	XMLName xml.Name    `xml:"MPD"`
	Type    string      `xml:"type,attr"`
	Periods []xmlPeriod `xml:"Period"`
}

type xmlPeriod struct {
	Sets []xmlAdaptationSet `xml:"AdaptationSet"`
}

type xmlAdaptationSet struct {
	MimeType string              `xml:"mimeType,attr"`
	Reps     []xmlRepresentation `xml:"Representation"`
}

type xmlRepresentation struct {
	ID          string `xml:"id,attr"`
	Bandwidth   int64  `xml:"bandwidth,attr"`
	Codecs      string `xml:"codecs,attr"`
	Width       int64  `xml:"width,attr"`
	Height      int64  `xml:"height,attr"`
	BaseURL     string `xml:"BaseURL"`
	SegmentBase struct {
		IndexRange     string `xml:"indexRange,attr"`
		Initialization struct {
			Range string `xml:"range,attr"`
		} `xml:"Initialization"`
	} `xml:"SegmentBase"`
}

func fixtureVideo() *stream.Descriptor {
	return &stream.Descriptor{
		MimeType:   `video/mp4; codecs="avc1.64001f"`,
		Bitrate:    1000000,
		Width:      1280,
		Height:     720,
		FPS:        30,
		URL:        "https://media.example/videoplayback?id=abc&itag=136",
		IndexRange: &stream.ByteRange{Start: 0, End: 999},
		InitRange:  &stream.ByteRange{Start: 0, End: 99},
	}
}

func fixtureAudio() *stream.Descriptor {
	return &stream.Descriptor{
		MimeType:          `audio/webm; codecs="opus"`,
		Bitrate:           128000,
		AudioSamplingRate: 48000,
		URL:               "https://media.example/videoplayback?id=abc&itag=251",
		IndexRange:        &stream.ByteRange{Start: 0, End: 499},
		InitRange:         &stream.ByteRange{Start: 0, End: 49},
	}
}

func parse(t *testing.T, doc string) xmlMPD {
	t.Helper()
	var m xmlMPD
	require.NoError(t, xml.Unmarshal([]byte(doc), &m))
	return m
}

func TestSynthesize_OneVideoOneAudio(t *testing.T) {
	doc, ok := Synthesize(fixtureVideo(), fixtureAudio())
	require.True(t, ok)

	m := parse(t, doc)
	assert.Equal(t, "static", m.Type)
	require.Len(t, m.Periods, 1)
	require.Len(t, m.Periods[0].Sets, 2)

	var video, audio []xmlRepresentation
	for _, set := range m.Periods[0].Sets {
		switch {
		case strings.HasPrefix(set.MimeType, "video/"):
			video = append(video, set.Reps...)
		case strings.HasPrefix(set.MimeType, "audio/"):
			audio = append(audio, set.Reps...)
		}
	}
	require.Len(t, video, 1)
	require.Len(t, audio, 1)

	v := video[0]
	assert.Equal(t, int64(1000000), v.Bandwidth)
	assert.Equal(t, "avc1.64001f", v.Codecs)
	assert.Equal(t, int64(1280), v.Width)
	assert.Equal(t, int64(720), v.Height)
	assert.Equal(t, "0-999", v.SegmentBase.IndexRange)
	assert.Equal(t, "0-99", v.SegmentBase.Initialization.Range)
	assert.Equal(t, "https://media.example/videoplayback?id=abc&itag=136", v.BaseURL)

	a := audio[0]
	assert.Equal(t, int64(128000), a.Bandwidth)
	assert.Equal(t, "opus", a.Codecs)
	assert.Equal(t, "0-499", a.SegmentBase.IndexRange)
	assert.Equal(t, "0-49", a.SegmentBase.Initialization.Range)
}

func TestSynthesize_EscapesURLs(t *testing.T) {
	doc, ok := Synthesize(fixtureVideo(), fixtureAudio())
	require.True(t, ok)
	assert.Contains(t, doc, "id=abc&amp;itag=136")
	assert.NotContains(t, doc, "id=abc&itag=136")
}

func TestSynthesize_MissingRangesDefaultToZero(t *testing.T) {
	v := fixtureVideo()
	v.IndexRange = nil
	v.InitRange = nil

	doc, ok := Synthesize(v, fixtureAudio())
	require.True(t, ok)
	m := parse(t, doc)
	for _, set := range m.Periods[0].Sets {
		if strings.HasPrefix(set.MimeType, "video/") {
			require.Len(t, set.Reps, 1)
			assert.Equal(t, "0-0", set.Reps[0].SegmentBase.IndexRange)
			assert.Equal(t, "0-0", set.Reps[0].SegmentBase.Initialization.Range)
		}
	}
}

func TestSynthesize_MissingInput(t *testing.T) {
	_, ok := Synthesize(nil, fixtureAudio())
	assert.False(t, ok)
	_, ok = Synthesize(fixtureVideo(), nil)
	assert.False(t, ok)
	_, ok = Synthesize(nil, nil)
	assert.False(t, ok)
}

func TestStore_PublishSupersedes(t *testing.T) {
	s := NewStore("http://127.0.0.1:8765/")
	first := s.Publish("<MPD/>")
	assert.Equal(t, "http://127.0.0.1:8765/manifests/"+first.ID+".mpd", first.URL)

	doc, ok := s.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "<MPD/>", doc)

	second := s.Publish("<MPD type=\"static\"/>")
	assert.NotEqual(t, first.ID, second.ID)
	_, ok = s.Get(first.ID)
	assert.False(t, ok)
	_, ok = s.Get(second.ID)
	assert.True(t, ok)

	s.Invalidate()
	_, ok = s.Get(second.ID)
	assert.False(t, ok)
	_, ok = s.Get("")
	assert.False(t, ok)
}

func TestSynthesizer_Build(t *testing.T) {
	s := NewSynthesizer(NewStore("http://host"))

	loc, err := s.Build(*fixtureVideo(), *fixtureAudio())
	require.NoError(t, err)
	assert.NotEmpty(t, loc.ID)

	v := fixtureVideo()
	v.URL = ""
	_, err = s.Build(*v, *fixtureAudio())
	require.ErrorIs(t, err, ErrManifestFailure)
}

func TestHandler(t *testing.T) {
	store := NewStore("http://host")
	loc := store.Publish("<MPD/>")

	r := chi.NewRouter()
	r.Get("/manifests/{file}", Handler(store))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifests/"+loc.ID+".mpd", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "<MPD/>", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifests/"+loc.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	store.Publish("<MPD/>")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifests/"+loc.ID+".mpd", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
