// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manifest

import (
	"strings"
	"sync"

	"github.com/ManuGH/tizenplay/internal/log"
	"github.com/ManuGH/tizenplay/internal/metrics"
	"github.com/ManuGH/tizenplay/internal/stream"
	"github.com/google/uuid"
)

// Locator references a published manifest.
type Locator struct {
	ID  string
	URL string
}

// Store holds at most one live manifest. Publishing a new document supersedes
// the previous one; its locator stops resolving.
type Store struct {
	mu      sync.RWMutex
	baseURL string
	id      string
	doc     string
	newID   func() string
}

// NewStore creates a store whose locators are rooted at baseURL
// (e.g. "http://127.0.0.1:8765").
func NewStore(baseURL string) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		newID:   func() string { return uuid.NewString() },
	}
}

// Publish stores doc under a fresh locator, invalidating the previous one.
func (s *Store) Publish(doc string) Locator {
	id := s.newID()
	s.mu.Lock()
	s.id = id
	s.doc = doc
	s.mu.Unlock()

	metrics.ManifestsPublishedTotal.Inc()
	return Locator{ID: id, URL: s.baseURL + "/manifests/" + id + ".mpd"}
}

// Get returns the document for id if it is still the live one.
func (s *Store) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" || id != s.id {
		return "", false
	}
	return s.doc, true
}

// Invalidate drops the live document.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.doc = ""
}

// Synthesizer couples synthesis with publication.
type Synthesizer struct {
	store *Store
}

// NewSynthesizer returns a Synthesizer publishing into store.
func NewSynthesizer(store *Store) *Synthesizer {
	return &Synthesizer{store: store}
}

// Build synthesizes a manifest for the pair and publishes it.
func (s *Synthesizer) Build(video, audio stream.Descriptor) (Locator, error) {
	logger := log.WithComponent("manifest")
	doc, err := build(&video, &audio)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "manifest.synthesis_failed").
			Msg("manifest synthesis failed")
		return Locator{}, err
	}
	loc := s.store.Publish(doc)
	logger.Debug().
		Str(log.FieldEvent, "manifest.published").
		Str(log.FieldLocator, loc.URL).
		Msg("manifest published")
	return loc, nil
}

// Invalidate drops the live manifest.
func (s *Synthesizer) Invalidate() {
	s.store.Invalidate()
}
