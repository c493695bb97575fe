// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"errors"
	"sync"

	"github.com/ManuGH/tizenplay/internal/host"
	"github.com/ManuGH/tizenplay/internal/stream"
)

// DefaultMetadataCapacity bounds how many videos' records are retained.
const DefaultMetadataCapacity = 32

// ErrMissingVideoID is returned when a record has no video identity.
var ErrMissingVideoID = errors.New("metadata record has no video id")

// MetadataStore keeps the stream metadata records written by the provider.
// The oldest record is evicted once capacity is reached.
type MetadataStore struct {
	mu       sync.RWMutex
	records  map[string]stream.Metadata
	order    []string
	capacity int
}

var _ host.MetadataProvider = (*MetadataStore)(nil)

// NewMetadataStore returns an empty store.
func NewMetadataStore(capacity int) *MetadataStore {
	if capacity <= 0 {
		capacity = DefaultMetadataCapacity
	}
	return &MetadataStore{records: make(map[string]stream.Metadata), capacity: capacity}
}

// Put stores or replaces the record for r.VideoID.
func (s *MetadataStore) Put(r stream.Metadata) error {
	if r.VideoID == "" {
		return ErrMissingVideoID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.VideoID]; !ok {
		if len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.records, oldest)
		}
		s.order = append(s.order, r.VideoID)
	}
	s.records[r.VideoID] = r
	return nil
}

func (s *MetadataStore) Lookup(videoID string) (stream.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[videoID]
	return r, ok
}

// Len reports the number of stored records.
func (s *MetadataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
