package storage

import (
	"sync"
	"time"

	"locator/internal/beacon"
)

// Reading is the latest range data for one beacon.
type Reading struct {
	RSSI      float64
	Distance  float64
	UpdatedAt time.Time
}

// Storage keeps the most recent reading per beacon. Newer readings replace
// older ones outright.
type Storage struct {
	mu   sync.RWMutex
	data map[beacon.Label]Reading
	now  func() time.Time
}

// NewStorage initialises an empty store.
func NewStorage() *Storage {
	return &Storage{
		data: make(map[beacon.Label]Reading),
		now:  time.Now,
	}
}

// Set records a reading for the beacon.
func (s *Storage) Set(label beacon.Label, rssi, distance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[label] = Reading{
		RSSI:      rssi,
		Distance:  distance,
		UpdatedAt: s.now(),
	}
}

// Get returns the reading for one beacon.
func (s *Storage) Get(label beacon.Label) (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[label]
	return data, ok
}

// Snapshot returns a copy of the readings no older than maxAge. A zero maxAge
// disables the cutoff.
func (s *Storage) Snapshot(maxAge time.Duration) map[beacon.Label]Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	result := make(map[beacon.Label]Reading, len(s.data))
	for k, v := range s.data {
		if maxAge > 0 && now.Sub(v.UpdatedAt) > maxAge {
			continue
		}
		result[k] = v
	}
	return result
}
