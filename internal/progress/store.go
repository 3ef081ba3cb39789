// Package progress persists how far each hunter has got through the catalog.
// The stored value is the index of the active fence: the landmark the hunter
// is currently looking for. It reaches geofence.NumLandmarks once every
// landmark has been found.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"treasurehunt/internal/geofence"
)

var ErrInvalidIndex = errors.New("geofence index out of range")

// Store reads and writes the active fence index of a hunter. Hunters that
// were never written start at 0.
type Store interface {
	Index(ctx context.Context, hunterID string) (int, error)
	SetIndex(ctx context.Context, hunterID string, index int) error
	// Advance moves the hunter from index from to from+1 only if the stored
	// index is still from. It reports whether the move happened.
	Advance(ctx context.Context, hunterID string, from int) (bool, error)
}

func validate(index int) error {
	if index < 0 || index > geofence.NumLandmarks {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return nil
}

// validateStep checks that from and from+1 are both valid indices.
func validateStep(from int) error {
	if err := validate(from); err != nil {
		return err
	}
	return validate(from + 1)
}

// MemoryStore keeps progress in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	indices map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indices: make(map[string]int)}
}

func (s *MemoryStore) Index(_ context.Context, hunterID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indices[hunterID], nil
}

func (s *MemoryStore) SetIndex(_ context.Context, hunterID string, index int) error {
	if err := validate(index); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[hunterID] = index
	return nil
}

func (s *MemoryStore) Advance(_ context.Context, hunterID string, from int) (bool, error) {
	if err := validateStep(from); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indices[hunterID] != from {
		return false, nil
	}
	s.indices[hunterID] = from + 1
	return true, nil
}
