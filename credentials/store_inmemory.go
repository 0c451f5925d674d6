package credentials

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the credential slots in a map. It does not survive a restart.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewInMemoryStore creates an empty in-memory credential store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		slots: make(map[string]string),
	}
}

func (s *InMemoryStore) Load() (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordFromSlots(s.slots), nil
}

func (s *InMemoryStore) Save(record Record) error {
	if !record.Complete() {
		return fmt.Errorf("[InMemoryStore Save] %w", apperrors.ErrIncompleteCredentials)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for slot, value := range record.slots() {
		s.slots[slot] = value
	}
	return nil
}

func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range Slots {
		delete(s.slots, slot)
	}
	return nil
}

func (s *InMemoryStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		delete(s.slots, SlotToken)
		return nil
	}
	s.slots[SlotToken] = token
	return nil
}

// Slot returns the raw value of a single slot and whether it is present.
func (s *InMemoryStore) Slot(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[name]
	return v, ok
}
