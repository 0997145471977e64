package watcher

import (
	"sync"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

// Snapshot remembers the last status observed for each order id. Ids are never
// forgotten, so an order that drops out of a filtered view keeps its baseline.
type Snapshot struct {
	mu       sync.RWMutex
	statuses map[string]domain.Status
}

func NewSnapshot() *Snapshot {
	return &Snapshot{statuses: map[string]domain.Status{}}
}

// Observe records status for id. It returns the previous status and true only when
// id was already known with a different status.
func (s *Snapshot) Observe(id string, status domain.Status) (domain.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, seen := s.statuses[id]
	s.statuses[id] = status
	if !seen || previous == status {
		return previous, false
	}
	return previous, true
}

// Status returns the last observed status of id.
func (s *Snapshot) Status(id string) (domain.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[id]
	return status, ok
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses)
}

// Copy returns the snapshot contents.
func (s *Snapshot) Copy() map[string]domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Status, len(s.statuses))
	for id, status := range s.statuses {
		out[id] = status
	}
	return out
}
