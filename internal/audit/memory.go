package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps events in process memory. Intended for tests and
// ephemeral pipelines where no processing log needs to survive a restart.
type MemoryBackend struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Write(ctx context.Context, ev *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *MemoryBackend) Query(ctx context.Context, filters Filters) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Event
	for i := range m.events {
		if filters.matches(&m.events[i]) {
			results = append(results, m.events[i])
		}
	}
	sortNewestFirst(results)
	if filters.Limit > 0 && len(results) > filters.Limit {
		results = results[:filters.Limit]
	}
	return results, nil
}

func (m *MemoryBackend) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var removed int64
	for _, ev := range m.events {
		if ev.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	m.events = kept
	return removed, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
