package repo

import (
	"context"
	"sync"
	"time"

	"wghttp/internal/models"
)

// MemEventStore — журнал в памяти на случай, когда БД не настроена.
// Хранит не больше capacity последних записей.
type MemEventStore struct {
	mu       sync.RWMutex
	events   []models.Event
	capacity int
	nextID   uint
}

func NewMemEventStore(capacity int) *MemEventStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemEventStore{capacity: capacity}
}

func (m *MemEventStore) Record(_ context.Context, ev *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ev.ID = m.nextID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	m.events = append(m.events, *ev)
	if over := len(m.events) - m.capacity; over > 0 {
		m.events = append(m.events[:0], m.events[over:]...)
	}
	return nil
}

func (m *MemEventStore) List(_ context.Context, device string, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Event, 0, min(limit, len(m.events)))
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if device != "" && m.events[i].Device != device {
			continue
		}
		out = append(out, m.events[i])
	}
	return out, nil
}
