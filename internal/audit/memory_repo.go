package audit

import (
	"context"
	"errors"
	"sync"
)

var _ Store = (*MemoryRepo)(nil)

const DefaultMemoryCapacity = 1000

// MemoryRepo keeps the last capacity events. Used when no audit database is configured.
type MemoryRepo struct {
	mutex    sync.RWMutex
	events   []Event
	capacity int
	nextID   int
}

func NewMemoryRepo(capacity int) *MemoryRepo {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepo{
		capacity: capacity,
		nextID:   1,
	}
}

func (r *MemoryRepo) Add(_ context.Context, event *Event) error {
	if event.Kind == "" || event.CreatedAt.IsZero() {
		return errors.New("audit event kind or timestamp empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	event.ID = r.nextID
	r.nextID++
	r.events = append(r.events, *event)
	if len(r.events) > r.capacity {
		r.events = r.events[len(r.events)-r.capacity:]
	}
	return nil
}

func (r *MemoryRepo) List(_ context.Context, limit int) ([]Event, error) {
	limit = ClampLimit(limit)

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	events := make([]Event, 0, min(limit, len(r.events)))
	for i := len(r.events) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, r.events[i])
	}
	return events, nil
}
