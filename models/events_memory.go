package models

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memoryEventRepo is a process-local store for development and tests.
// One mutex covers everything, which makes AppendRegistration atomic.
type memoryEventRepo struct {
	mu    sync.Mutex
	order []string
	items map[string]Event
}

func NewMemoryEventRepository() EventRepository {
	return &memoryEventRepo{items: map[string]Event{}}
}

func (r *memoryEventRepo) GetAll(_ context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].clone())
	}
	return out, nil
}

func (r *memoryEventRepo) GetByID(_ context.Context, id string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e.clone(), nil
}

func (r *memoryEventRepo) Create(_ context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = uuid.NewString()
	if e.Registrations == nil {
		e.Registrations = []Registration{}
	}
	r.items[e.ID] = e.clone()
	r.order = append(r.order, e.ID)
	return nil
}

func (r *memoryEventRepo) Save(_ context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.ID]; !ok {
		return ErrNotFound
	}
	r.items[e.ID] = e.clone()
	return nil
}

func (r *memoryEventRepo) Delete(_ context.Context, id string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, nil
}

func (r *memoryEventRepo) AppendRegistration(_ context.Context, id string, reg Registration) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	if e.IsFull() {
		return Event{}, ErrCapacityExceeded
	}
	e = e.clone()
	e.Registrations = append(e.Registrations, reg)
	r.items[id] = e
	return e.clone(), nil
}

func (r *memoryEventRepo) Ping(context.Context) error { return nil }
