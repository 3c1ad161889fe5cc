package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Persisted is a reactive value container mirrored to a Storage key.
//
// Observers registered with Subscribe are called synchronously, in
// registration order, with every new value. Each change is JSON-serialized
// and written to storage under the container's key, so creating another
// container with the same key reproduces the last written value.
type Persisted[T any] struct {
	storage Storage
	key     string

	// writeMu orders storage writes the same way as in-memory updates.
	writeMu sync.Mutex

	mu        sync.Mutex
	value     T
	observers map[uint64]func(T)
	order     []uint64
	nextID    uint64
}

// NewPersisted creates a container for key. When storage is non-nil any value
// previously saved under key replaces initial, and the resulting current
// value is written back to storage.
func NewPersisted[T any](ctx context.Context, storage Storage, key string, initial T) (*Persisted[T], error) {
	p := &Persisted[T]{
		storage:   storage,
		key:       key,
		value:     initial,
		observers: make(map[uint64]func(T)),
	}

	if storage == nil {
		return p, nil
	}

	raw, err := storage.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	case raw != "":
		var loaded T
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", key, err)
		}
		p.value = loaded
	}

	if err := p.persist(ctx, p.value); err != nil {
		return nil, err
	}

	return p, nil
}

// Key returns the storage key of the container.
func (p *Persisted[T]) Key() string {
	return p.key
}

// Get returns the current value.
func (p *Persisted[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Set replaces the current value, writes it to storage and notifies
// observers. A value deep-equal to the current one is ignored. The in-memory
// value is updated even when the storage write fails. Concurrent calls leave
// storage holding the same value as memory.
func (p *Persisted[T]) Set(ctx context.Context, v T) error {
	p.writeMu.Lock()

	p.mu.Lock()
	if reflect.DeepEqual(p.value, v) {
		p.mu.Unlock()
		p.writeMu.Unlock()
		return nil
	}
	p.value = v
	observers := p.snapshotObservers()
	p.mu.Unlock()

	err := p.persist(ctx, v)
	p.writeMu.Unlock()

	for _, fn := range observers {
		fn(v)
	}

	return err
}

// Update sets the value to fn applied to the current value.
func (p *Persisted[T]) Update(ctx context.Context, fn func(T) T) error {
	return p.Set(ctx, fn(p.Get()))
}

// Subscribe registers fn and calls it immediately with the current value.
// The returned function removes the registration.
func (p *Persisted[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.observers[id] = fn
	p.order = append(p.order, id)
	current := p.value
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.observers, id)
			for i, oid := range p.order {
				if oid == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}

// snapshotObservers must be called with p.mu held.
func (p *Persisted[T]) snapshotObservers() []func(T) {
	fns := make([]func(T), 0, len(p.order))
	for _, id := range p.order {
		fns = append(fns, p.observers[id])
	}
	return fns
}

func (p *Persisted[T]) persist(ctx context.Context, v T) error {
	if p.storage == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", p.key, err)
	}

	if err := p.storage.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %q: %w", p.key, err)
	}

	return nil
}
