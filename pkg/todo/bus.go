package todo

import (
	"context"
	"sort"
	"sync"
)

// Handler receives one batch of changes per mutation, synchronously.
// Handlers must return promptly; long follow-up work belongs on a
// goroutine scheduled from inside the handler.
type Handler func(batch []Change)

// Bus wraps a Store and, after every successful mutation, delivers one
// batch of typed changes to all current subscribers. Delivery is
// synchronous and ordered: the batch for one mutation is fully
// delivered before the next mutation's batch.
type Bus struct {
	store *Store

	// opMu is held across the store write and its publish so batches
	// reach subscribers in mutation order. The store's own lock is
	// released when its method returns; without this, two concurrent
	// mutations could publish in the opposite order of their writes.
	opMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]Handler
}

// NewBus creates a Bus wrapping the given store.
func NewBus(store *Store) *Bus {
	return &Bus{store: store, subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its unsubscribe func.
// Unsubscribing during an in-flight delivery is safe.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// publish delivers one batch to every current subscriber in
// subscription order. Handlers removed mid-delivery are skipped.
func (b *Bus) publish(batch []Change) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	b.mu.Unlock()
	sort.Ints(ids)

	for _, id := range ids {
		b.mu.Lock()
		h := b.subs[id]
		b.mu.Unlock()
		if h != nil {
			h(batch)
		}
	}
}

// Create inserts a task and emits Added.
func (b *Bus) Create(ctx context.Context, in CreateInput) (*Task, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	t, err := b.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	b.publish([]Change{Added{Task: *t}})
	return t, nil
}

// Get delegates to the store.
func (b *Bus) Get(ctx context.Context, id string) (*Task, error) {
	return b.store.Get(ctx, id)
}

// List delegates to the store.
func (b *Bus) List(ctx context.Context, f ListFilter) ([]Task, error) {
	return b.store.List(ctx, f)
}

// IDsByNote delegates to the store.
func (b *Bus) IDsByNote(ctx context.Context, noteID string) ([]string, error) {
	return b.store.IDsByNote(ctx, noteID)
}

// Update patches a task and emits Updated.
func (b *Bus) Update(ctx context.Context, p Patch) (*Task, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	t, err := b.store.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	b.publish([]Change{Updated{Task: *t}})
	return t, nil
}

// Toggle flips a task's completed flag and emits Updated.
func (b *Bus) Toggle(ctx context.Context, id string) (*Task, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	t, err := b.store.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	b.publish([]Change{Updated{Task: *t}})
	return t, nil
}

// Reorder replaces the global order and emits Reordered with the
// authoritative result.
func (b *Bus) Reorder(ctx context.Context, ids []string) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	next, err := b.store.Reorder(ctx, ids)
	if err != nil {
		return err
	}
	b.publish([]Change{Reordered{IDs: next}})
	return nil
}

// Delete removes a task and emits Removed. Absent ids emit nothing.
func (b *Bus) Delete(ctx context.Context, id string) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	deleted, err := b.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		b.publish([]Change{Removed{ID: id}})
	}
	return nil
}

// DeleteByNote cascades over a note's tasks, emitting one Removed per
// affected id in a single batch, and returns the count removed.
func (b *Bus) DeleteByNote(ctx context.Context, noteID string) (int, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	removed, err := b.store.DeleteByNote(ctx, noteID)
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		batch := make([]Change, 0, len(removed))
		for _, id := range removed {
			batch = append(batch, Removed{ID: id})
		}
		b.publish(batch)
	}
	return len(removed), nil
}
