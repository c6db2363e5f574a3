package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"notedown/pkg/kv"
)

// Persisted key layout: one global ordered-id list, one record per
// task, one id set per owning note.
const (
	keyIDs        = "todo:ids"
	keyTaskPrefix = "todo:task:"
	keyNotePrefix = "todo:note:"
)

// Store owns the primary task records and both structural indices. It
// is the sole writer of its keys; a store-level lock serializes
// mutations so no reader ever observes a partially updated index.
type Store struct {
	mu sync.RWMutex
	kv kv.Store

	// injectable for tests
	now   func() time.Time
	newID func() string
}

// NewStore creates a Store over the given backing store.
func NewStore(backing kv.Store) *Store {
	return &Store{
		kv:    backing,
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Create inserts a new task. The id is a fresh uuid v7, Completed
// starts false, and both timestamps are set to now.
func (s *Store) Create(ctx context.Context, in CreateInput) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.readIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := Task{
		ID:           s.newID(),
		Title:        in.Title,
		NoteID:       in.NoteID,
		Position:     len(ids),
		SourceAnchor: in.SourceAnchor,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Position != nil {
		t.Position = *in.Position
	}

	if err := s.writeTask(ctx, t); err != nil {
		return nil, err
	}
	if t.NoteID != "" {
		noteIDs, err := s.readNoteIDs(ctx, t.NoteID)
		if err != nil {
			return nil, err
		}
		if err := s.writeNoteIDs(ctx, t.NoteID, append(noteIDs, t.ID)); err != nil {
			return nil, err
		}
	}
	if err := s.writeIDs(ctx, append(ids, t.ID)); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get retrieves a task by id. A missing id returns (nil, nil); absence
// is not an error.
func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readTask(ctx, id)
}

// List returns tasks passing the completion filter, sorted by the
// requested key with ties broken by id, truncated to the limit.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.readIDs(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.readTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("index references missing task %s", id)
		}
		if f.Match(*t) {
			tasks = append(tasks, *t)
		}
	}

	SortTasks(tasks, f.SortBy, f.SortOrder)
	if f.Limit > 0 && len(tasks) > f.Limit {
		tasks = tasks[:f.Limit]
	}
	return tasks, nil
}

// Update merges the patch's non-nil fields into the record, bumps the
// version, and refreshes UpdatedAt. Returns ErrNotFound when the id
// does not exist.
func (s *Store) Update(ctx context.Context, p Patch) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTask(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("update %s: %w", p.ID, ErrNotFound)
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	t.Version++
	t.UpdatedAt = s.now()

	if err := s.writeTask(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// Toggle flips the task's completed flag. Returns ErrNotFound when the
// id does not exist.
func (s *Store) Toggle(ctx context.Context, id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}

	t.Completed = !t.Completed
	t.Version++
	t.UpdatedAt = s.now()

	if err := s.writeTask(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// Reorder replaces the global order with the given ids and reassigns
// each task's Position to its new index. Ids with no record are
// dropped; existing tasks missing from the argument keep their prior
// relative order at the tail. Returns the authoritative new order.
func (s *Store) Reorder(ctx context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readIDs(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]string, 0, len(current))
	seen := make(map[string]bool, len(current))
	for _, id := range ids {
		if seen[id] || !slices.Contains(current, id) {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	for _, id := range current {
		if !seen[id] {
			next = append(next, id)
		}
	}

	now := s.now()
	for i, id := range next {
		t, err := s.readTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("index references missing task %s", id)
		}
		if t.Position == i {
			continue
		}
		t.Position = i
		t.Version++
		t.UpdatedAt = now
		if err := s.writeTask(ctx, *t); err != nil {
			return nil, err
		}
	}

	if err := s.writeIDs(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes the task and all its index entries. Deleting an
// absent id is a no-op; the return reports whether anything was
// removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTask(ctx, id)
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	if err := s.remove(ctx, *t); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByNote removes every task owned by the note and returns their
// ids. Idempotent: a second call returns an empty slice.
func (s *Store) DeleteByNote(ctx context.Context, noteID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.readNoteIDs(ctx, noteID)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		t, err := s.readTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if err := s.remove(ctx, *t); err != nil {
			return nil, err
		}
		removed = append(removed, id)
	}
	return removed, nil
}

// IDsByNote returns the ids of all tasks owned by the note. Read-only;
// empty when the note owns nothing.
func (s *Store) IDsByNote(ctx context.Context, noteID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readNoteIDs(ctx, noteID)
}

// remove deletes a task's record and both its index entries. Caller
// holds the write lock.
func (s *Store) remove(ctx context.Context, t Task) error {
	ids, err := s.readIDs(ctx)
	if err != nil {
		return err
	}
	if i := slices.Index(ids, t.ID); i >= 0 {
		if err := s.writeIDs(ctx, slices.Delete(ids, i, i+1)); err != nil {
			return err
		}
	}

	if t.NoteID != "" {
		noteIDs, err := s.readNoteIDs(ctx, t.NoteID)
		if err != nil {
			return err
		}
		if i := slices.Index(noteIDs, t.ID); i >= 0 {
			if err := s.writeNoteIDs(ctx, t.NoteID, slices.Delete(noteIDs, i, i+1)); err != nil {
				return err
			}
		}
	}

	if err := s.kv.Delete(ctx, keyTaskPrefix+t.ID); err != nil {
		return fmt.Errorf("delete task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) readTask(ctx context.Context, id string) (*Task, error) {
	raw, err := s.kv.Get(ctx, keyTaskPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task %s: %w", id, err)
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &t, nil
}

func (s *Store) writeTask(ctx context.Context, t Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", t.ID, err)
	}
	if err := s.kv.Set(ctx, keyTaskPrefix+t.ID, raw); err != nil {
		return fmt.Errorf("write task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) readIDs(ctx context.Context) ([]string, error) {
	return s.readIDList(ctx, keyIDs)
}

func (s *Store) writeIDs(ctx context.Context, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode id list: %w", err)
	}
	if err := s.kv.Set(ctx, keyIDs, raw); err != nil {
		return fmt.Errorf("write id list: %w", err)
	}
	return nil
}

func (s *Store) readNoteIDs(ctx context.Context, noteID string) ([]string, error) {
	return s.readIDList(ctx, keyNotePrefix+noteID)
}

// writeNoteIDs writes the note's id set, deleting the key when the set
// becomes empty so cleared notes leave no residue.
func (s *Store) writeNoteIDs(ctx context.Context, noteID string, ids []string) error {
	key := keyNotePrefix + noteID
	if len(ids) == 0 {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear note index %s: %w", noteID, err)
		}
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode note index %s: %w", noteID, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write note index %s: %w", noteID, err)
	}
	return nil
}

func (s *Store) readIDList(ctx context.Context, key string) ([]string, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return ids, nil
}
