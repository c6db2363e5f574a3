// Package cascade cleans up a note's tasks when the note itself is
// deleted.
package cascade

import (
	"context"
	"fmt"
	"log"
)

// Deleter is the slice of the todo surface the hook needs.
type Deleter interface {
	DeleteByNote(ctx context.Context, noteID string) (int, error)
}

// Hook reacts to note-deleted events by cascading the delete into the
// task store.
type Hook struct {
	todos Deleter
}

// NewHook creates a Hook over the given todo surface.
func NewHook(todos Deleter) *Hook {
	return &Hook{todos: todos}
}

// NoteDeleted runs the cascade for one note-deleted event. Zero owned
// tasks is a normal outcome. A storage failure is logged and returned
// so the dispatcher can observe it; the note deletion itself is never
// rolled back — this is a compensating action, not a transaction.
func (h *Hook) NoteDeleted(ctx context.Context, noteID string) (int, error) {
	n, err := h.todos.DeleteByNote(ctx, noteID)
	if err != nil {
		log.Printf("cascade delete for note %s: %v", noteID, err)
		return 0, fmt.Errorf("cascade delete for note %s: %w", noteID, err)
	}
	if n > 0 {
		log.Printf("note %s deleted, removed %d tasks", noteID, n)
	}
	return n, nil
}
