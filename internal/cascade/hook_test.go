package cascade

import (
	"context"
	"errors"
	"testing"

	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

func TestHookCascades(t *testing.T) {
	ctx := context.Background()
	bus := todo.NewBus(todo.NewStore(kv.NewMem()))
	h := NewHook(bus)

	a, _ := bus.Create(ctx, todo.CreateInput{Title: "a", NoteID: "note-1"})
	bus.Create(ctx, todo.CreateInput{Title: "b", NoteID: "note-1"})
	other, _ := bus.Create(ctx, todo.CreateInput{Title: "c", NoteID: "note-2"})

	n, err := h.NoteDeleted(ctx, "note-1")
	if err != nil {
		t.Fatalf("note deleted: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	if got, _ := bus.Get(ctx, a.ID); got != nil {
		t.Fatal("owned task survived")
	}
	if got, _ := bus.Get(ctx, other.ID); got == nil {
		t.Fatal("other note's task removed")
	}
}

func TestHookZeroTasks(t *testing.T) {
	ctx := context.Background()
	h := NewHook(todo.NewBus(todo.NewStore(kv.NewMem())))

	n, err := h.NoteDeleted(ctx, "empty-note")
	if err != nil {
		t.Fatalf("note deleted: %v", err)
	}
	if n != 0 {
		t.Fatalf("removed %d, want 0", n)
	}
}

type failingDeleter struct {
	err error
}

func (d failingDeleter) DeleteByNote(context.Context, string) (int, error) {
	return 0, d.err
}

func TestHookPropagatesFailure(t *testing.T) {
	ctx := context.Background()
	storageErr := errors.New("disk on fire")
	h := NewHook(failingDeleter{err: storageErr})

	_, err := h.NoteDeleted(ctx, "note-1")
	if !errors.Is(err, storageErr) {
		t.Fatalf("err = %v, want wrapped storage error", err)
	}
}
