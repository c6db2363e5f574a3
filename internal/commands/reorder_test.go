package commands

import (
	"context"
	"testing"

	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

func TestReorderTasksMovesListedFirst(t *testing.T) {
	ctx := context.Background()
	todos = todo.NewBus(todo.NewStore(kv.NewMem()))

	a, err := todos.Create(ctx, todo.CreateInput{Title: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := todos.Create(ctx, todo.CreateInput{Title: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c, err := todos.Create(ctx, todo.CreateInput{Title: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := reorderTasks(ctx, []string{c.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	tasks, err := todos.List(ctx, todo.ListFilter{SortBy: todo.SortByPosition})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{c.ID, b.ID, a.ID}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d holds %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestReorderTasksUnknownID(t *testing.T) {
	ctx := context.Background()
	todos = todo.NewBus(todo.NewStore(kv.NewMem()))

	a, err := todos.Create(ctx, todo.CreateInput{Title: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := reorderTasks(ctx, []string{"ghost", a.ID}); err != nil {
		t.Fatalf("reorder with unknown id: %v", err)
	}

	tasks, err := todos.List(ctx, todo.ListFilter{SortBy: todo.SortByPosition})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != a.ID {
		t.Fatalf("list = %v, want only %s", tasks, a.ID)
	}
}
