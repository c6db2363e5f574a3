package taskfile

import (
	"context"
	"path/filepath"
	"testing"

	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

func newBus() *todo.Bus {
	return todo.NewBus(todo.NewStore(kv.NewMem()))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newBus()

	a, _ := src.Create(ctx, todo.CreateInput{Title: "water plants", NoteID: "note-1"})
	src.Create(ctx, todo.CreateInput{Title: "file taxes"})
	if _, err := src.Toggle(ctx, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	f, err := Export(ctx, src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if f.SchemaVersion != SchemaVersion || len(f.Tasks) != 2 {
		t.Fatalf("bad snapshot: version=%d tasks=%d", f.SchemaVersion, len(f.Tasks))
	}

	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := f.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	dst := newBus()
	n, err := Import(ctx, dst, loaded)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}

	tasks, _ := dst.List(ctx, todo.ListFilter{SortBy: todo.SortByPosition})
	if len(tasks) != 2 {
		t.Fatalf("destination has %d tasks", len(tasks))
	}
	byTitle := map[string]todo.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}
	if !byTitle["water plants"].Completed {
		t.Fatal("completion state lost on import")
	}
	if byTitle["water plants"].NoteID != "note-1" {
		t.Fatal("owner lost on import")
	}
	if byTitle["file taxes"].Completed {
		t.Fatal("pending task became completed")
	}
}

func TestParseRejectsInvalidDocument(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not json", `{"tasks": [`},
		{"missing tasks", `{"schema_version": 1}`},
		{"task without id", `{"schema_version": 1, "tasks": [{"title": "x", "completed": false, "version": 1, "created_at": "2026-01-01T00:00:00Z", "updated_at": "2026-01-01T00:00:00Z"}]}`},
		{"wrong type", `{"schema_version": "one", "tasks": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseRejectsNewerSchema(t *testing.T) {
	doc := `{"schema_version": 99, "tasks": []}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for newer schema version")
	}
}
