package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notedown/internal/cascade"
	"notedown/pkg/kv"
	"notedown/pkg/todo"
)

func newTestServer() *Server {
	bus := todo.NewBus(todo.NewStore(kv.NewMem()))
	return New(bus, cascade.NewHook(bus))
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCreateAndGetTodo(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "Buy milk"})
	if w.Code != 201 {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	created := decode[todo.Task](t, w)
	if created.ID == "" || created.Completed {
		t.Fatalf("bad created task: %+v", created)
	}

	w = do(t, s, http.MethodGet, "/api/todos/"+created.ID, nil)
	if w.Code != 200 {
		t.Fatalf("get status = %d, want 200", w.Code)
	}
	got := decode[todo.Task](t, w)
	if got.Title != "Buy milk" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestGetMissingTodoIs404(t *testing.T) {
	s := newTestServer()
	w := do(t, s, http.MethodGet, "/api/todos/nope", nil)
	if w.Code != 404 {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPatchMissingTodoIs404(t *testing.T) {
	s := newTestServer()
	title := "x"
	w := do(t, s, http.MethodPatch, "/api/todos/nope", todo.Patch{Title: &title})
	if w.Code != 404 {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListPendingFilter(t *testing.T) {
	s := newTestServer()

	a := decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "a"}))
	decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "b"}))
	decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "c"}))

	if w := do(t, s, http.MethodPost, "/api/todos/"+a.ID+"/toggle", nil); w.Code != 200 {
		t.Fatalf("toggle status = %d", w.Code)
	}

	w := do(t, s, http.MethodGet, "/api/todos?completed=pending", nil)
	tasks := decode[[]todo.Task](t, w)
	if len(tasks) != 2 {
		t.Fatalf("got %d pending tasks, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.Completed {
			t.Fatalf("completed task %s in pending list", task.ID)
		}
	}
}

func TestDeleteTodoIsIdempotent(t *testing.T) {
	s := newTestServer()
	created := decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "t"}))

	if w := do(t, s, http.MethodDelete, "/api/todos/"+created.ID, nil); w.Code != 204 {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/api/todos/"+created.ID, nil); w.Code != 204 {
		t.Fatalf("second delete status = %d, want 204", w.Code)
	}
}

func TestNoteDeleteCascades(t *testing.T) {
	s := newTestServer()

	decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "a", NoteID: "note-1"}))
	decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "b", NoteID: "note-1"}))

	w := do(t, s, http.MethodGet, "/api/notes/note-1/todos", nil)
	ids := decode[[]string](t, w)
	if len(ids) != 2 {
		t.Fatalf("note has %d todos, want 2", len(ids))
	}

	w = do(t, s, http.MethodDelete, "/api/notes/note-1", nil)
	if w.Code != 200 {
		t.Fatalf("note delete status = %d", w.Code)
	}
	res := decode[map[string]int](t, w)
	if res["removed"] != 2 {
		t.Fatalf("removed = %d, want 2", res["removed"])
	}

	// idempotent second cascade
	w = do(t, s, http.MethodDelete, "/api/notes/note-1", nil)
	res = decode[map[string]int](t, w)
	if res["removed"] != 0 {
		t.Fatalf("second removed = %d, want 0", res["removed"])
	}
}

func TestReorderEndpoint(t *testing.T) {
	s := newTestServer()

	a := decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "a"}))
	b := decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "b"}))

	w := do(t, s, http.MethodPost, "/api/todos/reorder", map[string][]string{"ids": {b.ID, a.ID}})
	if w.Code != 204 {
		t.Fatalf("reorder status = %d, want 204", w.Code)
	}

	tasks := decode[[]todo.Task](t, do(t, s, http.MethodGet, "/api/todos?sort_by=position", nil))
	if len(tasks) != 2 || tasks[0].ID != b.ID || tasks[1].ID != a.ID {
		t.Fatalf("order after reorder = %+v", tasks)
	}
}
