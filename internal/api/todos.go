package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"notedown/pkg/todo"
)

func (s *Server) handleTodoList(w http.ResponseWriter, r *http.Request) {
	f := todo.ListFilter{
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("order"),
		Limit:     queryInt(r, "limit", 0),
	}
	switch r.URL.Query().Get("completed") {
	case "true":
		v := true
		f.Completed = &v
	case "false", "pending":
		v := false
		f.Completed = &v
	}

	tasks, err := s.todos.List(r.Context(), f)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	writeJSON(w, 200, tasks)
}

func (s *Server) handleTodoCreate(w http.ResponseWriter, r *http.Request) {
	var in todo.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.todos.Create(r.Context(), in)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, t)
}

func (s *Server) handleTodoGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.todos.Get(r.Context(), id)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if t == nil {
		writeError(w, 404, "task not found")
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTodoUpdate(w http.ResponseWriter, r *http.Request) {
	var p todo.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	p.ID = r.PathValue("id")
	t, err := s.todos.Update(r.Context(), p)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			writeError(w, 404, err.Error())
			return
		}
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTodoToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.todos.Toggle(r.Context(), id)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			writeError(w, 404, err.Error())
			return
		}
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTodoDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.todos.Delete(r.Context(), id); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	w.WriteHeader(204)
}

func (s *Server) handleTodoReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if err := s.todos.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	w.WriteHeader(204)
}

func (s *Server) handleNoteTodos(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	ids, err := s.todos.IDsByNote(r.Context(), noteID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, 200, ids)
}

// handleNoteDelete is the note-deleted event entry point. The note
// itself is gone by the time this runs; the hook's cleanup is
// best-effort and never rolled back.
func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	n, err := s.hook.NoteDeleted(r.Context(), noteID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]int{"removed": n})
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
