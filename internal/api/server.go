package api

import (
	"encoding/json"
	"log"
	"net/http"

	"notedown/internal/cascade"
	"notedown/pkg/todo"
)

// Server is the HTTP API server for the todo subsystem.
type Server struct {
	todos *todo.Bus
	hook  *cascade.Hook
	mux   *http.ServeMux
}

// New creates a new Server.
func New(todos *todo.Bus, hook *cascade.Hook) *Server {
	s := &Server{
		todos: todos,
		hook:  hook,
		mux:   http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Todos
	s.mux.HandleFunc("GET /api/todos", s.handleTodoList)
	s.mux.HandleFunc("POST /api/todos", s.handleTodoCreate)
	s.mux.HandleFunc("POST /api/todos/reorder", s.handleTodoReorder)
	s.mux.HandleFunc("GET /api/todos/stream", s.handleTodoStream)
	s.mux.HandleFunc("GET /api/todos/{id}", s.handleTodoGet)
	s.mux.HandleFunc("PATCH /api/todos/{id}", s.handleTodoUpdate)
	s.mux.HandleFunc("POST /api/todos/{id}/toggle", s.handleTodoToggle)
	s.mux.HandleFunc("DELETE /api/todos/{id}", s.handleTodoDelete)

	// Notes (owning entities)
	s.mux.HandleFunc("GET /api/notes/{id}/todos", s.handleNoteTodos)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleNoteDelete)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.todos.List(r.Context(), todo.ListFilter{})
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	pending := 0
	for _, t := range tasks {
		if !t.Completed {
			pending++
		}
	}
	writeJSON(w, 200, map[string]int{"tasks": len(tasks), "pending": pending})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
