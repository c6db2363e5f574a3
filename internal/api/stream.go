package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"notedown/pkg/todo"
)

// changeEnvelope is the wire form of one change on the SSE stream.
type changeEnvelope struct {
	Type string     `json:"type"` // added, updated, removed, reordered
	Task *todo.Task `json:"task,omitempty"`
	ID   string     `json:"id,omitempty"`
	IDs  []string   `json:"ids,omitempty"`
}

func envelopes(batch []todo.Change) []changeEnvelope {
	out := make([]changeEnvelope, 0, len(batch))
	for _, c := range batch {
		switch c := c.(type) {
		case todo.Added:
			t := c.Task
			out = append(out, changeEnvelope{Type: "added", Task: &t})
		case todo.Updated:
			t := c.Task
			out = append(out, changeEnvelope{Type: "updated", Task: &t})
		case todo.Removed:
			out = append(out, changeEnvelope{Type: "removed", ID: c.ID})
		case todo.Reordered:
			out = append(out, changeEnvelope{Type: "reordered", IDs: c.IDs})
		}
	}
	return out
}

// handleTodoStream streams change batches to the client as
// server-sent events, one SSE message per batch.
func (s *Server) handleTodoStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, 500, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// The bus delivers synchronously; hand batches to this goroutine
	// through a buffered channel so handlers return promptly. Subscribe
	// before the first flush so every mutation after the client sees
	// the response headers is on the stream.
	batches := make(chan []todo.Change, 16)
	unsubscribe := s.todos.Subscribe(func(batch []todo.Change) {
		cp := make([]todo.Change, len(batch))
		copy(cp, batch)
		select {
		case batches <- cp:
		default:
			// client is behind; drop rather than block the mutator
		}
	})
	defer unsubscribe()
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-batches:
			data, err := json.Marshal(envelopes(batch))
			if err != nil {
				log.Printf("SSE encode: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
