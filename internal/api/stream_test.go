package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notedown/pkg/todo"
)

// openStream connects to the SSE endpoint and blocks until the server
// has flushed the response headers, i.e. until the subscription is live.
func openStream(t *testing.T, ctx context.Context, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/todos/stream", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", ct)
	}
	return resp
}

func TestTodoStreamDeliversChanges(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(s)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resp := openStream(t, ctx, srv.URL)
	defer resp.Body.Close()

	created := decode[todo.Task](t, do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "streamed"}))

	events := make(chan string, 1)
	readErr := make(chan error, 1)
	go func() {
		r := bufio.NewReader(resp.Body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				readErr <- err
				return
			}
			if strings.HasPrefix(line, "data: ") {
				events <- strings.TrimPrefix(strings.TrimSpace(line), "data: ")
				return
			}
		}
	}()

	var payload string
	select {
	case payload = <-events:
	case err := <-readErr:
		t.Fatalf("read stream: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event arrived")
	}

	var batch []changeEnvelope
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch size = %d, want 1", len(batch))
	}
	if batch[0].Type != "added" || batch[0].Task == nil || batch[0].Task.ID != created.ID {
		t.Fatalf("event = %+v, want added for %s", batch[0], created.ID)
	}
}

func TestTodoStreamStopsOnCancel(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(s)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	resp := openStream(t, ctx, srv.URL)
	defer resp.Body.Close()

	cancel()

	buf := make([]byte, 1)
	if _, err := resp.Body.Read(buf); err == nil {
		t.Fatal("read after cancel succeeded, want error")
	}

	// The handler sheds its subscription on the way out; later
	// mutations must still go through without anyone listening.
	w := do(t, s, http.MethodPost, "/api/todos", todo.CreateInput{Title: "after cancel"})
	if w.Code != 201 {
		t.Fatalf("create after cancel status = %d, want 201", w.Code)
	}
}
