// Package todo implements the task persistence subsystem: a
// secondary-indexed store over a key-value backend, plus a change
// notification bus that fans out typed deltas after every mutation.
package todo

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by Update and Toggle when the target id does
// not exist. Get, Delete, and DeleteByNote treat absence as a normal
// outcome, not an error.
var ErrNotFound = errors.New("task not found")

// Task is a single todo item, optionally owned by a note.
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Completed    bool      `json:"completed"`
	NoteID       string    `json:"note_id,omitempty"`       // owning note, empty = standalone
	Position     int       `json:"position"`                // manual sort order
	SourceAnchor string    `json:"source_anchor,omitempty"` // owner-relative hint, opaque to the store
	Version      int64     `json:"version"`                 // bumped on every mutation
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateInput holds the fields callers may set at creation.
type CreateInput struct {
	Title        string `json:"title"`
	NoteID       string `json:"note_id,omitempty"`
	Position     *int   `json:"position,omitempty"`
	SourceAnchor string `json:"source_anchor,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched. NoteID,
// CreatedAt, and ID are never patchable.
type Patch struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Position  *int    `json:"position,omitempty"`
}

// Sort keys accepted by ListFilter.SortBy.
const (
	SortByPosition  = "position"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByTitle     = "title"
)

// Sort directions accepted by ListFilter.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilter selects, orders, and caps the result of List.
type ListFilter struct {
	Completed *bool  `json:"completed,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`    // defaults to position
	SortOrder string `json:"sort_order,omitempty"` // defaults to asc
	Limit     int    `json:"limit,omitempty"`      // 0 = unlimited
}

// Match reports whether t passes the completion filter.
func (f ListFilter) Match(t Task) bool {
	return f.Completed == nil || t.Completed == *f.Completed
}

// SortTasks orders tasks by the given sort key and direction. Ties are
// always broken by ID ascending so the order is deterministic
// regardless of direction.
func SortTasks(tasks []Task, sortBy, sortOrder string) {
	desc := sortOrder == SortDesc
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareTasks(tasks[i], tasks[j], sortBy)
		if c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// compareTasks compares a and b on the sort key only. 0 means tied.
func compareTasks(a, b Task, sortBy string) int {
	switch sortBy {
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	default: // position
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		}
		return 0
	}
}
