// Package taskfile exports and imports task snapshots as JSON files,
// validating imported documents against a JSON Schema.
package taskfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"notedown/pkg/todo"
)

// SchemaVersion is the current snapshot format version.
const SchemaVersion = 1

// File is the on-disk snapshot of the task set.
type File struct {
	SchemaVersion int         `json:"schema_version"`
	Tasks         []todo.Task `json:"tasks"`
}

// Lister is the read surface Export snapshots from.
type Lister interface {
	List(ctx context.Context, f todo.ListFilter) ([]todo.Task, error)
}

// Importer is the write surface Import recreates tasks through.
type Importer interface {
	Create(ctx context.Context, in todo.CreateInput) (*todo.Task, error)
	Toggle(ctx context.Context, id string) (*todo.Task, error)
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "tasks"],
  "properties": {
    "schema_version": {"type": "integer", "minimum": 1},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "completed", "version", "created_at", "updated_at"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "completed": {"type": "boolean"},
          "note_id": {"type": "string"},
          "position": {"type": "integer"},
          "source_anchor": {"type": "string"},
          "version": {"type": "integer", "minimum": 1},
          "created_at": {"type": "string"},
          "updated_at": {"type": "string"}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("taskfile.schema.json", schemaJSON)

// Export snapshots every task in global order.
func Export(ctx context.Context, lister Lister) (*File, error) {
	tasks, err := lister.List(ctx, todo.ListFilter{SortBy: todo.SortByPosition})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &File{SchemaVersion: SchemaVersion, Tasks: tasks}, nil
}

// Save writes the snapshot with 2-space indentation.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// Load reads, schema-validates, and parses a snapshot from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return Parse(data)
}

// Parse schema-validates and decodes a snapshot document.
func Parse(data []byte) (*File, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate task file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode task file: %w", err)
	}
	if f.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("task file schema version %d is newer than supported %d", f.SchemaVersion, SchemaVersion)
	}
	return &f, nil
}

// Import recreates the snapshot's tasks through the store's public
// surface. Ids, versions, and timestamps are reassigned by the store;
// titles, owners, positions, anchors, and completion survive. Returns
// the number of tasks imported.
func Import(ctx context.Context, store Importer, f *File) (int, error) {
	for i, src := range f.Tasks {
		pos := src.Position
		t, err := store.Create(ctx, todo.CreateInput{
			Title:        src.Title,
			NoteID:       src.NoteID,
			Position:     &pos,
			SourceAnchor: src.SourceAnchor,
		})
		if err != nil {
			return i, fmt.Errorf("import task %q: %w", src.Title, err)
		}
		if src.Completed {
			if _, err := store.Toggle(ctx, t.ID); err != nil {
				return i, fmt.Errorf("import task %q: %w", src.Title, err)
			}
		}
	}
	return len(f.Tasks), nil
}
