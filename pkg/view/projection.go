// Package view keeps a bounded, filtered, sorted in-memory projection
// of tasks consistent with a stream of change batches, re-fetching
// from the store only when a delta cannot be applied locally.
package view

import (
	"context"
	"sync"

	"notedown/pkg/todo"
)

// Lister is the read surface the projection refetches from. Both
// *todo.Store and *todo.Bus satisfy it.
type Lister interface {
	List(ctx context.Context, f todo.ListFilter) ([]todo.Task, error)
}

// Projection is a capped, filtered, sorted local copy of the task set.
// Added, Updated, and Removed deltas are applied incrementally;
// Reordered forces an authoritative refetch because the delta carries
// no per-task state and a partial reorder cannot be reconstructed
// locally.
type Projection struct {
	lister Lister
	filter todo.ListFilter
	limit  int

	mu    sync.RWMutex
	tasks []todo.Task
}

// New creates an empty projection. Call Refresh to load the initial
// state, then feed change batches to Apply.
func New(lister Lister, filter todo.ListFilter, limit int) *Projection {
	f := filter
	f.Limit = limit
	return &Projection{lister: lister, filter: f, limit: limit}
}

// Refresh replaces the projection wholesale with a fresh List result.
func (p *Projection) Refresh(ctx context.Context) error {
	tasks, err := p.lister.List(ctx, p.filter)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.tasks = tasks
	p.mu.Unlock()
	return nil
}

// Apply applies one change batch in order. Only Reordered touches the
// store; everything else is local.
func (p *Projection) Apply(ctx context.Context, batch []todo.Change) error {
	for _, c := range batch {
		switch c := c.(type) {
		case todo.Added:
			p.upsert(c.Task)
		case todo.Updated:
			p.upsert(c.Task)
		case todo.Removed:
			p.remove(c.ID)
		case todo.Reordered:
			if err := p.Refresh(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Tasks returns a snapshot of the current projection.
func (p *Projection) Tasks() []todo.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]todo.Task, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// upsert inserts or replaces the task, drops it if it no longer passes
// the filter, restores sort order, and truncates to the cap.
func (p *Projection) upsert(t todo.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(t.ID)
	if !p.filter.Match(t) {
		if i >= 0 {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
		}
		return
	}

	if i >= 0 {
		p.tasks[i] = t
	} else {
		p.tasks = append(p.tasks, t)
	}
	todo.SortTasks(p.tasks, p.filter.SortBy, p.filter.SortOrder)
	if p.limit > 0 && len(p.tasks) > p.limit {
		p.tasks = p.tasks[:p.limit]
	}
}

func (p *Projection) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.indexOf(id); i >= 0 {
		p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
	}
}

// indexOf returns the task's position in the projection, -1 if absent.
// Caller holds at least a read lock.
func (p *Projection) indexOf(id string) int {
	for i := range p.tasks {
		if p.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
