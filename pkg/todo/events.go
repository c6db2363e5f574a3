package todo

// Change is a single typed delta emitted after a mutation. It is a
// closed sum: the only implementations are Added, Updated, Removed,
// and Reordered, so a type switch over them is exhaustive.
type Change interface {
	isChange()
}

// Added reports a newly created task.
type Added struct {
	Task Task
}

// Updated reports a task whose fields changed, including completion
// flips.
type Updated struct {
	Task Task
}

// Removed reports a deleted task. Cascading deletes emit one Removed
// per affected id rather than a single bulk event, so subscribers
// never need a separate code path for bulk removal.
type Removed struct {
	ID string
}

// Reordered carries the new authoritative global order. It carries no
// per-task field state; consumers that need it must re-list.
type Reordered struct {
	IDs []string
}

func (Added) isChange()     {}
func (Updated) isChange()   {}
func (Removed) isChange()   {}
func (Reordered) isChange() {}
