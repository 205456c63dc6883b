// Package querycache holds the per-status todo lists for one session.
//
// A list is fetched once and then only refetched after it is invalidated.
// Every fetch gets a generation number; a result is kept only if no newer
// fetch for the same status has started since, so the last fetch wins.
package querycache

import (
	"sync"

	"github.com/idilsaglam/todoboard/internal/model"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Entry is a snapshot of one status list.
type Entry struct {
	Status model.Status
	State  State
	Items  []model.Todo
	Err    error
	// Fetching is set while a refetch runs on top of already loaded items.
	Fetching bool
}

type entry struct {
	state    State
	items    []model.Todo
	err      error
	stale    bool
	inFlight bool
	gen      uint64
}

type Cache struct {
	mu      sync.Mutex
	entries map[model.Status]*entry
}

func New() *Cache {
	c := &Cache{entries: make(map[model.Status]*entry, len(model.Statuses))}
	for _, s := range model.Statuses {
		c.entries[s] = &entry{}
	}
	return c
}

// Begin reserves a fetch for status. ok is false when the list is already
// loaded and fresh, or a fetch for the current generation is running.
func (c *Cache) Begin(status model.Status) (gen uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, known := c.entries[status]
	if !known {
		return 0, false
	}
	if e.inFlight && !e.stale {
		return 0, false
	}
	if e.state != Idle && !e.stale {
		return 0, false
	}
	e.gen++
	e.stale = false
	e.inFlight = true
	if e.state == Idle {
		e.state = Loading
	}
	return e.gen, true
}

// Resolve stores a fetch result. It reports false and drops the result when
// gen is no longer the latest generation for status.
func (c *Cache) Resolve(status model.Status, gen uint64, items []model.Todo, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, known := c.entries[status]
	if !known || gen != e.gen {
		return false
	}
	e.inFlight = false
	if err != nil {
		e.state = Failed
		e.err = err
		e.items = nil
		return true
	}
	e.state = Ready
	e.err = nil
	e.items = append([]model.Todo(nil), items...)
	return true
}

// Invalidate marks the given lists stale and returns the distinct ones that
// now need a fetch, in board order. Unknown statuses are ignored.
func (c *Cache) Invalidate(statuses ...model.Status) []model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	marked := make(map[model.Status]bool, len(statuses))
	for _, s := range statuses {
		if e, ok := c.entries[s]; ok {
			e.stale = true
			marked[s] = true
		}
	}
	out := make([]model.Status, 0, len(marked))
	for _, s := range model.Statuses {
		if marked[s] {
			out = append(out, s)
		}
	}
	return out
}

func (c *Cache) Entry(status model.Status) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[status]
	if !ok {
		return Entry{Status: status}
	}
	return Entry{
		Status:   status,
		State:    e.state,
		Items:    append([]model.Todo(nil), e.items...),
		Err:      e.err,
		Fetching: e.inFlight && e.state != Loading,
	}
}
