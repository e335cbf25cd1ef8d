package graph

import "fmt"

// Default arena capacities.
const (
	DefaultCurveCapacity = 20
	DefaultPatchCapacity = 15
)

// Graph is a bounded, append-only arena of element records. Indices are
// stable for the lifetime of the arena; there is no per-element removal,
// only Reset.
type Graph[T any] struct {
	items    []T
	capacity int
}

// New creates an empty arena holding at most capacity records.
func New[T any](capacity int) *Graph[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Graph[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a record and returns its index.
func (g *Graph[T]) Add(item T) (int, error) {
	if len(g.items) >= g.capacity {
		return -1, fmt.Errorf("graph holds %d of %d: %w", len(g.items), g.capacity, ErrCapacityExceeded)
	}
	g.items = append(g.items, item)
	return len(g.items) - 1, nil
}

// CheckIndex reports whether i addresses a live record.
func (g *Graph[T]) CheckIndex(i int) error {
	if i < 0 || i >= len(g.items) {
		return fmt.Errorf("index %d not in [0, %d): %w", i, len(g.items), ErrInvalidIndex)
	}
	return nil
}

// Get returns the record at i.
func (g *Graph[T]) Get(i int) (T, error) {
	if err := g.CheckIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return g.items[i], nil
}

// Set replaces the record at i.
func (g *Graph[T]) Set(i int, item T) error {
	if err := g.CheckIndex(i); err != nil {
		return err
	}
	g.items[i] = item
	return nil
}

// Items returns the live records in index order. The slice aliases the
// arena and must not be appended to.
func (g *Graph[T]) Items() []T {
	return g.items[:len(g.items):len(g.items)]
}

// Len returns the live count.
func (g *Graph[T]) Len() int {
	return len(g.items)
}

// Cap returns the fixed capacity.
func (g *Graph[T]) Cap() int {
	return g.capacity
}

// Full reports whether another Add would fail.
func (g *Graph[T]) Full() bool {
	return len(g.items) >= g.capacity
}

// Reset drops every record. Capacity is unchanged.
func (g *Graph[T]) Reset() {
	clear(g.items)
	g.items = g.items[:0]
}
