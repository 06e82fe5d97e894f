package queue

import (
	"sort"
	"sync"
)

// Queue is a generic thread-safe FIFO queue.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the first item. Returns zero value if empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// PopN removes and returns up to n items from the front of the queue.
// Returns nil when the queue is empty or n is not positive.
func (q *Queue[T]) PopN(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]T, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	return batch
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear removes all items from the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// GetAndEmpty returns all items and clears the queue.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}

// StepMap stores values keyed by step index. Sweep workers finish steps out
// of order; Ordered reassembles them into ascending step order.
type StepMap[T any] struct {
	mu    sync.RWMutex
	steps map[int]T
}

// NewStepMap creates an empty step map.
func NewStepMap[T any]() *StepMap[T] {
	return &StepMap[T]{steps: make(map[int]T)}
}

// Set stores the value for a step, replacing any previous value.
func (m *StepMap[T]) Set(step int, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step] = v
}

// Get returns the value stored for a step.
func (m *StepMap[T]) Get(step int) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.steps[step]
	return v, ok
}

// Len returns the number of stored steps.
func (m *StepMap[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.steps)
}

// Ordered returns all values sorted by ascending step index.
func (m *StepMap[T]) Ordered() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]int, 0, len(m.steps))
	for k := range m.steps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.steps[k])
	}
	return out
}
