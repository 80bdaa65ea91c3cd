package common

type List[T any] struct {
	items []T
}

func (l *List[T]) Add(item T) {
	l.items = append(l.items, item)
}

func (l *List[T]) Items() []T {
	return l.items
}

func (l *List[T]) Len() int {
	return len(l.items)
}

// Last returns the most recently added item.
func (l *List[T]) Last() (T, bool) {
	if len(l.items) == 0 {
		var zero T
		return zero, false
	}
	return l.items[len(l.items)-1], true
}

// Queue is a FIFO over an owned slice, consumed front to back by a cursor.
// The underlying items are never modified.
type Queue[T any] struct {
	items []T
	next  int
}

// NewQueue copies items into a new queue.
func NewQueue[T any](items []T) *Queue[T] {
	owned := make([]T, len(items))
	copy(owned, items)
	return &Queue[T]{items: owned}
}

func (q *Queue[T]) Empty() bool {
	return q.next >= len(q.items)
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.next
}

// Pop removes and returns the front item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	if q.Empty() {
		return item, false
	}
	item = q.items[q.next]
	q.next++
	return item, true
}
