// Package ring provides a fixed-capacity circular buffer.
package ring

// Buffer keeps the last capacity values pushed into it.
// It is not safe for concurrent use; callers guard it with their own lock.
type Buffer[T any] struct {
	items    []T
	capacity int
	head     int
	count    int
}

// New creates a buffer holding at most capacity values. Capacity below one is raised to one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Buffer[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends v. When the buffer is full the oldest value is overwritten and returned.
func (b *Buffer[T]) Push(v T) (evicted T, ok bool) {
	if b.count < b.capacity {
		b.items = append(b.items, v)
		b.count++

		return evicted, false
	}

	evicted = b.items[b.head]
	b.items[b.head] = v
	b.head = (b.head + 1) % b.capacity

	return evicted, true
}

// Items returns a copy of the values, oldest first.
func (b *Buffer[T]) Items() []T {
	if b.count == 0 {
		return nil
	}

	out := make([]T, b.count)
	if b.count < b.capacity {
		copy(out, b.items)

		return out
	}

	n := copy(out, b.items[b.head:])
	copy(out[n:], b.items[:b.head])

	return out
}

// Newest returns up to n values, newest first. n <= 0 returns everything.
func (b *Buffer[T]) Newest(n int) []T {
	if n <= 0 || n > b.count {
		n = b.count
	}

	out := make([]T, 0, n)
	for i := range n {
		out = append(out, b.at(b.count-1-i))
	}

	return out
}

// Last returns the most recently pushed value.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}

	return b.at(b.count - 1), true
}

// Len returns the number of stored values.
func (b *Buffer[T]) Len() int {
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// at returns the i-th value in insertion order, 0 being the oldest.
func (b *Buffer[T]) at(i int) T {
	if b.count < b.capacity {
		return b.items[i]
	}

	return b.items[(b.head+i)%b.capacity]
}
