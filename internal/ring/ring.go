// Package ring provides a fixed-capacity circular buffer.
package ring

// Ring is a fixed-capacity circular buffer. When full, the oldest
// values are evicted first.
//
// Ring is not safe for concurrent use; owners guard it with their own lock.
type Ring[T any] struct {
	items    []T
	head     int // next write position
	count    int
	capacity int
	dropped  uint64
}

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 10000

// New creates a ring buffer with the given capacity.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Push adds v, evicting the oldest value if the ring is full.
func (r *Ring[T]) Push(v T) {
	r.items[r.head] = v
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	} else {
		r.dropped++
	}
}

// Snapshot returns a copy of all values, oldest first.
func (r *Ring[T]) Snapshot() []T {
	return r.Last(r.count)
}

// Last returns a copy of the newest n values, oldest first.
func (r *Ring[T]) Last(n int) []T {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	start := (r.head - n + r.capacity) % r.capacity
	for i := 0; i < n; i++ {
		out[i] = r.items[(start+i)%r.capacity]
	}
	return out
}

// Reset drops all values without reallocating.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
	r.dropped = 0
}

// Len returns the number of values held.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int { return r.capacity }

// Dropped returns how many values were evicted since the last Reset.
func (r *Ring[T]) Dropped() uint64 { return r.dropped }
