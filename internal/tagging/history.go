package tagging

// History is a fixed-capacity ring buffer of per-frame observations.
// Once full, each Add overwrites the oldest entry.
type History[T any] struct {
	items    []T
	capacity int
	head     int // next write position
	size     int
}

// NewHistory creates a history with the given capacity.
func NewHistory[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &History[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an entry, evicting the oldest when at capacity.
func (h *History[T]) Add(v T) {
	h.items[h.head] = v
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Previous returns the entry n steps back; Previous(1) is the newest.
func (h *History[T]) Previous(n int) (T, bool) {
	var zero T
	if n < 1 || n > h.size {
		return zero, false
	}
	idx := (h.head - n + h.capacity) % h.capacity
	return h.items[idx], true
}

// Size returns the number of stored entries.
func (h *History[T]) Size() int { return h.size }

// Capacity returns the maximum number of entries.
func (h *History[T]) Capacity() int { return h.capacity }

// Recent returns up to n of the newest entries, oldest first.
func (h *History[T]) Recent(n int) []T {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		idx := (h.head - n + i + h.capacity) % h.capacity
		out[i] = h.items[idx]
	}
	return out
}
