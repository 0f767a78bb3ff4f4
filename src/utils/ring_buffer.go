package utils

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer. Once full, Push overwrites the
// oldest element; eviction is FIFO by position, never by value.
// -----------------------------------------------------------------------------

type RingBuffer[T any] struct {
	data  []T
	head  int // oldest element
	count int
}

// NewRingBuffer allocates capacity slots; non-positive values fall back to
// DefaultBufferCapacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// -----------------------------------------------------------------------------

// Push appends v and reports whether the oldest element was overwritten.
func (rb *RingBuffer[T]) Push(v T) (evicted bool) {
	capacity := len(rb.data)
	if rb.count < capacity {
		rb.data[(rb.head+rb.count)%capacity] = v
		rb.count++
		return false
	}

	rb.data[rb.head] = v
	rb.head = (rb.head + 1) % capacity
	return true
}

// -----------------------------------------------------------------------------

// Tail copies the n newest elements, oldest first.
func (rb *RingBuffer[T]) Tail(n int) []T {
	n = min(max(n, 0), rb.count)
	out := make([]T, n)
	start := rb.head + rb.count - n
	for i := range out {
		out[i] = rb.data[(start+i)%len(rb.data)]
	}
	return out
}

// Items copies every element, oldest first.
func (rb *RingBuffer[T]) Items() []T { return rb.Tail(rb.count) }

func (rb *RingBuffer[T]) Len() int { return rb.count }

func (rb *RingBuffer[T]) Cap() int { return len(rb.data) }

// Reset empties the buffer and releases references held by old elements.
func (rb *RingBuffer[T]) Reset() {
	clear(rb.data)
	rb.head, rb.count = 0, 0
}
