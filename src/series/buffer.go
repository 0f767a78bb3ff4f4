package series

import (
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Buffer holds the rolling series of the active instrument.
//
// Points are kept in arrival order; nothing here sorts or dedupes. Once the
// capacity is reached every append evicts the oldest point by position.
// A Buffer is owned by a single goroutine (the sync controller loop).
// -----------------------------------------------------------------------------

type Buffer struct {
	instrument string
	ring       *utils.RingBuffer[models.MSamplePoint]
}

// -----------------------------------------------------------------------------

func NewBuffer(capacity int) *Buffer {
	return &Buffer{ring: utils.NewRingBuffer[models.MSamplePoint](capacity)}
}

// -----------------------------------------------------------------------------

// Reset empties the buffer and binds it to instrument.
func (b *Buffer) Reset(instrument string) {
	b.instrument = instrument
	b.ring.Reset()
}

// -----------------------------------------------------------------------------

// AppendMany appends points in the given order. Returns how many were evicted.
func (b *Buffer) AppendMany(points []models.MSamplePoint) int {
	evicted := 0
	for _, p := range points {
		if b.ring.Push(p) {
			evicted++
		}
	}
	return evicted
}

// -----------------------------------------------------------------------------

// AppendOne appends a single point. Returns true if the oldest was evicted.
func (b *Buffer) AppendOne(point models.MSamplePoint) bool {
	return b.ring.Push(point)
}

// -----------------------------------------------------------------------------

// Snapshot returns an ordered copy; later mutations do not affect it.
func (b *Buffer) Snapshot() []models.MSamplePoint {
	return b.ring.Items()
}

func (b *Buffer) Instrument() string { return b.instrument }
func (b *Buffer) Len() int           { return b.ring.Len() }
func (b *Buffer) Capacity() int      { return b.ring.Cap() }
