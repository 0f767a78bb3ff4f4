package cursor

import (
	"fmt"
	"slices"

	"fx-dashboard/src/helpers"
)

// -----------------------------------------------------------------------------
// InstrumentCursor tracks the current instrument in a fixed ordered set and
// moves cyclically through it.
// -----------------------------------------------------------------------------

type InstrumentCursor struct {
	instruments []string
	index       int
}

// -----------------------------------------------------------------------------

func NewInstrumentCursor(instruments []string) (*InstrumentCursor, error) {
	if len(instruments) == 0 {
		return nil, fmt.Errorf("instrument cursor needs at least one instrument")
	}
	return &InstrumentCursor{instruments: slices.Clone(instruments)}, nil
}

// -----------------------------------------------------------------------------

func (c *InstrumentCursor) Current() string {
	return c.instruments[c.index]
}

// Next advances to (i+1) mod N and returns the new current instrument.
func (c *InstrumentCursor) Next() string {
	c.index = (c.index + 1) % len(c.instruments)
	return c.Current()
}

// Previous moves to (i-1+N) mod N and returns the new current instrument.
func (c *InstrumentCursor) Previous() string {
	n := len(c.instruments)
	c.index = (c.index - 1 + n) % n
	return c.Current()
}

// -----------------------------------------------------------------------------

// Select jumps to instrument; unknown names leave the cursor untouched.
func (c *InstrumentCursor) Select(instrument string) error {
	i := slices.Index(c.instruments, instrument)
	if i < 0 {
		return fmt.Errorf("%w: %s", helpers.ErrUnknownInstrument, instrument)
	}
	c.index = i
	return nil
}

func (c *InstrumentCursor) Contains(instrument string) bool {
	return slices.Contains(c.instruments, instrument)
}

// Instruments returns a copy of the ordered set.
func (c *InstrumentCursor) Instruments() []string {
	return slices.Clone(c.instruments)
}
