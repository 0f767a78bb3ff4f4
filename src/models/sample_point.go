package models

import "time"

// MSamplePoint is one rendered point of an instrument's series.
type MSamplePoint struct {
	TimestampUTC time.Time `json:"ts_utc"`
	Value        float64   `json:"rate"`
}

// -----------------------------------------------------------------------------

// MDateRange is an optional history filter. Both bounds nil means no filter.
type MDateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// IsEmpty reports whether neither bound is set.
func (r MDateRange) IsEmpty() bool {
	return r.Start == nil && r.End == nil
}

// -----------------------------------------------------------------------------

// MLabeledPoint is the shape handed to the rendering collaborator.
type MLabeledPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
