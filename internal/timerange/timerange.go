package timerange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("end must be after start")

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open ranges intersect. Ranges that
// only touch at a boundary do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
