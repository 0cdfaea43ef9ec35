package gains

import "form1325/internal/orders"

// Segment is a run of one security's orders that starts flat and ends at
// the first return to a flat position. The last segment of a security may
// end with an open position.
type Segment struct {
	Symbol   string
	Orders   []orders.Order
	Position int64
}

// Open reports whether the segment ends with shares still held or owed.
func (s Segment) Open() bool {
	return s.Position != 0
}

// Split cuts the chronologically sorted orders of a single security into
// segments at every point the running position returns to zero.
func Split(list []orders.Order) []Segment {
	var segments []Segment
	var current []orders.Order
	var position int64

	for _, o := range list {
		current = append(current, o)
		position += o.Delta()
		if position == 0 {
			segments = append(segments, Segment{Symbol: o.Symbol, Orders: current})
			current = nil
		}
	}
	if len(current) > 0 {
		segments = append(segments, Segment{Symbol: current[0].Symbol, Orders: current, Position: position})
	}
	return segments
}
