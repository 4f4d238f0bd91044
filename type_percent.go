package treasury

import "fmt"

// Percent is a score or ratio expressed in percentage points.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// Clamp bounds the value to [lo, hi].
func (p Percent) Clamp(lo, hi Percent) Percent {
	if p < lo {
		return lo
	}
	if p > hi {
		return hi
	}
	return p
}
