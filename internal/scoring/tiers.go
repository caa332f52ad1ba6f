package scoring

import "math"

// tier awards points when a value reaches min.
type tier struct {
	min    float64
	points int
}

// band awards points when a value lies in [lo, hi].
type band struct {
	lo, hi float64
	points int
}

var unbounded = math.Inf(1)

// atLeast returns the points of the first tier the value reaches.
// Tiers are listed highest first.
func atLeast(v float64, tiers ...tier) int {
	for _, t := range tiers {
		if v >= t.min {
			return t.points
		}
	}
	return 0
}

// within returns the points of the first band containing the value.
func within(v float64, bands ...band) int {
	for _, b := range bands {
		if v >= b.lo && v <= b.hi {
			return b.points
		}
	}
	return 0
}

// bonus returns points when cond holds.
func bonus(cond bool, points int) int {
	if cond {
		return points
	}
	return 0
}

func capAt(v, limit int) int {
	return max(0, min(v, limit))
}

func f(n int) float64 {
	return float64(n)
}
