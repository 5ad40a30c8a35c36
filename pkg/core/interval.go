package core

import "math"

// Interval is a closed range of real numbers [Min, Max]
type Interval struct {
	Min, Max float64
}

// NewInterval creates an interval from min to max
func NewInterval(min, max float64) Interval {
	return Interval{Min: min, Max: max}
}

// EmptyInterval contains nothing
func EmptyInterval() Interval {
	return Interval{Min: math.Inf(1), Max: math.Inf(-1)}
}

// UniverseInterval contains every real number
func UniverseInterval() Interval {
	return Interval{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Size returns Max - Min
func (i Interval) Size() float64 {
	return i.Max - i.Min
}

// Contains reports whether Min <= x <= Max
func (i Interval) Contains(x float64) bool {
	return i.Min <= x && x <= i.Max
}

// Surrounds reports whether Min < x < Max
func (i Interval) Surrounds(x float64) bool {
	return i.Min < x && x < i.Max
}

// Clamp bounds x to [Min, Max]
func (i Interval) Clamp(x float64) float64 {
	if x < i.Min {
		return i.Min
	}
	if x > i.Max {
		return i.Max
	}
	return x
}
