package core

import (
	"math"
	"testing"
)

func TestInterval_ContainsAndSurrounds(t *testing.T) {
	interval := NewInterval(0, 1)

	tests := []struct {
		name      string
		x         float64
		contains  bool
		surrounds bool
	}{
		{"below", -0.1, false, false},
		{"at min", 0, true, false},
		{"inside", 0.5, true, true},
		{"at max", 1, true, false},
		{"above", 1.1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interval.Contains(tt.x); got != tt.contains {
				t.Errorf("Contains(%f) = %t, expected %t", tt.x, got, tt.contains)
			}
			if got := interval.Surrounds(tt.x); got != tt.surrounds {
				t.Errorf("Surrounds(%f) = %t, expected %t", tt.x, got, tt.surrounds)
			}
		})
	}
}

func TestInterval_Clamp(t *testing.T) {
	interval := NewInterval(0, 0.999)
	tests := []struct {
		x, expected float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{1, 0.999},
	}
	for _, tt := range tests {
		if got := interval.Clamp(tt.x); got != tt.expected {
			t.Errorf("Clamp(%f) = %f, expected %f", tt.x, got, tt.expected)
		}
	}
}

func TestInterval_EmptyAndUniverse(t *testing.T) {
	empty := EmptyInterval()
	universe := UniverseInterval()

	for _, x := range []float64{math.Inf(-1), -1e300, 0, 1e300, math.Inf(1)} {
		if empty.Contains(x) {
			t.Errorf("Empty interval should not contain %g", x)
		}
		if !universe.Contains(x) {
			t.Errorf("Universe interval should contain %g", x)
		}
	}

	if empty.Size() >= 0 {
		t.Errorf("Empty interval should have negative size, got %f", empty.Size())
	}
	if !math.IsInf(universe.Size(), 1) {
		t.Errorf("Universe interval should have infinite size, got %f", universe.Size())
	}
}
