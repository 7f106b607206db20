package lazykepler

import (
	"math"

	"github.com/gonum/floats"
	"github.com/soniakeys/unit"
)

const (
	deg2rad = math.Pi / 180
)

// Norm returns the Euclidean norm of a vector.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// floorMod returns x modulo y in [0, y) for a positive y, so that negative values of x
// wrap toward the previous period instead of toward zero.
func floorMod(x, y float64) float64 {
	return unit.PMod(x, y)
}

// normalizeDegrees wraps an angle into [0, 360).
func normalizeDegrees(a float64) float64 {
	a = floorMod(a, 360)
	if a >= 360 {
		// floorMod(-tiny, 360) rounds to exactly 360.
		a = 0
	}
	return a
}
