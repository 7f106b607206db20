package lazykepler

import (
	"fmt"
	"math"
	"testing"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	distε  = 1e-9
	angleε = 1e-9 // degrees
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinAbsOrRel(a[i], b[i], distε, distε) {
			return false
		}
	}
	return true
}

// anglesEqual returns whether two angles in degrees are equal modulo 360.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff < angleε || 360-diff < angleε {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", diff)
}

var identity = mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

func ptr(v float64) *float64 {
	return &v
}

// circular is a circular orbit of radius r in the reference plane, periapsis on the x-axis.
func circular(r, period, m0 float64) Elements {
	return Elements{Perihelion: r, Aphelion: r, Period: period, MeanAnomaly: ptr(m0)}
}
