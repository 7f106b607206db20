package lazykepler

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// Axis names one of the three fixed axes of the reference frame.
type Axis uint8

const (
	// X is the reference direction (by convention, from the Sun to Earth at the vernal equinox).
	X Axis = iota
	// Y completes the right-handed frame. Orbit orientation never rotates about it.
	Y
	// Z is the normal of the reference plane.
	Z
)

const (
	// ReferenceDirection is an alias of X.
	ReferenceDirection = X
	// ReferencePlaneNormal is an alias of Z.
	ReferencePlaneNormal = Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Rotation returns the active right-handed rotation by θ degrees about the provided axis.
// Panics on an unknown axis.
func Rotation(θ float64, axis Axis) *mat64.Dense {
	s, c := math.Sincos(θ * deg2rad)
	switch axis {
	case X:
		return mat64.NewDense(3, 3, []float64{
			1, 0, 0,
			0, c, -s,
			0, s, c})
	case Y:
		// The 2D block acts on (z, x) so that the frame stays right-handed.
		return mat64.NewDense(3, 3, []float64{
			c, 0, s,
			0, 1, 0,
			-s, 0, c})
	case Z:
		return mat64.NewDense(3, 3, []float64{
			c, -s, 0,
			s, c, 0,
			0, 0, 1})
	}
	panic(fmt.Errorf("unknown rotation axis %s", axis))
}

// OrbitFrame returns R_Z(Ω)·R_X(i)·R_Z(ω), which maps a vector in the orbital plane
// (periapsis on the x-axis, focus at the origin) into the reference frame.
// All angles are in degrees.
func OrbitFrame(ω, i, Ω float64) *mat64.Dense {
	var tilted, frame mat64.Dense
	tilted.Mul(Rotation(i, ReferenceDirection), Rotation(ω, ReferencePlaneNormal))
	frame.Mul(Rotation(Ω, ReferencePlaneNormal), &tilted)
	return &frame
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat64.Matrix, v []float64) []float64 {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}
