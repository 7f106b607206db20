package lazykepler

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/meeus/v3/iterate"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

const (
	// DefaultPlaces is the number of decimal places (in radians) to which the eccentric anomaly is solved.
	DefaultPlaces = 10
	// DefaultMaxIterations caps the Newton iteration.
	DefaultMaxIterations = 50
)

// DefaultSolver is used by orbits built without an explicit solver.
var DefaultSolver AnomalySolver = NewtonSolver{Places: DefaultPlaces, MaxIterations: DefaultMaxIterations}

// Anomaly is the solution of Kepler's equation for a given mean anomaly.
type Anomaly struct {
	Eccentric float64 // radians
	CosTrue   float64
	SinTrue   float64
}

// True returns the true anomaly ν in radians, in (-π, π].
func (a Anomaly) True() float64 {
	return math.Atan2(a.SinTrue, a.CosTrue)
}

// AnomalySolver solves Kepler's equation for a mean anomaly (in degrees) and an eccentricity in [0, 1).
type AnomalySolver interface {
	Solve(meanAnomaly, e float64) (Anomaly, error)
}

// NewtonSolver iterates E1 = E0 + (M + e sin(E0) - E0) / (1 - e cos(E0)) with Steele's
// step limit of ±0.5 rad until two iterates agree to Places decimal places.
// Failing to do so within MaxIterations returns a NumericalError.
type NewtonSolver struct {
	Places        int
	MaxIterations int
}

// Solve implements the AnomalySolver interface.
func (s NewtonSolver) Solve(meanAnomaly, e float64) (Anomaly, error) {
	M := unit.AngleFromDeg(normalizeDegrees(meanAnomaly)).Rad()
	if e == 0 {
		return anomalyFromEccentric(M, e), nil
	}
	better := func(E0 float64) float64 {
		se, ce := math.Sincos(E0)
		d := (M + e*se - E0) / (1 - e*ce)
		if d > .5 {
			d = .5
		} else if d < -.5 {
			d = -.5
		}
		return E0 + d
	}
	// Starting at π avoids the slow crawl away from M for very eccentric orbits.
	start := M
	if e > 0.8 {
		start = math.Pi
	}
	E, err := iterate.DecimalPlaces(better, start, s.Places, s.MaxIterations)
	if err != nil {
		return Anomaly{}, &NumericalError{MeanAnomaly: meanAnomaly, Eccentricity: e, Err: err}
	}
	return anomalyFromEccentric(E, e), nil
}

func (s NewtonSolver) String() string {
	return fmt.Sprintf("newton(places=%d, max=%d)", s.Places, s.MaxIterations)
}

// BisectionSolver solves Kepler's equation by binary search (Meeus, p. 206). It always
// converges to full float64 precision, at the cost of 53 iterations per solve.
type BisectionSolver struct{}

// Solve implements the AnomalySolver interface.
func (BisectionSolver) Solve(meanAnomaly, e float64) (Anomaly, error) {
	E := kepler.Kepler3(e, unit.AngleFromDeg(normalizeDegrees(meanAnomaly)))
	return anomalyFromEccentric(E.Rad(), e), nil
}

func (BisectionSolver) String() string {
	return "bisection"
}

// SolverFromString returns the solver from its name.
func SolverFromString(name string) (AnomalySolver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "newton":
		return DefaultSolver, nil
	case "bisection", "binary":
		return BisectionSolver{}, nil
	default:
		return nil, fmt.Errorf("unknown anomaly solver '%s'", name)
	}
}

// anomalyFromEccentric converts the eccentric anomaly E (radians) into the true anomaly trig functions.
func anomalyFromEccentric(E, e float64) Anomaly {
	sinE, cosE := math.Sincos(E)
	denom := 1 - e*cosE
	return Anomaly{
		Eccentric: E,
		CosTrue:   (cosE - e) / denom,
		SinTrue:   math.Sqrt(1-e*e) * sinE / denom,
	}
}
