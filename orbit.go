package lazykepler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gonum/matrix/mat64"
)

// Elements are the classical elements of a closed Keplerian orbit as read from a system file.
// Distances share one unit across all bodies, as do the period and the query times.
// All angles are in degrees.
type Elements struct {
	Perihelion               float64  `mapstructure:"perihelion" json:"perihelion"`
	Aphelion                 float64  `mapstructure:"aphelion" json:"aphelion"`
	Eccentricity             float64  `mapstructure:"eccentricity" json:"eccentricity"`
	ArgumentOfPeriapsis      float64  `mapstructure:"argumentOfPeriapsis" json:"argumentOfPeriapsis"`
	Inclination              float64  `mapstructure:"inclination" json:"inclination"`
	LongitudeOfAscendingNode float64  `mapstructure:"longitudeOfAscendingNode" json:"longitudeOfAscendingNode"`
	Period                   float64  `mapstructure:"period" json:"period"`
	MeanAnomaly              *float64 `mapstructure:"meanAnomaly" json:"meanAnomaly,omitempty"` // at t=0; random when nil
	Visual                   string   `mapstructure:"visual" json:"visual,omitempty"`
}

// clone returns a copy which does not share its mean anomaly with el.
func (el Elements) clone() Elements {
	if el.MeanAnomaly != nil {
		m := *el.MeanAnomaly
		el.MeanAnomaly = &m
	}
	return el
}

// validate checks everything but the mean anomaly.
func (el Elements) validate() error {
	if math.IsNaN(el.Eccentricity) || el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return &ConstructionError{Field: "eccentricity", Value: el.Eccentricity, Reason: "must be in [0, 1)"}
	}
	if !(el.Perihelion > 0) || math.IsInf(el.Perihelion, 0) {
		return &ConstructionError{Field: "perihelion", Value: el.Perihelion, Reason: "must be positive and finite"}
	}
	if !(el.Aphelion > 0) || math.IsInf(el.Aphelion, 0) {
		return &ConstructionError{Field: "aphelion", Value: el.Aphelion, Reason: "must be positive and finite"}
	}
	if el.Aphelion < el.Perihelion {
		return &ConstructionError{Field: "aphelion", Value: el.Aphelion, Reason: "cannot be less than perihelion"}
	}
	if !(el.Period > 0) || math.IsInf(el.Period, 0) {
		return &ConstructionError{Field: "period", Value: el.Period, Reason: "must be positive and finite"}
	}
	for name, angle := range map[string]float64{
		"argumentOfPeriapsis":      el.ArgumentOfPeriapsis,
		"inclination":              el.Inclination,
		"longitudeOfAscendingNode": el.LongitudeOfAscendingNode,
	} {
		if math.IsNaN(angle) || math.IsInf(angle, 0) {
			return &ConstructionError{Field: name, Value: angle, Reason: "must be finite"}
		}
	}
	if el.MeanAnomaly != nil && (math.IsNaN(*el.MeanAnomaly) || math.IsInf(*el.MeanAnomaly, 0)) {
		return &ConstructionError{Field: "meanAnomaly", Value: *el.MeanAnomaly, Reason: "must be finite"}
	}
	return nil
}

// Orbit is a closed Keplerian orbit. It is immutable once built and safe for concurrent use.
type Orbit struct {
	a, e, period, m0 float64
	orientation      *mat64.Dense
	visual           string
	solver           AnomalySolver
}

// NewOrbit builds an orbit from its elements.
// When the elements carry no mean anomaly, one is drawn uniformly from [0, 360) with rng.
// A nil solver uses DefaultSolver.
func NewOrbit(el Elements, solver AnomalySolver, rng *rand.Rand) (*Orbit, error) {
	if err := el.validate(); err != nil {
		return nil, err
	}
	var m0 float64
	if el.MeanAnomaly != nil {
		m0 = *el.MeanAnomaly
	} else if rng != nil {
		m0 = rng.Float64() * 360
	} else {
		return nil, &ConstructionError{Field: "meanAnomaly", Value: math.NaN(), Reason: "is unset and no random source was provided"}
	}
	if solver == nil {
		solver = DefaultSolver
	}
	return &Orbit{
		a:           (el.Perihelion + el.Aphelion) / 2,
		e:           el.Eccentricity,
		period:      el.Period,
		m0:          m0,
		orientation: OrbitFrame(el.ArgumentOfPeriapsis, el.Inclination, el.LongitudeOfAscendingNode),
		visual:      el.Visual,
		solver:      solver,
	}, nil
}

// SemimajorAxis returns the semi major axis.
func (o *Orbit) SemimajorAxis() float64 {
	return o.a
}

// Eccentricity returns the eccentricity.
func (o *Orbit) Eccentricity() float64 {
	return o.e
}

// Period returns the orbital period.
func (o *Orbit) Period() float64 {
	return o.period
}

// MeanAnomalyAtEpoch returns the mean anomaly at t=0 in degrees.
func (o *Orbit) MeanAnomalyAtEpoch() float64 {
	return o.m0
}

// Visual returns the display hint of this orbit, if any.
func (o *Orbit) Visual() string {
	return o.visual
}

// Orientation returns a copy of the orbital plane to reference frame rotation.
func (o *Orbit) Orientation() *mat64.Dense {
	return mat64.DenseCopyOf(o.orientation)
}

// SemiParameter returns the semi parameter p.
func (o *Orbit) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Periapsis returns the periapsis radius.
func (o *Orbit) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Apoapsis returns the apoapsis radius.
func (o *Orbit) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// GM returns the gravitational parameter implied by Kepler's third law, μ = 4π²a³/P²,
// in distance³/time² units.
func (o *Orbit) GM() float64 {
	n := 2 * math.Pi / o.period
	return n * n * o.a * o.a * o.a
}

// MeanAnomaly returns the mean anomaly in degrees, in [0, 360), at time t.
// It is NaN when t is not finite.
func (o *Orbit) MeanAnomaly(t float64) float64 {
	return normalizeDegrees(360/o.period*floorMod(t, o.period) + o.m0)
}

// anomaly solves Kepler's equation at time t.
func (o *Orbit) anomaly(t float64) (Anomaly, error) {
	if err := CheckTime(t); err != nil {
		return Anomaly{}, err
	}
	return o.solver.Solve(o.MeanAnomaly(t), o.e)
}

// Radius returns the distance from the focus at time t.
func (o *Orbit) Radius(t float64) (float64, error) {
	ν, err := o.anomaly(t)
	if err != nil {
		return 0, err
	}
	return o.SemiParameter() / (1 + o.e*ν.CosTrue), nil
}

// Position returns the position in the reference frame at time t.
func (o *Orbit) Position(t float64) ([]float64, error) {
	ν, err := o.anomaly(t)
	if err != nil {
		return nil, err
	}
	r := o.SemiParameter() / (1 + o.e*ν.CosTrue)
	return MxV33(o.orientation, []float64{r * ν.CosTrue, r * ν.SinTrue, 0}), nil
}

// State returns the position and velocity in the reference frame at time t.
// The velocity is in distance per time unit.
func (o *Orbit) State(t float64) (R, V []float64, err error) {
	ν, err := o.anomaly(t)
	if err != nil {
		return nil, nil, err
	}
	p := o.SemiParameter()
	r := p / (1 + o.e*ν.CosTrue)
	R = MxV33(o.orientation, []float64{r * ν.CosTrue, r * ν.SinTrue, 0})
	v := math.Sqrt(o.GM() / p)
	V = MxV33(o.orientation, []float64{-v * ν.SinTrue, v * (o.e + ν.CosTrue), 0})
	return R, V, nil
}

// String implements the stringer interface.
func (o *Orbit) String() string {
	return fmt.Sprintf("a=%.4f e=%.4f P=%.3f M0=%.3f", o.a, o.e, o.period, o.m0)
}
