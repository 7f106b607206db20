package lazykepler

import (
	"fmt"

	"github.com/gonum/floats"
)

// Sample is a position at a given time.
type Sample struct {
	T float64
	R []float64
}

// Position returns the position of the named body at time t.
func (c *Catalog) Position(body string, t float64) ([]float64, error) {
	o, err := c.Orbit(body)
	if err != nil {
		return nil, err
	}
	return o.Position(t)
}

// Distance returns the distance between two bodies at time t.
// An empty second body measures from the origin: the origin body if it is in the
// catalog, or the focus otherwise.
func (c *Catalog) Distance(a, b string, t float64) (float64, error) {
	rA, err := c.Position(a, t)
	if err != nil {
		return 0, err
	}
	rB, err := c.originOr(b, t)
	if err != nil {
		return 0, err
	}
	return floats.Distance(rA, rB, 2), nil
}

func (c *Catalog) originOr(b string, t float64) ([]float64, error) {
	if b != "" {
		return c.Position(b, t)
	}
	if c.Has(c.origin) {
		return c.Position(c.origin, t)
	}
	return []float64{0, 0, 0}, nil
}

// CommDelay returns the light travel time between two bodies at time t, in the time unit.
// Light-delay is not computed (MissingConstantError) when c is unknown for the unit system.
func (c *Catalog) CommDelay(a, b string, t float64) (float64, error) {
	speed, err := c.units.SpeedOfLight()
	if err != nil {
		return 0, err
	}
	dist, err := c.Distance(a, b, t)
	if err != nil {
		return 0, err
	}
	return dist / speed, nil
}

// Acceleration returns the gravitational acceleration of the central body felt by the
// named body at time t, in units of Earth's surface gravity.
func (c *Catalog) Acceleration(body string, t float64) (float64, error) {
	g, err := c.units.SurfaceGravity()
	if err != nil {
		return 0, err
	}
	o, err := c.Orbit(body)
	if err != nil {
		return 0, err
	}
	r, err := o.Radius(t)
	if err != nil {
		return 0, err
	}
	return o.GM() / (r * r) / g, nil
}

// Trajectory samples the orbit of the named body at evenly spaced times across one period,
// starting at t=0.
func (c *Catalog) Trajectory(body string, samples int) ([]Sample, error) {
	o, err := c.Orbit(body)
	if err != nil {
		return nil, err
	}
	return o.Trajectory(samples)
}

// Trajectory samples this orbit at evenly spaced times across one period, starting at t=0.
func (o *Orbit) Trajectory(samples int) ([]Sample, error) {
	if samples < 1 {
		return nil, fmt.Errorf("invalid number of samples %d", samples)
	}
	traj := make([]Sample, samples)
	for i := range traj {
		t := o.period * float64(i) / float64(samples)
		R, err := o.Position(t)
		if err != nil {
			return nil, err
		}
		traj[i] = Sample{T: t, R: R}
	}
	return traj, nil
}
