package lazykepler

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Link is the line of sight between two bodies at a given time.
type Link struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	T         float64 `json:"t"`
	Range     float64 `json:"range"`     // distance unit
	RangeRate float64 `json:"rangeRate"` // distance per time unit, positive when the bodies move apart
}

// Link returns the range and range rate between two bodies at time t.
// As with Distance, an empty second body is the origin.
func (c *Catalog) Link(a, b string, t float64) (Link, error) {
	a, b = NormalizeName(a), NormalizeName(b)
	rA, vA, err := c.stateOf(a, t)
	if err != nil {
		return Link{}, err
	}
	rB, vB, err := c.stateOf(b, t)
	if err != nil {
		return Link{}, err
	}
	ρ := make([]float64, 3)
	vDiff := make([]float64, 3)
	for i := 0; i < 3; i++ {
		ρ[i] = rA[i] - rB[i]
		vDiff[i] = vA[i] - vB[i]
	}
	l := Link{From: a, To: b, T: t, Range: Norm(ρ)}
	if l.To == "" {
		l.To = c.origin
	}
	if l.Range > 0 {
		l.RangeRate = mat64.Dot(mat64.NewVector(3, ρ), mat64.NewVector(3, vDiff)) / l.Range
	}
	return l, nil
}

// stateOf returns the state of a body, or of the origin when the name is empty.
// The origin is the focus, at rest, unless the origin body is in the catalog.
func (c *Catalog) stateOf(body string, t float64) (R, V []float64, err error) {
	if body == "" {
		if !c.Has(c.origin) {
			return []float64{0, 0, 0}, []float64{0, 0, 0}, nil
		}
		body = c.origin
	}
	o, err := c.Orbit(body)
	if err != nil {
		return nil, nil, err
	}
	return o.State(t)
}

// LinkCSVHeader names the columns of Link.CSV.
const LinkCSVHeader = "t,range,rangeRate"

// CSV returns the link as CSV (does *not* include the new line).
func (l Link) CSV() string {
	return fmt.Sprintf("%f,%f,%f", l.T, l.Range, l.RangeRate)
}

func (l Link) String() string {
	return fmt.Sprintf("%s-%s@%g", l.From, l.To, l.T)
}
