package lazykepler

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

// opposed holds two bodies on the same circular orbit of radius 1, half an orbit apart.
func opposed(t *testing.T, units Units) *Catalog {
	c, err := NewCatalog(map[string]Elements{
		"alpha": circular(1, 360, 0),
		"beta":  circular(1, 360, 180),
	}, CatalogOptions{Units: units})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestQueryPosition(t *testing.T) {
	c := opposed(t, Units{})
	R, err := c.Position("Alpha", 90)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(R, []float64{0, 1, 0}) {
		t.Fatalf("R = %v", R)
	}
	if _, err := c.Position("gamma", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var nf *NotFoundError
	if _, err := c.Position("gamma", 0); !errors.As(err, &nf) || nf.Body != "Gamma" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestQueryDistance(t *testing.T) {
	c := opposed(t, Units{})
	for dt := 0.0; dt < 720; dt += 45 {
		d, err := c.Distance("alpha", "beta", dt)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualWithinAbs(d, 2, 1e-12) {
			t.Fatalf("distance %f at %f", d, dt)
		}
		back, _ := c.Distance("beta", "alpha", dt)
		if d != back {
			t.Fatal("distance is not symmetric")
		}
		self, _ := c.Distance("alpha", "alpha", dt)
		if self != 0 {
			t.Fatalf("distance to self is %f", self)
		}
	}
	// The Sun is not in this catalog: single body distances are from the focus.
	if d, _ := c.Distance("alpha", "", 10); !floats.EqualWithinAbs(d, 1, 1e-12) {
		t.Fatalf("distance to the focus is %f", d)
	}
	if _, err := c.Distance("alpha", "gamma", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var ite *InvalidTimeError
	if d, err := c.Distance("alpha", "", math.NaN()); !errors.As(err, &ite) || d != 0 {
		t.Fatalf("expected an invalid time, got %f, %v", d, err)
	}
	if _, err := c.Acceleration("alpha", math.Inf(1)); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected an invalid time, got %v", err)
	}
}

func TestQueryDistanceToOriginBody(t *testing.T) {
	c, err := NewCatalog(map[string]Elements{
		"alpha": circular(1, 360, 0),
		"beta":  circular(1, 360, 180),
	}, CatalogOptions{Origin: "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := c.Distance("alpha", "", 0); !floats.EqualWithinAbs(d, 2, 1e-12) {
		t.Fatalf("distance to the origin body is %f", d)
	}
}

func TestQueryCommDelay(t *testing.T) {
	c := opposed(t, Units{})
	delay, err := c.CommDelay("alpha", "beta", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(delay, 2/173.1, 1e-12) {
		t.Fatalf("delay = %f days", delay)
	}

	c = opposed(t, Units{Time: "year", Dist: "ly"})
	if _, err := c.CommDelay("alpha", "beta", 0); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
	// Distances do not need constants.
	if _, err := c.Distance("alpha", "beta", 0); err != nil {
		t.Fatal(err)
	}
	one := 1.
	c = opposed(t, Units{Time: "year", Dist: "ly", C: &one})
	if delay, _ := c.CommDelay("alpha", "beta", 0); !floats.EqualWithinAbs(delay, 2, 1e-12) {
		t.Fatalf("delay = %f years", delay)
	}
}

func TestQueryAcceleration(t *testing.T) {
	c, err := NewCatalog(map[string]Elements{"earth": Earth}, CatalogOptions{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := c.Acceleration("earth", 0)
	if err != nil {
		t.Fatal(err)
	}
	// Close to perihelion, the Sun pulls Earth at about 0.63 mg.
	if !floats.EqualWithinRel(g, 6.26e-4, 1e-2) {
		t.Fatalf("acceleration = %g g", g)
	}
	c = opposed(t, Units{Time: "s", Dist: "km"})
	if _, err := c.Acceleration("alpha", 0); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
}

func TestQueryTrajectory(t *testing.T) {
	c := opposed(t, Units{})
	traj, err := c.Trajectory("alpha", 4)
	if err != nil {
		t.Fatal(err)
	}
	exp := [][]float64{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, -1, 0}}
	if len(traj) != len(exp) {
		t.Fatalf("got %d samples", len(traj))
	}
	for i, s := range traj {
		if s.T != 90*float64(i) || !vectorsEqual(s.R, exp[i]) {
			t.Fatalf("sample %d = %+v", i, s)
		}
	}
	if _, err := c.Trajectory("alpha", 0); err == nil {
		t.Fatal("expected an error for no samples")
	}
	if _, err := c.Trajectory("gamma", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnitsResolve(t *testing.T) {
	u := Units{}.Resolve()
	if u.Time != "day" || u.Dist != "AU" || *u.C != 173.1 || *u.G != 0.489 {
		t.Fatalf("unexpected units %+v", u)
	}
	u = Units{Time: "s", Dist: "m"}.Resolve()
	if *u.C != 299792000 || *u.G != 9.8 {
		t.Fatalf("unexpected units %+v", u)
	}
	c := 3e5
	u = Units{Time: "s", Dist: "km", C: &c}.Resolve()
	if *u.C != c || u.G != nil {
		t.Fatalf("unexpected units %+v", u)
	}
	if _, err := u.SurfaceGravity(); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
}
