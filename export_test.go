package lazykepler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kitlog "github.com/go-kit/log"
	"github.com/gonum/floats"
	"github.com/soniakeys/meeus/v3/elliptic"
)

func TestExportCosmographia(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(map[string]Elements{"earth": Earth, "mars": Mars}, CatalogOptions{})
	if err != nil {
		t.Fatal(err)
	}
	clock := Clock{Epoch: J2000, Unit: "day"}
	path, err := ExportCosmographia(c, clock, ExportConfig{Dir: dir, Name: "test", Samples: 10}, kitlog.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "catalog-test.json") {
		t.Fatalf("unexpected catalog path %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var cat CgCatalog
	if err := json.NewDecoder(f).Decode(&cat); err != nil {
		t.Fatal(err)
	}
	if len(cat.Items) != 2 || cat.Items[0].Name != "Earth" || cat.Items[1].Name != "Mars" {
		t.Fatalf("unexpected catalog %s with %d items", cat.String(), len(cat.Items))
	}
	for _, item := range cat.Items {
		if err := item.Trajectory.Validate(); err != nil {
			t.Fatal(err)
		}
		if item.Center != "Sun" || item.StartTime != "2000-01-01T12:00:00Z" {
			t.Fatalf("unexpected item %+v", item)
		}
		orbit, _ := c.Orbit(item.Name)
		xyzv, err := os.Open(filepath.Join(dir, item.Trajectory.Source))
		if err != nil {
			t.Fatal(err)
		}
		states, err := ParseInterpolatedStates(xyzv)
		xyzv.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(states) != 11 {
			t.Fatalf("%s: expected 11 states, got %d", item.Name, len(states))
		}
		first, last := states[0], states[len(states)-1]
		if !floats.EqualWithinAbs(first.JD, 2451545, 2e-6) || !floats.EqualWithinAbs(last.JD-first.JD, orbit.Period(), 2e-6) {
			t.Fatalf("%s: states span JD %f to %f", item.Name, first.JD, last.JD)
		}
		R, _ := orbit.Position(0)
		for i := 0; i < 3; i++ {
			// Six decimals on kilometers.
			if !floats.EqualWithinAbs(first.Position[i], R[i]*AU, 1e-5) {
				t.Fatalf("%s: position %v, expected %v AU", item.Name, first.Position, R)
			}
			if !floats.EqualWithinAbs(first.Position[i], last.Position[i], 1e-3) {
				t.Fatalf("%s: trajectory does not close: %v != %v", item.Name, first.Position, last.Position)
			}
		}
		// Vis-viva around the Sun.
		exp := elliptic.Velocity(orbit.SemimajorAxis(), Norm(first.Position)/AU)
		if v := Norm(first.Velocity); !floats.EqualWithinRel(v, exp, 2e-3) {
			t.Fatalf("%s: speed of %f km/s, expected %f km/s", item.Name, v, exp)
		}
	}
}

func TestExportCosmographiaErrors(t *testing.T) {
	dir := t.TempDir()
	clock := Clock{Epoch: J2000, Unit: "day"}
	c := opposed(t, Units{})
	if _, err := ExportCosmographia(c, clock, ExportConfig{Dir: dir, Name: "x", Samples: 1}, kitlog.NewNopLogger()); err == nil {
		t.Fatal("expected an error for a single sample")
	}
	c = opposed(t, Units{Dist: "ly"})
	if _, err := ExportCosmographia(c, clock, ExportConfig{Dir: dir, Name: "x", Samples: 10}, kitlog.NewNopLogger()); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
	c = opposed(t, Units{})
	if _, err := ExportCosmographia(c, Clock{Epoch: J2000, Unit: "tick"}, ExportConfig{Dir: dir, Name: "x", Samples: 10}, kitlog.NewNopLogger()); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
}

func TestParseInterpolatedStates(t *testing.T) {
	data := `# comment
2451545.000000 1.0 2.0 3.0 4.0 5.0 6.0
2451546.000000 1.5 2.5 3.5 4.5 5.5 6.5
`
	states, err := ParseInterpolatedStates(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 || states[1].JD != 2451546 || !vectorsEqual(states[1].Velocity, []float64{4.5, 5.5, 6.5}) {
		t.Fatalf("unexpected states %+v", states)
	}
	if txt := states[0].ToText(); txt != "2451545.000000 1.000000 2.000000 3.000000 4.000000 5.000000 6.000000" {
		t.Fatalf("unexpected text %s", txt)
	}
	if _, err := ParseInterpolatedStates(strings.NewReader("2451545 1 2 3 4 5 x\n")); err == nil {
		t.Fatal("expected a parsing error")
	}
}

func TestCheckInterpolatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.xyzv")
	data := `# two records over one day
2451545.000000 1 2 3 4 5 6
2451546.000000 1 2 3 4 5 6
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := checkInterpolatedFile(path, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := checkInterpolatedFile(path, 2, 1); err == nil {
		t.Fatal("expected an error for a missing record")
	}
	if err := checkInterpolatedFile(path, 1, 2); err == nil {
		t.Fatal("expected an error for a short span")
	}
	if err := os.WriteFile(path, []byte("2451545 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := checkInterpolatedFile(path, 0, 0); err == nil {
		t.Fatal("expected a parsing error")
	}
}

func TestWriteTrajectoryCSV(t *testing.T) {
	c := opposed(t, Units{})
	traj, _ := c.Trajectory("beta", 4)
	var buf bytes.Buffer
	if err := WriteTrajectoryCSV(&buf, traj); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 || strings.Join(records[0], ",") != "t,x,y,z" {
		t.Fatalf("unexpected records %v", records)
	}
	if records[1][0] != "0" || records[1][1] != "-1" {
		t.Fatalf("unexpected first sample %v", records[1])
	}
}

func TestVisualColor(t *testing.T) {
	if c := visualColor("b."); !vectorsEqual(c, []float64{0, 0, 1}) {
		t.Fatalf("got %v", c)
	}
	if c := visualColor("*r"); !vectorsEqual(c, []float64{1, 0, 0}) {
		t.Fatalf("got %v", c)
	}
	if c := visualColor(""); len(c) != 3 {
		t.Fatalf("got %v", c)
	}
}
