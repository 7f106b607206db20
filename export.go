package lazykepler

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// kmPerUnit converts distance units to kilometers, as Cosmographia expects.
var kmPerUnit = map[string]float64{
	"AU": AU,
	"km": 1,
	"m":  1e-3,
}

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

func (t *CgTrajectory) String() string {
	return t.Source + " as " + t.Type
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of an xyzv file: JD, position (km) and velocity (km/s).
type CgInterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) error {
	if len(record) != 7 {
		return fmt.Errorf("expected 7 fields, got %d", len(record))
	}
	vals := make([]float64, 7)
	for j, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		vals[j] = val
	}
	i.JD = vals[0]
	i.Position = vals[1:4]
	i.Velocity = vals[4:7]
	return nil
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// ParseInterpolatedStates reads the records of an xyzv file.
func ParseInterpolatedStates(r io.Reader) ([]*CgInterpolatedState, error) {
	var states = []*CgInterpolatedState{}
	cr := csv.NewReader(r)
	cr.Comma = ' '
	cr.Comment = '#'
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		state := CgInterpolatedState{}
		if err := state.FromText(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(states)+1, err)
		}
		states = append(states, &state)
	}
	return states, nil
}

// ExportConfig configures the exporting of trajectories.
type ExportConfig struct {
	Dir       string
	Name      string // catalog name, also prefixes every file
	Samples   int    // per period
	Timestamp bool
}

func (c ExportConfig) prefix() string {
	if !c.Timestamp {
		return c.Name
	}
	t := time.Now()
	return fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", c.Name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ExportCosmographia writes one period of every orbit of the catalog as a Cosmographia
// catalog (catalog-<name>.json) and one InterpolatedStates file per body (<name>-<body>.xyzv).
// It returns the path of the catalog file.
func ExportCosmographia(c *Catalog, clock Clock, conf ExportConfig, logger kitlog.Logger) (string, error) {
	logger = kitlog.With(logger, "subsys", "export")
	units := c.Units()
	km, ok := kmPerUnit[units.Dist]
	if !ok {
		return "", &MissingConstantError{Constant: "kilometers per distance unit", TimeUnit: units.Time, DistUnit: units.Dist}
	}
	days, err := clock.days()
	if err != nil {
		return "", err
	}
	kmps := km / (days * 86400)
	if conf.Samples < 2 {
		return "", fmt.Errorf("invalid number of samples %d", conf.Samples)
	}
	prefix := conf.prefix()

	items := make([]*CgItems, 0, c.Len())
	for _, name := range c.Names() {
		orbit, _ := c.Orbit(name)
		traj := CgTrajectory{Type: "InterpolatedStates", Source: fmt.Sprintf("%s-%s.xyzv", prefix, strings.ReplaceAll(name, " ", "_"))}
		if err := traj.Validate(); err != nil {
			return "", err
		}
		start, err := clock.Date(0)
		if err != nil {
			return "", err
		}
		end, err := clock.Date(orbit.Period())
		if err != nil {
			return "", err
		}
		path := filepath.Join(conf.Dir, traj.Source)
		if err := writeInterpolatedFile(path, orbit, clock, conf.Samples, km, kmps); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		if err := checkInterpolatedFile(path, conf.Samples, orbit.Period()*days); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		color := visualColor(orbit.Visual())
		items = append(items, &CgItems{
			Class:           "planet",
			Name:            name,
			StartTime:       start.UTC().Format(time.RFC3339),
			EndTime:         end.UTC().Format(time.RFC3339),
			Center:          c.Origin(),
			TrajectoryFrame: "EclipticJ2000",
			Trajectory:      &traj,
			Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
			TrajectoryPlot: &CgTrajectoryPlot{Color: color, LineWidth: 1, Lead: "0 d", SampleCount: conf.Samples,
				Duration: fmt.Sprintf("%d d", int(end.Sub(start).Hours()/24+1))},
		})
		level.Debug(logger).Log("body", name, "file", traj.Source)
	}

	catalogPath := filepath.Join(conf.Dir, fmt.Sprintf("catalog-%s.json", prefix))
	fc, err := os.Create(catalogPath)
	if err != nil {
		return "", err
	}
	defer fc.Close()
	enc := json.NewEncoder(fc)
	enc.SetIndent("", "  ")
	if err := enc.Encode(CgCatalog{Version: "1.0", Name: conf.Name, Items: items}); err != nil {
		return "", err
	}
	level.Info(logger).Log("message", "saved catalog", "file", catalogPath, "bodies", len(items))
	return catalogPath, nil
}

// writeInterpolatedFile writes samples+1 states spanning exactly one period, so that the last
// record closes the loop.
func writeInterpolatedFile(path string, orbit *Orbit, clock Clock, samples int, km, kmps float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, `# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a TDB Julian date
#   Position in km
#   Velocity in km/sec
#   Epoch (UTC): %s`, time.Now().UTC(), clock.Epoch.UTC())
	for i := 0; i <= samples; i++ {
		t := orbit.Period() * float64(i) / float64(samples)
		R, V, err := orbit.State(t)
		if err != nil {
			return err
		}
		jd, err := clock.JD(t)
		if err != nil {
			return err
		}
		for j := 0; j < 3; j++ {
			R[j] *= km
			V[j] *= kmps
		}
		state := CgInterpolatedState{JD: jd, Position: R, Velocity: V}
		fmt.Fprint(w, "\n"+state.ToText())
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// checkInterpolatedFile reads back an xyzv file and checks that it holds samples+1 records
// spanning span days.
func checkInterpolatedFile(path string, samples int, span float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	states, err := ParseInterpolatedStates(f)
	if err != nil {
		return fmt.Errorf("reading back %s: %w", path, err)
	}
	if len(states) != samples+1 {
		return fmt.Errorf("%s holds %d states, expected %d", path, len(states), samples+1)
	}
	// JDs are written with six decimals.
	if got := states[samples].JD - states[0].JD; math.Abs(got-span) > 2e-6 {
		return fmt.Errorf("%s spans %f days, expected %f", path, got, span)
	}
	return nil
}

// WriteTrajectoryCSV writes samples as `t,x,y,z` records with a header.
func WriteTrajectoryCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "x", "y", "z"}); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			strconv.FormatFloat(s.T, 'f', -1, 64),
			strconv.FormatFloat(s.R[0], 'f', -1, 64),
			strconv.FormatFloat(s.R[1], 'f', -1, 64),
			strconv.FormatFloat(s.R[2], 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// visualColor maps the color letter of a matplotlib format string (e.g. "b.") to RGB.
func visualColor(visual string) []float64 {
	for _, r := range visual {
		switch r {
		case 'b':
			return []float64{0, 0, 1}
		case 'g':
			return []float64{0, 0.5, 0}
		case 'r':
			return []float64{1, 0, 0}
		case 'c':
			return []float64{0, 0.75, 0.75}
		case 'm':
			return []float64{0.75, 0, 0.75}
		case 'y':
			return []float64{0.75, 0.75, 0}
		case 'k':
			return []float64{0.5, 0.5, 0.5}
		case 'w':
			return []float64{1, 1, 1}
		}
	}
	return []float64{0.6, 1, 1}
}
