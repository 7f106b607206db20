package lazykepler

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultOrigin is the body distances are measured from when only one body is given.
const DefaultOrigin = "Sun"

// CatalogOptions configures the construction of a Catalog.
type CatalogOptions struct {
	Units  Units
	Origin string
	Solver AnomalySolver // DefaultSolver when nil
	Rand   *rand.Rand    // draws unset mean anomalies
	Logger kitlog.Logger // no logging when nil
}

// Catalog maps title-cased body names to their orbits. It is read-only once built.
type Catalog struct {
	orbits map[string]*Orbit
	units  Units
	origin string
}

// NewCatalog builds the orbit of every body. Bodies are built in name order so that
// random mean anomalies only depend on the seed of opts.Rand.
// Bodies with invalid elements are skipped: the returned catalog holds every valid body
// and the error joins one ConstructionError per skipped body.
func NewCatalog(bodies map[string]Elements, opts CatalogOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "catalog")
	origin := strings.TrimSpace(opts.Origin)
	if origin == "" {
		origin = DefaultOrigin
	}
	c := &Catalog{
		orbits: make(map[string]*Orbit, len(bodies)),
		units:  opts.Units.Resolve(),
		origin: NormalizeName(origin),
	}

	rawNames := make([]string, 0, len(bodies))
	for name := range bodies {
		rawNames = append(rawNames, name)
	}
	sort.Strings(rawNames)

	var errs []error
	for _, raw := range rawNames {
		name := NormalizeName(raw)
		el := bodies[raw]
		if _, dup := c.orbits[name]; dup {
			err := fmt.Errorf("%w: duplicate body %s (from %q)", ErrConstruction, name, raw)
			level.Warn(logger).Log("body", name, "err", err)
			errs = append(errs, err)
			continue
		}
		orbit, err := NewOrbit(el, opts.Solver, opts.Rand)
		if err != nil {
			var cerr *ConstructionError
			if errors.As(err, &cerr) {
				cerr.Body = name
			}
			level.Warn(logger).Log("body", name, "err", err)
			errs = append(errs, err)
			continue
		}
		source := "manually"
		if el.MeanAnomaly == nil {
			source = "randomly"
		}
		level.Info(logger).Log("body", name, "orbit", orbit, "meanAnomaly", source)
		c.orbits[name] = orbit
	}
	return c, errors.Join(errs...)
}

// NormalizeName title-cases a body name: the first letter of every word is upper case
// and every other letter is lower case.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(name))
	prevLetter := false
	for _, r := range name {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// Orbit returns the orbit of the named body (case insensitive).
func (c *Catalog) Orbit(name string) (*Orbit, error) {
	name = NormalizeName(name)
	o, ok := c.orbits[name]
	if !ok {
		return nil, &NotFoundError{Body: name}
	}
	return o, nil
}

// Has returns whether the named body is in this catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.orbits[NormalizeName(name)]
	return ok
}

// Names returns the sorted names of all bodies.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.orbits))
	for name := range c.orbits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bodies.
func (c *Catalog) Len() int {
	return len(c.orbits)
}

// Units returns the resolved unit system.
func (c *Catalog) Units() Units {
	return c.units
}

// Origin returns the name of the origin body.
func (c *Catalog) Origin() string {
	return c.origin
}

func (c *Catalog) String() string {
	return fmt.Sprintf("%d bodies (%s/%s, origin %s)", len(c.orbits), c.units.Dist, c.units.Time, c.origin)
}
