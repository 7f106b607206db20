package lazykepler

import "strings"

const (
	// DefaultTimeUnit is used when the system file names no time unit.
	DefaultTimeUnit = "day"
	// DefaultDistUnit is used when the system file names no distance unit.
	DefaultDistUnit = "AU"
)

// knownC is the speed of light, in dist/time, for common unit systems.
var knownC = map[string]map[string]float64{
	"day": {"AU": 173.1},
	"s":   {"m": 299792000},
}

// knownG is Earth's surface gravity, in dist/time², for common unit systems.
var knownG = map[string]map[string]float64{
	"day": {"AU": 0.489},
	"s":   {"m": 9.8},
}

// Units is the unit system shared by every body of a catalog.
// C and G are nil when neither configured nor known for the unit system.
type Units struct {
	Time string   `mapstructure:"time"`
	Dist string   `mapstructure:"dist"`
	C    *float64 `mapstructure:"c"`
	G    *float64 `mapstructure:"g"`
}

// Resolve fills in the default units and the constants known for the unit system.
// Explicit constants are kept.
func (u Units) Resolve() Units {
	if strings.TrimSpace(u.Time) == "" {
		u.Time = DefaultTimeUnit
	}
	if strings.TrimSpace(u.Dist) == "" {
		u.Dist = DefaultDistUnit
	}
	if u.C == nil {
		u.C = lookupConstant(knownC, u.Time, u.Dist)
	}
	if u.G == nil {
		u.G = lookupConstant(knownG, u.Time, u.Dist)
	}
	return u
}

// SpeedOfLight returns c in dist/time.
func (u Units) SpeedOfLight() (float64, error) {
	if u.C == nil {
		return 0, &MissingConstantError{Constant: "speed of light", TimeUnit: u.Time, DistUnit: u.Dist}
	}
	return *u.C, nil
}

// SurfaceGravity returns Earth's surface gravity g in dist/time².
func (u Units) SurfaceGravity() (float64, error) {
	if u.G == nil {
		return 0, &MissingConstantError{Constant: "surface gravity", TimeUnit: u.Time, DistUnit: u.Dist}
	}
	return *u.G, nil
}

func lookupConstant(table map[string]map[string]float64, timeUnit, distUnit string) *float64 {
	byDist, ok := table[timeUnit]
	if !ok {
		return nil
	}
	v, ok := byDist[distUnit]
	if !ok {
		return nil
	}
	return &v
}
