package lazykepler

import (
	"fmt"
	"strings"
)

// AU is one astronomical unit in kilometers.
const AU = 1.49597870700e8

func anomalyAt(deg float64) *float64 {
	return &deg
}

/* Definitions. Heliocentric J2000 elements in AU and days. */

// Mercury is hot.
var Mercury = Elements{0.307499, 0.466697, 0.205630, 29.124, 7.005, 48.331, 87.9691, anomalyAt(174.796), "c."}

// Venus is poisonous.
var Venus = Elements{0.718440, 0.728213, 0.006772, 54.884, 3.39458, 76.680, 224.701, anomalyAt(50.115), "y."}

// Earth is home.
var Earth = Elements{0.983289, 1.016710, 0.0167086, 114.20783, 0.00005, 348.73936, 365.256363, anomalyAt(358.617), "b."}

// Mars is the vacation place.
var Mars = Elements{1.3814, 1.66621, 0.0934, 286.502, 1.850, 49.558, 686.980, anomalyAt(19.412), "r."}

// Jupiter is big.
var Jupiter = Elements{4.9501, 5.4588, 0.0489, 273.867, 1.303, 100.464, 4332.59, anomalyAt(20.020), "m."}

// Saturn floats and that's really cool.
var Saturn = Elements{9.0412, 10.1238, 0.0565, 339.392, 2.485, 113.665, 10759.22, anomalyAt(317.020), "y*"}

// Uranus is no joke.
var Uranus = Elements{18.2861, 20.0965, 0.04717, 96.998857, 0.773, 74.006, 30688.5, anomalyAt(142.2386), "c*"}

// Neptune is windy.
var Neptune = Elements{29.81, 30.33, 0.008678, 273.187, 1.770, 131.783, 60195, anomalyAt(256.228), "b*"}

// Pluto is not a planet and had that down ranking coming. It should have stayed in its lane.
var Pluto = Elements{29.658, 49.305, 0.2488, 113.834, 17.16, 110.299, 90560, anomalyAt(14.53), "k."}

// SolarSystem returns the elements of the planets (and Pluto), keyed by name.
// Every call returns fresh copies: writing through a returned MeanAnomaly does not
// change the built-in values.
func SolarSystem() map[string]Elements {
	return map[string]Elements{
		"Mercury": Mercury.clone(),
		"Venus":   Venus.clone(),
		"Earth":   Earth.clone(),
		"Mars":    Mars.clone(),
		"Jupiter": Jupiter.clone(),
		"Saturn":  Saturn.clone(),
		"Uranus":  Uranus.clone(),
		"Neptune": Neptune.clone(),
		"Pluto":   Pluto.clone(),
	}
}

// ElementsFromString returns the built-in elements of a body from its name.
func ElementsFromString(name string) (Elements, error) {
	for known, el := range SolarSystem() {
		if strings.EqualFold(known, strings.TrimSpace(name)) {
			return el, nil
		}
	}
	return Elements{}, fmt.Errorf("undefined planet '%s'", name)
}

// SolarSystemConfig is DefaultConfig restricted to the named bodies.
func SolarSystemConfig(names []string) (Config, error) {
	conf := DefaultConfig()
	conf.Orbits = make(map[string]Elements, len(names))
	for _, name := range names {
		el, err := ElementsFromString(name)
		if err != nil {
			return Config{}, err
		}
		conf.Orbits[NormalizeName(name)] = el
	}
	if len(conf.Orbits) == 0 {
		return Config{}, fmt.Errorf("no planet selected among %q", names)
	}
	return conf, nil
}

// DefaultConfig is the built-in solar system in AU and days, centered on the Sun.
func DefaultConfig() Config {
	return Config{
		Settings: Settings{Origin: DefaultOrigin},
		Units:    Units{Time: DefaultTimeUnit, Dist: DefaultDistUnit}.Resolve(),
		Orbits:   SolarSystem(),
	}
}
