package lazykepler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding settings and units,
// e.g. LAZYKEPLER_SETTINGS_SEED or LAZYKEPLER_UNITS_C.
const EnvPrefix = "LAZYKEPLER"

// Settings are the process settings of a system file.
type Settings struct {
	Seed   *int64 `mapstructure:"seed"`
	Origin string `mapstructure:"origin"`
	Solver string `mapstructure:"solver"`
	Epoch  string `mapstructure:"epoch"` // calendar date of t=0
}

// Config is a system file: settings, unit system and the elements of every body.
type Config struct {
	Settings Settings            `mapstructure:"settings"`
	Units    Units               `mapstructure:"units"`
	Orbits   map[string]Elements `mapstructure:"orbits"`
}

// envKeys may be overridden from the environment.
var envKeys = []string{
	"settings.seed", "settings.origin", "settings.solver", "settings.epoch",
	"units.time", "units.dist", "units.c", "units.g",
}

// LoadConfig reads a system file in any format viper supports (YAML, TOML, JSON...).
func LoadConfig(path string, logger kitlog.Logger) (Config, error) {
	logger = kitlog.With(logger, "subsys", "config")
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}
	level.Info(logger).Log("message", "loading system data", "file", path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !v.IsSet("orbits") {
		return Config{}, fmt.Errorf("%s: no orbits defined", path)
	}
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if conf.Units.Time == "" {
		level.Info(logger).Log("message", "no time unit specified, defaulting to Earth days")
	}
	if conf.Units.Dist == "" {
		level.Info(logger).Log("message", "no distance unit specified, defaulting to AU")
	}
	conf.Units = conf.Units.Resolve()
	return conf, nil
}

// Clock returns the clock of this system.
func (c Config) Clock() (Clock, error) {
	epoch, err := ParseDate(c.Settings.Epoch)
	if err != nil {
		return Clock{}, fmt.Errorf("settings.epoch: %w", err)
	}
	if c.Settings.Epoch == "" {
		epoch = J2000
	}
	return Clock{Epoch: epoch, Unit: c.Units.Resolve().Time}, nil
}

// Catalog builds the catalog of this system. The random source for unset mean anomalies
// is seeded from settings.seed, or from the wall clock in which case the seed is logged.
// As with NewCatalog, a non-nil catalog may be returned with the error of the bodies
// which could not be built.
func (c Config) Catalog(logger kitlog.Logger) (*Catalog, error) {
	solver, err := SolverFromString(c.Settings.Solver)
	if err != nil {
		return nil, err
	}
	var seed int64
	if c.Settings.Seed != nil {
		seed = *c.Settings.Seed
		level.Info(logger).Log("subsys", "config", "message", "setting up random number generator", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		level.Info(logger).Log("subsys", "config", "message", "RNG seed generated", "seed", seed)
	}
	units := c.Units.Resolve()
	level.Info(logger).Log("subsys", "config", "dist", units.Dist, "time", units.Time, "solver", solver)
	if units.C == nil {
		level.Warn(logger).Log("subsys", "config", "message", fmt.Sprintf("speed of light not provided for units %s/%s, communication times cannot be calculated", units.Dist, units.Time))
	}
	if units.G == nil {
		level.Warn(logger).Log("subsys", "config", "message", fmt.Sprintf("acceleration on Earth not given for units %s/%s^2, acceleration cannot be given in g", units.Dist, units.Time))
	}
	return NewCatalog(c.Orbits, CatalogOptions{
		Units:  units,
		Origin: c.Settings.Origin,
		Solver: solver,
		Rand:   rand.New(rand.NewSource(seed)),
		Logger: logger,
	})
}
