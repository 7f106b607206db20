package lazykepler

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the default epoch, 2000 January 1.5 TT.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// dateFormats are accepted by ParseDate, most specific first.
var dateFormats = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

// dayFraction is the length of one time unit in days.
var dayFraction = map[string]float64{
	"day":    1,
	"d":      1,
	"year":   365.25,
	"yr":     365.25,
	"hour":   1. / 24,
	"h":      1. / 24,
	"min":    1. / 1440,
	"s":      1. / 86400,
	"second": 1. / 86400,
}

// ParseDate parses a calendar date in UTC. An empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateFormats {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("could not understand date `%s`", s)
}

// Clock maps calendar dates to query times, counted in Unit since Epoch.
type Clock struct {
	Epoch time.Time
	Unit  string
}

func (c Clock) days() (float64, error) {
	d, ok := dayFraction[c.Unit]
	if !ok {
		return 0, &MissingConstantError{Constant: "length of a day", TimeUnit: c.Unit, DistUnit: "-"}
	}
	return d, nil
}

// At returns the query time of a calendar date.
func (c Clock) At(dt time.Time) (float64, error) {
	d, err := c.days()
	if err != nil {
		return 0, err
	}
	return (julian.TimeToJD(dt) - julian.TimeToJD(c.Epoch)) / d, nil
}

// JD returns the Julian date of a query time.
func (c Clock) JD(t float64) (float64, error) {
	d, err := c.days()
	if err != nil {
		return 0, err
	}
	return julian.TimeToJD(c.Epoch) + t*d, nil
}

// Date returns the calendar date of a query time.
func (c Clock) Date(t float64) (time.Time, error) {
	jd, err := c.JD(t)
	if err != nil {
		return time.Time{}, err
	}
	return julian.JDToTime(jd), nil
}
