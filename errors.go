package lazykepler

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConstruction matches any ConstructionError.
	ErrConstruction = errors.New("invalid orbital elements")
	// ErrNotFound matches any NotFoundError.
	ErrNotFound = errors.New("no such body")
	// ErrMissingConstant matches any MissingConstantError.
	ErrMissingConstant = errors.New("missing unit constant")
	// ErrNumerical matches any NumericalError.
	ErrNumerical = errors.New("numerical failure")
	// ErrInvalidTime matches any InvalidTimeError.
	ErrInvalidTime = errors.New("invalid time")
)

// ConstructionError is returned when orbital elements cannot describe a closed orbit.
type ConstructionError struct {
	Body   string // may be empty when the orbit is built outside of a catalog
	Field  string
	Value  float64
	Reason string
}

func (e *ConstructionError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s=%g %s", ErrConstruction, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s for %s: %s=%g %s", ErrConstruction, e.Body, e.Field, e.Value, e.Reason)
}

// Is allows errors.Is(err, ErrConstruction).
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// NotFoundError is returned when a query names a body absent from the catalog.
type NotFoundError struct {
	Body string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.Body)
}

// Is allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingConstantError is returned when a computation needs a unit constant which was
// neither configured nor known for the unit system.
type MissingConstantError struct {
	Constant string
	TimeUnit string
	DistUnit string
}

func (e *MissingConstantError) Error() string {
	return fmt.Sprintf("%s: %s not provided for units %s/%s", ErrMissingConstant, e.Constant, e.DistUnit, e.TimeUnit)
}

// Is allows errors.Is(err, ErrMissingConstant).
func (e *MissingConstantError) Is(target error) bool {
	return target == ErrMissingConstant
}

// NumericalError is returned when the anomaly solver does not converge.
type NumericalError struct {
	MeanAnomaly  float64 // degrees
	Eccentricity float64
	Err          error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s: Kepler's equation did not converge for M=%.6f° e=%.6f: %s", ErrNumerical, e.MeanAnomaly, e.Eccentricity, e.Err)
}

// Is allows errors.Is(err, ErrNumerical).
func (e *NumericalError) Is(target error) bool {
	return target == ErrNumerical
}

func (e *NumericalError) Unwrap() error {
	return e.Err
}

// InvalidTimeError is returned when a query time is NaN or infinite.
type InvalidTimeError struct {
	T float64
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("%s: %g is not a finite number", ErrInvalidTime, e.T)
}

// Is allows errors.Is(err, ErrInvalidTime).
func (e *InvalidTimeError) Is(target error) bool {
	return target == ErrInvalidTime
}

// CheckTime returns an InvalidTimeError unless t is finite.
func CheckTime(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return &InvalidTimeError{T: t}
	}
	return nil
}
