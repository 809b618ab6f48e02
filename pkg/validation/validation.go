// Package validation checks authored shape parameters and physics settings
// before they reach the simulation.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-zenith/pkg/physics"
)

var (
	// ErrOutOfRange is returned for values outside their allowed interval.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidRadius is returned for body radii that are not positive and finite.
	ErrInvalidRadius = errors.New("invalid radius")
	// ErrNotFinite is returned for NaN or infinite inputs.
	ErrNotFinite = errors.New("value is not finite")
)

// ValidateFinite rejects NaN and infinities
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %w", name, ErrNotFinite)
	}
	return nil
}

// ValidateUnit checks that v lies in [0,1]
func ValidateUnit(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%s %v not in [0,1]: %w", name, v, ErrOutOfRange)
	}
	return nil
}

// ValidatePositive checks that v is finite and greater than zero
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s %v must be positive: %w", name, v, ErrOutOfRange)
	}
	return nil
}

// ValidateSurface checks the response parameters of a static surface
func ValidateSurface(bounciness, friction float64) error {
	if err := ValidateUnit("bounciness", bounciness); err != nil {
		return err
	}
	return ValidateUnit("friction", friction)
}

// ValidateRadius checks a body radius
func ValidateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("radius %v: %w", r, ErrInvalidRadius)
	}
	return nil
}

// ValidateVector rejects vectors with non-finite components
func ValidateVector(name string, v physics.Vector2D) error {
	if err := ValidateFinite(name+".x", v.X); err != nil {
		return err
	}
	return ValidateFinite(name+".y", v.Y)
}
