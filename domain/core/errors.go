package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Lifecycle errors
	ErrUntrainedModel = errors.New("classifier invoked before training")

	// Search errors
	ErrConvergenceFailure = errors.New("threshold search failed to converge")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewInvalidParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

func NewConvergenceError(iterations int, rate, target float64) error {
	return fmt.Errorf("%w: %d iterations, last rate %.4f vs target %.4f",
		ErrConvergenceFailure, iterations, rate, target)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergenceFailure)
}
