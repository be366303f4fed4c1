package gas

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates non-physical gas-law inputs (T <= 0, P <= 0,
	// negative mass or density, or a non-finite value).
	ErrInvalidInput = errors.New("gas: invalid input")

	// ErrUnknownSpecies indicates a lookup for a species that is not registered.
	ErrUnknownSpecies = errors.New("gas: unknown species")
)

// InvalidInputError names the offending parameter.
type InvalidInputError struct {
	Param string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("gas: invalid input: %s = %g", e.Param, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

type UnknownSpeciesError struct {
	Name string
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("gas: unknown species %q", e.Name)
}

func (e *UnknownSpeciesError) Unwrap() error {
	return ErrUnknownSpecies
}
