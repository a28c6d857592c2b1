package sxpid

import (
	"fmt"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
)

// Variable is a discrete variable observed over N samples. Each row is one
// sample; a variable with several columns is joined into a single variable
// over its joint alphabet before estimation.
type Variable [][]int

// Vector builds a one-column variable.
func Vector(values []int) Variable {
	v := make(Variable, len(values))
	for i, x := range values {
		v[i] = []int{x}
	}
	return v
}

// Len returns the number of samples.
func (v Variable) Len() int { return len(v) }

// Width returns the number of columns of the first row, 0 if empty.
func (v Variable) Width() int {
	if len(v) == 0 {
		return 0
	}
	return len(v[0])
}

// Column returns column j as a slice.
func (v Variable) Column(j int) []int {
	out := make([]int, len(v))
	for i, row := range v {
		out[i] = row[j]
	}
	return out
}

// ValidationError reports which argument of Estimate is malformed.
type ValidationError struct {
	Arg    string // "source", "target" or "settings"
	Index  int    // 1-based source index, 0 otherwise
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	name := e.Arg
	if e.Arg == "source" {
		name = fmt.Sprintf("source %d", e.Index)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", name, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// validateInputs checks every argument before any PMF or lattice work.
func validateInputs(sources []Variable, target Variable) error {
	if len(sources) < lattice.MinSources || len(sources) > lattice.MaxSources {
		return fmt.Errorf("%d sources given, supported %d-%d: %w",
			len(sources), lattice.MinSources, lattice.MaxSources, internalerr.ErrUnsupportedSources)
	}

	if err := validateVariable(target, "target", 0); err != nil {
		return err
	}
	if w := target.Width(); w > 1 {
		return &ValidationError{Arg: "target", Detail: fmt.Sprintf("target has %d columns, want 1", w), Err: internalerr.ErrShape}
	}

	for i, s := range sources {
		if err := validateVariable(s, "source", i+1); err != nil {
			return err
		}
		if s.Len() != target.Len() {
			return &ValidationError{
				Arg:    "source",
				Index:  i + 1,
				Detail: fmt.Sprintf("%d samples, target has %d", s.Len(), target.Len()),
				Err:    internalerr.ErrLengthMismatch,
			}
		}
	}
	return nil
}

func validateVariable(v Variable, arg string, index int) error {
	if v == nil || v.Len() == 0 {
		return &ValidationError{Arg: arg, Index: index, Detail: "no samples", Err: internalerr.ErrType}
	}
	width := v.Width()
	if width == 0 {
		return &ValidationError{Arg: arg, Index: index, Detail: "zero columns", Err: internalerr.ErrShape}
	}
	for k, row := range v {
		if len(row) != width {
			return &ValidationError{
				Arg:    arg,
				Index:  index,
				Detail: fmt.Sprintf("row %d has %d columns, want %d", k, len(row), width),
				Err:    internalerr.ErrShape,
			}
		}
		for _, x := range row {
			if x < 0 {
				return &ValidationError{
					Arg:    arg,
					Index:  index,
					Detail: fmt.Sprintf("row %d holds %d", k, x),
					Err:    internalerr.ErrCardinality,
				}
			}
		}
	}
	return nil
}
