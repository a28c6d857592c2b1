// Package sxpid estimates the shared-exclusion partial information
// decomposition of up to four discrete sources about a discrete target.
package sxpid

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cognicore/sxpid/pkg/sxpid/joint"
	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
	"github.com/cognicore/sxpid/pkg/sxpid/pmf"
	"github.com/cognicore/sxpid/pkg/sxpid/solver"
)

// Estimator is the interface a host toolkit dispatches on.
type Estimator interface {
	Estimate(sources []Variable, target Variable) (*Result, error)
	// IsParallel reports whether one call decomposes chunks in parallel.
	IsParallel() bool
	// IsAnalyticNullEstimator reports whether a closed-form null
	// distribution is available; if not, only resampling tests apply.
	IsAnalyticNullEstimator() bool
}

// SxPID is the shared-exclusion PID estimator.
type SxPID struct {
	settings Settings
	cache    *lattice.Cache
	logger   *slog.Logger
}

var _ Estimator = (*SxPID)(nil)

// Option configures an SxPID.
type Option func(*SxPID)

// WithLatticeCache uses c instead of the process-wide lattice cache.
func WithLatticeCache(c *lattice.Cache) Option {
	return func(e *SxPID) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithLogger sets the logger receiving debug records in verbose mode.
// Without one, verbose output goes to stderr.
func WithLogger(l *slog.Logger) Option {
	return func(e *SxPID) { e.logger = l }
}

// New creates an estimator. The settings are validated and copied.
func New(settings Settings, opts ...Option) (*SxPID, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	e := &SxPID{
		settings: settings,
		cache:    lattice.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Estimate is the function form of New(settings).Estimate.
func Estimate(sources []Variable, target Variable, settings Settings) (*Result, error) {
	e, err := New(settings)
	if err != nil {
		return nil, err
	}
	return e.Estimate(sources, target)
}

// Settings returns the estimator's settings.
func (e *SxPID) Settings() Settings { return e.settings }

// IsParallel implements Estimator.
func (e *SxPID) IsParallel() bool { return false }

// IsAnalyticNullEstimator implements Estimator.
func (e *SxPID) IsAnalyticNullEstimator() bool { return false }

// Estimate validates the inputs, joins multi-column sources, builds the PMF
// and decomposes it over the lattice for len(sources) sources.
func (e *SxPID) Estimate(sources []Variable, target Variable) (*Result, error) {
	if err := validateInputs(sources, target); err != nil {
		return nil, err
	}

	derived := Derived{
		Samples:         target.Len(),
		SourceAlphabets: make([]int, len(sources)),
	}
	columns := make([][]int, len(sources))
	for i, s := range sources {
		codes, alph, err := joint.Join(s)
		if err != nil {
			return nil, &ValidationError{Arg: "source", Index: i + 1, Err: err}
		}
		columns[i] = codes
		derived.SourceAlphabets[i] = alph
	}
	t := target.Column(0)
	derived.TargetAlphabet = joint.Alphabet(t)

	p, err := pmf.Build(columns, t)
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}
	l, err := e.cache.Get(len(sources))
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}

	logger := e.logger
	if logger == nil && e.settings.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	sol, err := solver.Solve(p, l, solver.Options{
		Logger:    logger,
		Verbose:   e.settings.Verbose,
		Tolerance: e.settings.Tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}

	return newResult(p, l, sol, derived), nil
}
