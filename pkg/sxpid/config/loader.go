package config

import (
	"context"
	"fmt"

	"github.com/cognicore/sxpid/internal/samples"
	"github.com/cognicore/sxpid/pkg/sxpid"
	"github.com/cognicore/sxpid/pkg/sxpid/store"
	"github.com/cognicore/sxpid/pkg/sxpid/store/sqlite"
)

// Loader loads the configuration file and constructs components.
// Non-empty override fields take precedence over the file.
type Loader struct {
	ConfigPath string

	InputPath string
	Format    string
	Target    string
	Sources   [][]string
	DBPath    string
	Verbose   bool
}

// Components holds all loaded configuration components
type Components struct {
	Estimator *sxpid.SxPID
	Samples   samples.Layout
	InputPath string
	Store     store.Store // nil when no database is configured
}

// Close releases the store, if any
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	f := &File{}
	if l.ConfigPath != "" {
		var err error
		if f, err = Load(l.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	l.apply(f)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	est, err := sxpid.New(f.Settings())
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}

	comp := &Components{
		Estimator: est,
		InputPath: f.Input.Path,
		Samples: samples.Layout{
			Format:    f.Input.Format,
			Target:    f.Input.Target,
			Sources:   f.Input.Sources,
			Delimiter: f.Input.DelimiterRune(),
		},
	}

	if f.Store.Path != "" {
		st, err := sqlite.OpenSQLite(ctx, f.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	}

	return comp, nil
}

func (l *Loader) apply(f *File) {
	if l.InputPath != "" {
		f.Input.Path = l.InputPath
	}
	if l.Format != "" {
		f.Input.Format = l.Format
	}
	if l.Target != "" {
		f.Input.Target = l.Target
	}
	if len(l.Sources) > 0 {
		f.Input.Sources = l.Sources
	}
	if l.DBPath != "" {
		f.Store.Path = l.DBPath
	}
	if l.Verbose {
		f.Estimator.Verbose = true
	}
}
