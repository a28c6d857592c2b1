package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/sxpid/pkg/sxpid"
	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

var validate = validator.New()

// File is the YAML run configuration
type File struct {
	Estimator Estimator `yaml:"estimator"`
	Input     Input     `yaml:"input"`
	Store     Store     `yaml:"store"`
}

// Estimator holds the estimator settings
type Estimator struct {
	Verbose   bool    `yaml:"verbose"`
	Tolerance float64 `yaml:"tolerance" validate:"gte=0,lt=0.001"`
}

// Input describes where samples come from and how columns map to variables
type Input struct {
	Path      string     `yaml:"path"`
	Format    string     `yaml:"format" validate:"omitempty,oneof=csv jsonl ndjson"`
	Target    string     `yaml:"target"`
	Sources   [][]string `yaml:"sources" validate:"max=4,dive,min=1,dive,required"`
	Delimiter string     `yaml:"delimiter" validate:"omitempty,len=1"`
}

// Store selects the run database
type Store struct {
	Path string `yaml:"path"`
}

// Load reads a configuration file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a YAML configuration
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the field constraints
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// Settings converts the estimator section; a zero tolerance keeps the default
func (f *File) Settings() sxpid.Settings {
	s := sxpid.DefaultSettings()
	s.Verbose = f.Estimator.Verbose
	if f.Estimator.Tolerance > 0 {
		s.Tolerance = f.Estimator.Tolerance
	}
	return s
}

// DelimiterRune returns the CSV delimiter, or 0 for the default
func (i Input) DelimiterRune() rune {
	if i.Delimiter == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(i.Delimiter)
	return r
}
