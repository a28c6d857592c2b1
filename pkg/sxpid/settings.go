package sxpid

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
	"github.com/cognicore/sxpid/pkg/sxpid/solver"
)

// settingsValidate checks Settings field tags.
var settingsValidate = validator.New()

// Settings configures an estimator. It is a value: estimators keep their
// own copy and never write to it.
type Settings struct {
	// Verbose emits debug records while solving. No effect on results.
	Verbose bool `yaml:"verbose" json:"verbose"`
	// Tolerance for the internal consistency checks; 0 selects the default.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" validate:"gte=0,lt=0.001"`
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{Tolerance: solver.DefaultTolerance}
}

// Validate checks the field constraints.
func (s Settings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return &ValidationError{Arg: "settings", Detail: err.Error(), Err: internalerr.ErrInvalidConfig}
	}
	return nil
}

// ParseSettings accepts nil, a Settings value or a key-value map with the
// keys "verbose" (bool) and "tolerance" (number). Unknown keys are ignored.
func ParseSettings(v any) (Settings, error) {
	s := DefaultSettings()
	switch m := v.(type) {
	case nil:
		return s, nil
	case Settings:
		return m, m.Validate()
	case *Settings:
		if m == nil {
			return s, nil
		}
		return *m, m.Validate()
	case map[string]any:
		if raw, ok := m["verbose"]; ok {
			b, ok := raw.(bool)
			if !ok {
				return s, &ValidationError{Arg: "settings", Detail: fmt.Sprintf("verbose is %T, want bool", raw), Err: internalerr.ErrType}
			}
			s.Verbose = b
		}
		if raw, ok := m["tolerance"]; ok {
			switch x := raw.(type) {
			case float64:
				s.Tolerance = x
			case int:
				s.Tolerance = float64(x)
			default:
				return s, &ValidationError{Arg: "settings", Detail: fmt.Sprintf("tolerance is %T, want number", raw), Err: internalerr.ErrType}
			}
		}
		return s, s.Validate()
	default:
		return s, &ValidationError{Arg: "settings", Detail: fmt.Sprintf("got %T, want key-value map", v), Err: internalerr.ErrType}
	}
}
