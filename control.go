package pspm

import "gopkg.in/yaml.v3"

// Control holds the solver's accuracy/stepping settings (spec section 6).
// Unlike the teacher's internal/config.Config, this is never loaded from
// or saved to disk: spec.md's Non-goals exclude file I/O from this core,
// so there is no Load/Save pair here. String still uses yaml.v3 (the
// teacher's config library) to render a settings dump for diagnostics.
type Control struct {
	OdeEps             float64 `yaml:"ode_eps"`
	OdeInitialStepSize float64 `yaml:"ode_initial_step_size"`
	ConvergenceEps     float64 `yaml:"convergence_eps"`
}

// DefaultControl mirrors the teacher's DefaultConfig constructor pattern.
func DefaultControl() Control {
	return Control{
		OdeEps:             1e-6,
		OdeInitialStepSize: 0.1,
		ConvergenceEps:     1e-6,
	}
}

// String renders the settings as YAML for logging/debugging.
func (c Control) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "<pspm.Control: yaml marshal failed>"
	}
	return string(b)
}
