// Package experiment is a thin harness for driving a Solver to
// equilibrium under a named set of model parameters, adapted from the
// teacher's internal/experiment package. spec.md specifies only the
// single-run step_to/stepToEquilibrium operations; this package wraps one
// such run per parameter set, the unit that package optim's parameter
// sweep repeats, generalized from dynsim's single hardcoded pendulum
// dynamics to an arbitrary caller-supplied Model/Solver pairing.
package experiment

import (
	"fmt"

	"github.com/jaideep777/pspm"
	"github.com/jaideep777/pspm/model"
)

// Config names one experiment's parameters and stepping settings. Params
// is opaque to this package; a Builder interprets it into breakpoints,
// a Model, extra-variable names and an input birth flux.
type Config struct {
	Method  pspm.Method
	Control pspm.Control
	Params  map[string]float64
}

// Builder constructs the single species an Experiment will run, from a
// resolved parameter set.
type Builder func(params map[string]float64) (breakpoints []float64, m model.Model, extraNames []string, inputBirthFlux float64)

// Result is what a completed Experiment reports.
type Result struct {
	U0          float64
	Population  float64
	Diagnostics []error
}

// Experiment owns one Solver built from one Config/Builder pair.
type Experiment struct {
	cfg    Config
	solver *pspm.Solver
}

// New constructs an unconfigured Experiment.
func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the experiment's Solver and single species, and
// initializes its state.
func (e *Experiment) Setup(build Builder) error {
	e.solver = pspm.NewSolver(e.cfg.Method, e.cfg.Control)
	breakpoints, m, extraNames, inputFlux := build(e.cfg.Params)
	if _, err := e.solver.AddSpecies(breakpoints, m, extraNames, inputFlux); err != nil {
		return err
	}
	return e.solver.Initialize()
}

// Run steps the experiment's solver to equilibrium and reports the
// result.
func (e *Experiment) Run() (*Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment: not set up, call Setup first")
	}
	u0, err := e.solver.StepToEquilibrium()
	if err != nil {
		return nil, err
	}
	pop, err := e.solver.Population(0)
	if err != nil {
		return nil, err
	}
	return &Result{U0: u0, Population: pop, Diagnostics: e.solver.Diagnostics}, nil
}

// Solver returns the underlying solver, so a caller can drive it directly
// (e.g. Solver.Run with metrics and observers) instead of through this
// harness.
func (e *Experiment) Solver() *pspm.Solver { return e.solver }
