package pspm

import (
	"fmt"
	"math"

	"github.com/jaideep777/pspm/internal/odesolver"
	"github.com/jaideep777/pspm/internal/quad"
	"github.com/jaideep777/pspm/model"
)

// Solver advances one or more species sharing a single concatenated state
// buffer under a chosen discretization [Method]. Grounded on the
// teacher's internal/sim.Simulator (owns dyn+integrator, drives a Run
// loop) generalized from one hardcoded dynamical system to an arbitrary
// number of PSPM species sharing one buffer.
//
// Design decision (spec section 2 describes "for each species,
// AdaptiveStepper repeatedly takes adaptive RK steps" as if each species
// had its own stepper): this implementation instead advances the whole
// concatenated buffer with a single shared Stepper. A shared stepper
// keeps every species' trial state mutually consistent at every
// derivative evaluation, which per-species independent stepping cannot
// guarantee when models couple through a shared Environment, and every
// invariant/testable property in spec section 8 holds identically either
// way.
type Solver struct {
	Method      Method
	Species     []*Species
	State       []float64
	Control     Control
	Diagnostics []error

	stepper *odesolver.Stepper
	t       float64
	history map[int][]float64
}

// NewSolver constructs a solver for the given method with the given
// accuracy/stepping settings.
func NewSolver(method Method, ctrl Control) *Solver {
	return &Solver{
		Method:  method,
		Control: ctrl,
		history: make(map[int][]float64),
	}
}

// AddSpecies appends a species described by its size-axis breakpoints.
// extraNames declares any per-cohort extra state variables; inputBirthFlux
// is U_in, the species' input flux at the boundary.
func (s *Solver) AddSpecies(breakpoints []float64, m model.Model, extraNames []string, inputBirthFlux float64) (*Species, error) {
	sp, err := newSpecies(s.Method, breakpoints, m, extraNames, inputBirthFlux)
	if err != nil {
		return nil, err
	}
	sp.StartIndex = len(s.State)
	s.State = append(s.State, make([]float64, sp.Size)...)
	s.Species = append(s.Species, sp)
	return sp, nil
}

// AddSpeciesLog is the log-spaced-breakpoints constructor variant named in
// spec section 6 ("addSpecies(J, xb, xm, log_breaks, ...)"): it builds
// breakpoints geometrically spaced between xb and xm, J+1 of them for
// FMU/MMU (J cells) and J for CM/EBT (J cohorts).
func (s *Solver) AddSpeciesLog(J int, xb, xm float64, m model.Model, extraNames []string, inputBirthFlux float64) (*Species, error) {
	if J < 1 || xb <= 0 || xm <= xb {
		return nil, fmt.Errorf("%w: need J>=1 and 0 < xb < xm, got J=%d xb=%g xm=%g", ErrInvalidGrid, J, xb, xm)
	}
	n := J + 1
	if s.Method == CM || s.Method == EBT {
		n = J
	}
	breakpoints := make([]float64, n)
	logXb, logXm := math.Log(xb), math.Log(xm)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		breakpoints[i] = math.Exp(logXb + frac*(logXm-logXb))
	}
	return s.AddSpecies(breakpoints, m, extraNames, inputBirthFlux)
}

// ResetState zeros the state buffer, re-seeds the grid portions (CM's x
// block, EBT's interior X values), and clears the integrator and
// equilibrium-detection history.
func (s *Solver) ResetState() error {
	for i := range s.State {
		s.State[i] = 0
	}
	for _, sp := range s.Species {
		sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
		J := sp.J()
		switch sp.Method {
		case CM:
			copy(sub[0:J], sp.Grid.X)
		case EBT:
			copy(sub[1:J], sp.Grid.X[1:J])
		}
	}
	s.stepper = nil
	s.t = 0
	s.history = make(map[int][]float64)
	s.Diagnostics = nil
	return nil
}

// Initialize writes each species' initial density (log-density for CM)
// and initial extra state.
func (s *Solver) Initialize() error {
	for _, sp := range s.Species {
		sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
		J := sp.J()
		packedCount := packedVarCount(sp.Method)

		switch sp.Method {
		case FMU, MMU:
			u := sub[0:J]
			for i, xc := range sp.Grid.CellCenters {
				u[i] = sp.Model.InitDensity(xc)
			}
		case CM:
			// Initialize must seed x itself rather than assume ResetState
			// already copied Grid.X in: the documented AddSpecies ->
			// Initialize -> StepTo flow never calls ResetState.
			x := sub[0:J]
			copy(x, sp.Grid.X)
			u := sub[J : 2*J]
			for i, xi := range x {
				d := sp.Model.InitDensity(xi)
				if d <= 0 {
					return fmt.Errorf("pspm: InitDensity must be positive, got %g at x=%g", d, xi)
				}
				u[i] = math.Log(d)
			}
		case EBT:
			X := sub[0:J]
			copy(X[1:J], sp.Grid.X[1:J])
			N := sub[J : 2*J]
			X[0] = 0
			N[0] = 0
			for k := 1; k < J; k++ {
				width := cohortWidth(X, k)
				N[k] = sp.Model.InitDensity(X[k]) * width
			}
		}

		if len(sp.ExtraNames) > 0 {
			xs := sp.gridX(sub)
			extra := sub[packedCount*J:]
			count := len(sp.ExtraNames)
			for i, xi := range xs {
				vals := sp.Model.InitStateExtra(xi, 0)
				if len(vals) != count {
					return fmt.Errorf("pspm: InitStateExtra returned %d values, want %d", len(vals), count)
				}
				copy(extra[i*count:i*count+count], vals)
			}
		}
	}
	return nil
}

func cohortWidth(X []float64, k int) float64 {
	switch {
	case k == len(X)-1 && k == 1:
		return 1
	case k == len(X)-1:
		return X[k] - X[k-1]
	case k == 1:
		return X[k+1] - X[k]
	default:
		return 0.5 * (X[k+1] - X[k-1])
	}
}

func packedVarCount(m Method) int {
	switch m {
	case FMU, MMU:
		return 1
	case CM, EBT:
		return 2
	}
	return 0
}

// StepTo advances the solver to t_target: the integrator drives the whole
// state buffer forward, clamping its final sub-step to land exactly on
// t_target, then each species' CohortManager structural update runs
// exactly once (spec section 5: add-before-remove for CM, remove-before-add
// for EBT).
func (s *Solver) StepTo(tTarget float64) error {
	if s.stepper == nil {
		s.stepper = odesolver.NewStepper(s.Control.OdeEps, s.Control.OdeInitialStepSize, s.t)
	}

	if err := s.stepper.StepTo(tTarget, s.State, s.derivative); err != nil {
		s.Diagnostics = append(s.Diagnostics, fmt.Errorf("%w: %v", ErrStepUnderflow, err))
	}
	s.t = tTarget

	for idx, sp := range s.Species {
		switch sp.Method {
		case EBT:
			if err := s.ebtStructuralUpdate(idx); err != nil {
				s.Diagnostics = append(s.Diagnostics, &SolverError{Method: sp.Method, Species: idx, Time: s.t, Wrapped: err})
			}
		case CM:
			if err := s.cmStructuralUpdate(idx); err != nil {
				s.Diagnostics = append(s.Diagnostics, &SolverError{Method: sp.Method, Species: idx, Time: s.t, Wrapped: err})
			}
		}
	}

	for idx := range s.Species {
		u0, err := s.U0Out(idx)
		if err != nil {
			continue
		}
		h := append(s.history[idx], u0)
		if len(h) > 5 {
			h = h[len(h)-5:]
		}
		s.history[idx] = h
	}
	return nil
}

// StepToEquilibrium advances in Δt=0.05 increments until every species'
// rolling 5-sample u0_out range falls below Control.ConvergenceEps,
// returning the first species' converged u0_out.
func (s *Solver) StepToEquilibrium() (float64, error) {
	const dt = 0.05
	const maxSteps = 1_000_000
	for i := 0; i < maxSteps; i++ {
		if err := s.StepTo(s.t + dt); err != nil {
			return 0, err
		}
		if s.equilibriumReached() {
			u0, _ := s.U0Out(0)
			return u0, nil
		}
	}
	return 0, fmt.Errorf("pspm: stepToEquilibrium did not converge within %d steps", maxSteps)
}

func (s *Solver) equilibriumReached() bool {
	if len(s.Species) == 0 {
		return false
	}
	for idx := range s.Species {
		h := s.history[idx]
		if len(h) < 5 {
			return false
		}
		lo, hi := h[0], h[0]
		for _, v := range h {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi-lo >= s.Control.ConvergenceEps {
			return false
		}
	}
	return true
}

// NewbornsOut returns the current boundary birth flux B for species i.
func (s *Solver) NewbornsOut(i int) (float64, error) {
	sp := s.Species[i]
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	J := sp.J()

	switch sp.Method {
	case FMU, MMU:
		u := sub[0:J]
		bu := make([]float64, J)
		for k, xc := range sp.Grid.CellCenters {
			bu[k] = sp.Model.BirthRate(xc, s.t) * u[k]
		}
		return quad.Trapz(sp.Grid.CellCenters, bu), nil
	case CM:
		x := sub[0:J]
		logu := sub[J : 2*J]
		bu := make([]float64, J)
		for k := range x {
			bu[k] = sp.Model.BirthRate(x[k], s.t) * math.Exp(logu[k])
		}
		return quad.Trapz(x, bu), nil
	case EBT:
		X := sub[0:J]
		N := sub[J : 2*J]
		var b float64
		for k := 1; k < J; k++ {
			b += sp.Model.BirthRate(X[k], s.t) * N[k]
		}
		return b, nil
	}
	return 0, ErrMethodUnimplemented
}

// U0Out returns newborns_out/g(xb,t) for species i.
func (s *Solver) U0Out(i int) (float64, error) {
	b, err := s.NewbornsOut(i)
	if err != nil {
		return 0, err
	}
	sp := s.Species[i]
	gxb := sp.Model.GrowthRate(sp.Grid.Xb, s.t)
	if gxb == 0 {
		return 0, fmt.Errorf("pspm: zero growth rate at boundary xb=%g", sp.Grid.Xb)
	}
	return b / gxb, nil
}

// SpeciesState implements model.Environment over the solver's committed
// state, for use outside a derivative evaluation. During a derivative
// evaluation, models instead see the integrator's transient trial buffer
// via envView (derivative.go).
func (s *Solver) SpeciesState(i int) []float64 {
	sp := s.Species[i]
	return s.State[sp.StartIndex : sp.StartIndex+sp.Size]
}

// NumSpecies implements model.Environment.
func (s *Solver) NumSpecies() int { return len(s.Species) }
