package pspm

import (
	"errors"
	"fmt"

	"github.com/jaideep777/pspm/internal/kernels"
)

// wrapKernelDiagnostic re-wraps a kernels-package sentinel error as its
// root-package counterpart (ErrDimensionMismatch, ErrBoundaryNonConvergence,
// ErrMethodUnimplemented) so callers can errors.Is against this package's
// taxonomy without reaching into internal/kernels.
func wrapKernelDiagnostic(err error) error {
	switch {
	case errors.Is(err, kernels.ErrDimensionMismatch):
		return fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	case errors.Is(err, kernels.ErrBoundaryNonConvergence):
		return fmt.Errorf("%w: %v", ErrBoundaryNonConvergence, err)
	case errors.Is(err, kernels.ErrMMUUnimplemented):
		return fmt.Errorf("%w: %v", ErrMethodUnimplemented, err)
	default:
		return err
	}
}

// envView exposes a transient RK-stage trial buffer as a model.Environment,
// so a Model's ComputeEnv sees the integrator's current trial state rather
// than the solver's last-committed State. Grounded on the same narrow
// capability-interface idiom as model.ExtraRateProvider: the Model package
// cannot import the root package (it would cycle), so the root package
// hands Models the minimal view they need instead.
type envView struct {
	species []*Species
	buf     []float64
}

func (e *envView) SpeciesState(i int) []float64 {
	start, end := e.species[i].Range()
	return e.buf[start:end]
}

func (e *envView) NumSpecies() int { return len(e.species) }

// derivative evaluates dS/dt for the whole concatenated state buffer S at
// time t: every species' model is given a chance to update its
// environment from the trial buffer, then the species' method-specific
// kernel and extras kernel fill the corresponding slice of dSdt. Matches
// odesolver.DerivFunc so it can be passed directly to Stepper.StepTo.
func (s *Solver) derivative(t float64, S []float64) []float64 {
	dSdt := make([]float64, len(S))
	env := &envView{species: s.Species, buf: S}

	for idx, sp := range s.Species {
		start, end := sp.Range()
		sub := S[start:end]
		dsub := dSdt[start:end]

		if err := sp.Model.ComputeEnv(t, env); err != nil {
			s.Diagnostics = append(s.Diagnostics, &SolverError{Method: sp.Method, Species: idx, Time: t, Wrapped: err})
			continue
		}

		J := sp.J()
		packedCount := packedVarCount(sp.Method)
		packed := sub[0 : packedCount*J]
		dpacked := dsub[0 : packedCount*J]

		var err error
		switch sp.Method {
		case FMU:
			err = kernels.FMU(sp.Model, sp.Grid, sp.Layout, t, packed, dpacked)
		case MMU:
			err = kernels.MMU(sp.Model, sp.Grid, sp.Layout, t, packed, dpacked)
		case CM:
			err = kernels.CM(sp.Model, sp.Grid, sp.Layout, t, packed, dpacked)
		case EBT:
			err = kernels.EBT(sp.Model, sp.Grid, sp.Layout, t, packed, dpacked)
		}
		if err != nil {
			s.Diagnostics = append(s.Diagnostics, &SolverError{Method: sp.Method, Species: idx, Time: t, Wrapped: wrapKernelDiagnostic(err)})
		}

		if len(sp.ExtraNames) > 0 {
			xs := sp.gridX(sub)
			if err := kernels.Extras(sp.Model, sp.Layout, sp.ExtraNames, xs, t, sub, dsub); err != nil {
				s.Diagnostics = append(s.Diagnostics, &SolverError{Method: sp.Method, Species: idx, Time: t, Wrapped: wrapKernelDiagnostic(err)})
			}
		}
	}
	return dSdt
}
