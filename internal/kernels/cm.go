package kernels

import (
	"fmt"
	"math"

	"github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/internal/quad"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// CM fills dSdt for the characteristic method. State is x[0..J-1] followed
// by u[0..J-1], with u stored as log-density (spec's open question,
// section 9, resolved as option (a): initialize writes log u, and the
// rate equation is therefore d(log u)/dt = -m(x,t) - g'(x,t), the
// quotient-rule simplification of -m*u - g'*u once the u factor is
// divided out). x[0] is pinned at xb (dx_0/dt=0); its identity changes
// only via CohortManager's boundary insertion, never inside a derivative
// call. l's IteratorSet addresses the "x"/"u" blocks by name (spec
// section 4.2).
func CM(m model.Model, g *grid.Grid, l *layout.Layout, t float64, S, dSdt []float64) error {
	// J comes from the layout, not g.NumCohorts(): CohortManager resizes a
	// species' Layout (and the state buffer) on structural updates without
	// touching its Grid, so g.NumCohorts() would still report the cohort
	// count the species was constructed with.
	J := l.J
	if len(S) != 2*J || len(dSdt) != 2*J {
		return fmt.Errorf("%w: CM expected state length %d, got S=%d dSdt=%d", ErrDimensionMismatch, 2*J, len(S), len(dSdt))
	}

	sVars := l.Iterators(S)
	dVars := l.Iterators(dSdt)
	xv, err := sVars.Lookup("x")
	if err != nil {
		return err
	}
	dxv, err := dVars.Lookup("x")
	if err != nil {
		return err
	}
	duv, err := dVars.Lookup("u")
	if err != nil {
		return err
	}

	x := xv.Raw()
	dx := dxv.Raw()
	du := duv.Raw()

	for i := 0; i < J; i++ {
		xi := x[i]
		if i == 0 {
			dx[0] = 0
		} else {
			dx[i] = m.GrowthRate(xi, t)
		}
		gprime := grid.OneSidedDerivative(func(xx float64) float64 { return m.GrowthRate(xx, t) }, xi)
		du[i] = -m.MortalityRate(xi, t) - gprime
	}
	return nil
}

// CalcBirthFluxCM solves the renewal fixed point u0·g(xb,t) = ∫b(x,t)u(x)dx
// for the boundary cohort's log-density, iterating trial values of u0
// until two successive estimates differ by less than tol (spec section
// 4.3.2). xs and logU are the full cohort arrays (log-density); logU[0] is
// overwritten with each trial before recomputeEnv/integrate runs, so the
// model sees a self-consistent state at every iteration. recomputeEnv is
// called once per iteration, matching "the environment is recomputed at
// every derivative call" for this boundary-flux evaluation too.
func CalcBirthFluxCM(m model.Model, g *grid.Grid, t float64, xs, logU []float64, u0Try, tol float64, maxIter int, recomputeEnv func() error) (u0 float64, iterations int, err error) {
	gxb := m.GrowthRate(g.Xb, t)
	if gxb == 0 {
		return 0, 0, fmt.Errorf("kernels: CM boundary growth rate is zero at xb=%g", g.Xb)
	}

	J := len(xs)
	bu := make([]float64, J)

	uTry := u0Try
	for it := 0; it < maxIter; it++ {
		logU[0] = uTry
		if recomputeEnv != nil {
			if err := recomputeEnv(); err != nil {
				return uTry, it, err
			}
		}
		for i := 0; i < J; i++ {
			bu[i] = m.BirthRate(xs[i], t) * math.Exp(logU[i])
		}
		birthFlux := quad.Trapz(xs, bu)
		uLinNext := birthFlux / gxb
		uNext := math.Log(uLinNext)
		if math.Abs(uNext-uTry) < tol {
			logU[0] = uNext
			return uNext, it + 1, nil
		}
		uTry = uNext
	}
	return uTry, maxIter, fmt.Errorf("%w: did not converge in %d iterations", ErrBoundaryNonConvergence, maxIter)
}
