package kernels

import (
	"fmt"

	"github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// EBT fills dSdt for the escalator boxcar train. State is X[0..J-1]
// followed by N[0..J-1]; X[0] carries π0 (first-moment deviation of the
// boundary cell) and N[0] carries N0 (its cohort count). For k>=1, X_k is
// an ordinary size and N_k an ordinary count. l's IteratorSet addresses
// the "X"/"N" blocks by name (spec section 4.2).
func EBT(m model.Model, g *grid.Grid, l *layout.Layout, t float64, S, dSdt []float64) error {
	// J comes from the layout, not g.NumCohorts(): CohortManager resizes a
	// species' Layout (and the state buffer) on structural updates without
	// touching its Grid, so g.NumCohorts() would still report the cohort
	// count the species was constructed with.
	J := l.J
	if len(S) != 2*J || len(dSdt) != 2*J {
		return fmt.Errorf("%w: EBT expected state length %d, got S=%d dSdt=%d", ErrDimensionMismatch, 2*J, len(S), len(dSdt))
	}

	sVars := l.Iterators(S)
	dVars := l.Iterators(dSdt)
	Xv, err := sVars.Lookup("X")
	if err != nil {
		return err
	}
	Nv, err := sVars.Lookup("N")
	if err != nil {
		return err
	}
	dXv, err := dVars.Lookup("X")
	if err != nil {
		return err
	}
	dNv, err := dVars.Lookup("N")
	if err != nil {
		return err
	}

	X := Xv.Raw()
	N := Nv.Raw()
	dX := dXv.Raw()
	dN := dNv.Raw()

	pi0 := X[0]
	n0 := N[0]

	// Births sum over discrete interior cohorts (not a grid integral -
	// EBT's cohorts are not samples of a continuous function).
	var births float64
	for k := 1; k < J; k++ {
		births += m.BirthRate(X[k], t) * N[k]
	}

	gxb := m.GrowthRate(g.Xb, t)
	gprime := grid.OneSidedDerivative(func(xx float64) float64 { return m.GrowthRate(xx, t) }, g.Xb)
	mxb := m.MortalityRate(g.Xb, t)

	dX[0] = gxb*n0 + gprime*pi0 - mxb*pi0
	dN[0] = births - mxb*n0

	for k := 1; k < J; k++ {
		dX[k] = m.GrowthRate(X[k], t)
		dN[k] = -m.MortalityRate(X[k], t) * N[k]
	}
	return nil
}
