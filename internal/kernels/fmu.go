package kernels

import (
	"fmt"

	"github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/internal/quad"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// FMU fills dSdt for the fixed-mesh upwind finite-volume method. State is
// u[0..J-1], one density per cell; g.CellCenters/Widths must already be
// computed (grid.ComputeCellGeometry). The lower-boundary face value is
// reconstructed from the birth flux B = ∫ b(x,t)u(x)dx via u*_0 = B/g(xb,t);
// every other face uses first-order upwind reconstruction (spec section
// 4.3.1 leaves the reconstruction scheme as an open policy knob - this
// implements the default it names). l's IteratorSet is used to address
// the "u" block by name rather than by raw offset (spec section 4.2).
func FMU(m model.Model, g *grid.Grid, l *layout.Layout, t float64, S, dSdt []float64) error {
	J := l.J
	if len(S) != J || len(dSdt) != J {
		return fmt.Errorf("%w: FMU expected state length %d, got S=%d dSdt=%d", ErrDimensionMismatch, J, len(S), len(dSdt))
	}

	sv, err := l.Iterators(S).Lookup("u")
	if err != nil {
		return err
	}
	dv, err := l.Iterators(dSdt).Lookup("u")
	if err != nil {
		return err
	}
	S, dSdt = sv.Raw(), dv.Raw()

	bu := make([]float64, J)
	for i := 0; i < J; i++ {
		bu[i] = m.BirthRate(g.CellCenters[i], t) * S[i]
	}
	birthFlux := quad.Trapz(g.CellCenters, bu)

	gxb := m.GrowthRate(g.Xb, t)
	if gxb == 0 {
		return fmt.Errorf("kernels: FMU boundary growth rate is zero at xb=%g", g.Xb)
	}

	// uStar[k] is the upwind reconstruction at face x[k], k=0..J.
	uStar := make([]float64, J+1)
	uStar[0] = birthFlux / gxb
	for k := 1; k < J; k++ {
		uStar[k] = S[k-1]
	}
	uStar[J] = S[J-1]

	for i := 0; i < J; i++ {
		fluxLo := m.GrowthRate(g.X[i], t) * uStar[i]
		fluxHi := m.GrowthRate(g.X[i+1], t) * uStar[i+1]
		dSdt[i] = -(fluxHi-fluxLo)/g.Widths[i] - m.MortalityRate(g.CellCenters[i], t)*S[i]
	}
	return nil
}
