package pspm

import (
	"math"
	"testing"
)

// Scenario 1 (spec section 8): pure growth, no mortality, no birth. Mass
// can only ever leave through the domain's right edge, and the upwind
// scheme can only ever move the profile's peak to the right, never
// create a new interior maximum to its left.
func TestSolverFMU_PureGrowthMassNeverIncreases(t *testing.T) {
	m := &linModel{G: 1, M: 0, BirthCoeff: 0}
	s := NewSolver(FMU, DefaultControl())
	if _, err := s.AddSpecies(linspaceT(0, 10, 101), m, nil, 0); err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pop0, err := s.Population(0)
	if err != nil {
		t.Fatalf("Population: %v", err)
	}

	if err := s.StepTo(1.0); err != nil {
		t.Fatalf("StepTo: %v", err)
	}

	pop1, err := s.Population(0)
	if err != nil {
		t.Fatalf("Population: %v", err)
	}
	if pop1 > pop0+1e-9 {
		t.Errorf("population increased with zero birth: pop0=%g pop1=%g", pop0, pop1)
	}
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

// Scenario 1 continued: with u0(x)=exp(-x), decreasing from the left
// boundary, the peak starts at cell 0. Pure rightward advection (g=1>0)
// with an upwind scheme can only shift that peak rightward over time,
// never leave it at the boundary once outflow has begun eating into it.
func TestSolverFMU_PureGrowthPeakAdvectsRight(t *testing.T) {
	m := &linModel{G: 1, M: 0, BirthCoeff: 0}
	s := NewSolver(FMU, DefaultControl())
	sp, err := s.AddSpecies(linspaceT(0, 10, 101), m, nil, 0)
	if err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	u0 := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	peak0 := argmax(u0)

	if err := s.StepTo(1.0); err != nil {
		t.Fatalf("StepTo: %v", err)
	}

	u1 := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	peak1 := argmax(u1)

	if peak1 <= peak0 {
		t.Errorf("peak did not move right: cell %d -> cell %d", peak0, peak1)
	}
}

// Scenario 2: exponential decay. g=0 (cohorts stay put), constant
// mortality m: every EBT cohort's N decays by exactly exp(-m*t), an exact
// solution of the decoupled linear ODE dN/dt=-m*N that the adaptive
// integrator should reproduce to high accuracy regardless of step size.
func TestSolverEBT_ExponentialDecayMatchesClosedForm(t *testing.T) {
	m := &linModel{G: 0, M: 0.5, BirthCoeff: 0}
	ctrl := DefaultControl()
	ctrl.OdeEps = 1e-10
	s := NewSolver(EBT, ctrl)
	sp, err := s.AddSpecies(linspaceT(1, 5, 4), m, nil, 0)
	if err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.ResetState(); err != nil {
		t.Fatalf("ResetState: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	J := sp.J()
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	N0 := make([]float64, J)
	copy(N0, sub[J:2*J])

	const tEnd = 2.0
	if err := s.StepTo(tEnd); err != nil {
		t.Fatalf("StepTo: %v", err)
	}

	sub = s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	N1 := sub[J : 2*J]
	factor := math.Exp(-0.5 * tEnd)
	for k := 1; k < J; k++ {
		want := N0[k] * factor
		if math.Abs(N1[k]-want) > 1e-6 {
			t.Errorf("cohort %d: N=%g, want %g (N0=%g * e^-mt)", k, N1[k], want, N0[k])
		}
	}
}

// CM's boundary cohort stays pinned at xb and x remains strictly
// increasing across a step, per the CM invariant in spec section 3.
func TestSolverCM_BoundaryPinnedAndMonotoneAfterStep(t *testing.T) {
	m := &linModel{G: 1, M: 0.2, BirthCoeff: 0.05}
	s := NewSolver(CM, DefaultControl())
	sp, err := s.AddSpecies(linspaceT(1, 6, 6), m, nil, 0)
	if err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	xb := sp.Grid.Xb

	if err := s.StepTo(0.5); err != nil {
		t.Fatalf("StepTo: %v", err)
	}

	sp = s.Species[0]
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	J := sp.J()
	x := sub[0:J]
	if math.Abs(x[0]-xb) > 1e-9 {
		t.Errorf("x[0] = %g, want xb = %g", x[0], xb)
	}
	if !sp.Grid.IsMonotonic() {
		// Grid.X isn't updated by the kernel; check the live state instead.
	}
	for i := 1; i < J; i++ {
		if x[i] <= x[i-1] {
			t.Errorf("x not strictly increasing at %d: x[%d]=%g x[%d]=%g", i, i-1, x[i-1], i, x[i])
		}
	}
}

func TestSolver_U0OutZeroGrowthRateError(t *testing.T) {
	m := &linModel{G: 0, M: 0.5, BirthCoeff: 1}
	s := NewSolver(FMU, DefaultControl())
	if _, err := s.AddSpecies(linspaceT(0, 5, 6), m, nil, 0); err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := s.U0Out(0); err == nil {
		t.Error("expected error from U0Out with zero boundary growth rate")
	}
}
