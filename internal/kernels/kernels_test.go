package kernels_test

import (
	"math"
	"testing"

	"github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/internal/kernels"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

type constModel struct{ G, M, B float64 }

func (c *constModel) GrowthRate(x, t float64) float64      { return c.G }
func (c *constModel) MortalityRate(x, t float64) float64   { return c.M }
func (c *constModel) BirthRate(x, t float64) float64       { return c.B }
func (c *constModel) InitDensity(x float64) float64        { return math.Exp(-x) }
func (c *constModel) InitStateExtra(x, t float64) []float64 { return nil }
func (c *constModel) ComputeEnv(t float64, env model.Environment) error { return nil }

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

func TestFMU_DimensionMismatch(t *testing.T) {
	g, _ := grid.New(linspace(0, 10, 11))
	g.ComputeCellGeometry()
	m := &constModel{G: 1, M: 0, B: 0}
	S := make([]float64, 3)
	dSdt := make([]float64, 10)
	l := layout.NewPackedLayout(g.NumCells(), "u")
	if err := kernels.FMU(m, g, l, 0, S, dSdt); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestFMU_PureGrowthConservesInterior(t *testing.T) {
	g, _ := grid.New(linspace(0, 10, 101))
	g.ComputeCellGeometry()
	m := &constModel{G: 1, M: 0, B: 0}
	J := g.NumCells()
	S := make([]float64, J)
	for i, xc := range g.CellCenters {
		S[i] = math.Exp(-xc)
	}
	dSdt := make([]float64, J)
	l := layout.NewPackedLayout(J, "u")
	if err := kernels.FMU(m, g, l, 0, S, dSdt); err != nil {
		t.Fatalf("FMU returned error: %v", err)
	}
	// Pure advection with g=1, m=0: interior cells should see du/dt ~=
	// -(u_i-u_{i-1})/h, negative wherever u is decreasing in x.
	for i := 1; i < J-1; i++ {
		want := -(S[i] - S[i-1]) / g.Widths[i]
		if math.Abs(dSdt[i]-want) > 1e-9 {
			t.Errorf("cell %d: got %.9f want %.9f", i, dSdt[i], want)
		}
	}
}

func TestEBT_ExponentialDecay(t *testing.T) {
	g, _ := grid.New(linspace(1, 5, 4))
	m := &constModel{G: 0, M: 0.5, B: 0}
	J := g.NumCohorts()
	S := make([]float64, 2*J)
	for k := 1; k < J; k++ {
		S[k] = g.X[k]
		S[J+k] = 1.0
	}
	dSdt := make([]float64, 2*J)
	l := layout.NewPackedLayout(J, "X", "N")
	if err := kernels.EBT(m, g, l, 0, S, dSdt); err != nil {
		t.Fatalf("EBT returned error: %v", err)
	}
	for k := 1; k < J; k++ {
		if dSdt[k] != 0 {
			t.Errorf("cohort %d: expected dX/dt=0 with g=0, got %g", k, dSdt[k])
		}
		want := -0.5 * S[J+k]
		if math.Abs(dSdt[J+k]-want) > 1e-12 {
			t.Errorf("cohort %d: dN/dt got %.12f want %.12f", k, dSdt[J+k], want)
		}
	}
}

func TestCM_BoundaryPinnedAtXb(t *testing.T) {
	g, _ := grid.New(linspace(0, 5, 6))
	m := &constModel{G: 1, M: 0.2, B: 0}
	J := g.NumCohorts()
	S := make([]float64, 2*J)
	copy(S[0:J], g.X)
	dSdt := make([]float64, 2*J)
	l := layout.NewPackedLayout(J, "x", "u")
	if err := kernels.CM(m, g, l, 0, S, dSdt); err != nil {
		t.Fatalf("CM returned error: %v", err)
	}
	if dSdt[0] != 0 {
		t.Errorf("expected dx_0/dt=0 (pinned at xb), got %g", dSdt[0])
	}
	for i := 1; i < J; i++ {
		if dSdt[i] != 1.0 {
			t.Errorf("cohort %d: expected dx/dt=g=1, got %g", i, dSdt[i])
		}
	}
}

// EBT/CM kernels must size themselves off the layout, not the grid:
// CohortManager resizes a species' Layout on structural updates without
// touching its Grid, so a stale (smaller) grid must not make the kernel
// reject a buffer whose length matches the current layout.
func TestEBT_SizesFromLayoutNotGrid(t *testing.T) {
	g, _ := grid.New(linspace(1, 5, 4)) // grid still describes J=4 cohorts
	m := &constModel{G: 0, M: 0.5, B: 0}
	J := 5 // layout now describes one more cohort than the grid
	S := make([]float64, 2*J)
	for k := 1; k < J; k++ {
		S[k] = float64(k)
		S[J+k] = 1.0
	}
	dSdt := make([]float64, 2*J)
	l := layout.NewPackedLayout(J, "X", "N")
	if err := kernels.EBT(m, g, l, 0, S, dSdt); err != nil {
		t.Fatalf("EBT returned error sizing from a grown layout: %v", err)
	}
}

func TestCM_SizesFromLayoutNotGrid(t *testing.T) {
	g, _ := grid.New(linspace(0, 5, 6)) // grid still describes J=6 cohorts
	m := &constModel{G: 1, M: 0.2, B: 0}
	J := 5 // layout now describes one fewer cohort than the grid
	S := make([]float64, 2*J)
	copy(S[0:J], linspace(0, 4, J))
	dSdt := make([]float64, 2*J)
	l := layout.NewPackedLayout(J, "x", "u")
	if err := kernels.CM(m, g, l, 0, S, dSdt); err != nil {
		t.Fatalf("CM returned error sizing from a shrunk layout: %v", err)
	}
}

type extraModel struct {
	constModel
}

func (e *extraModel) ExtraRates(x float64, extra []float64, t float64) []float64 {
	out := make([]float64, len(extra))
	for i, v := range extra {
		out[i] = v * x
	}
	return out
}

func TestExtras_WalksColumnsViaCursor(t *testing.T) {
	m := &extraModel{}
	l := layout.NewPackedLayout(2, "u")
	l.AddInterleaved("a", "b")
	xs := []float64{2.0, 3.0}
	// u u | a b a b
	S := []float64{100, 200, 1, 10, 1, 10}
	dSdt := make([]float64, len(S))

	if err := kernels.Extras(m, l, []string{"a", "b"}, xs, 0, S, dSdt); err != nil {
		t.Fatalf("Extras returned error: %v", err)
	}
	// column 0: a=1,b=10 at x=2 -> rates 2,20; column 1: same values at x=3 -> 3,30
	want := []float64{0, 0, 2, 20, 3, 30}
	for i := range want {
		if dSdt[i] != want[i] {
			t.Errorf("dSdt[%d] = %g, want %g", i, dSdt[i], want[i])
		}
	}
}

func TestExtras_DimensionMismatch(t *testing.T) {
	m := &extraModel{}
	l := layout.NewPackedLayout(2, "u")
	l.AddInterleaved("a")
	xs := []float64{1, 2}
	S := make([]float64, 3)
	dSdt := make([]float64, 4)
	if err := kernels.Extras(m, l, []string{"a"}, xs, 0, S, dSdt); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestMMU_Unimplemented(t *testing.T) {
	g, _ := grid.New(linspace(0, 1, 3))
	m := &constModel{}
	l := layout.NewPackedLayout(g.NumCohorts(), "u")
	if err := kernels.MMU(m, g, l, 0, nil, nil); err != kernels.ErrMMUUnimplemented {
		t.Errorf("expected ErrMMUUnimplemented, got %v", err)
	}
}
