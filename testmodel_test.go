package pspm

import (
	"math"

	"github.com/jaideep777/pspm/model"
)

// linModel is a constant-coefficient test double: growth and mortality
// are constant in x and t, birth is linear in x (b(x,t) = BirthCoeff*x).
type linModel struct {
	G, M, BirthCoeff float64
	density          func(x float64) float64
}

func (m *linModel) GrowthRate(x, t float64) float64    { return m.G }
func (m *linModel) MortalityRate(x, t float64) float64 { return m.M }
func (m *linModel) BirthRate(x, t float64) float64     { return m.BirthCoeff * x }
func (m *linModel) InitDensity(x float64) float64 {
	if m.density != nil {
		return m.density(x)
	}
	return math.Exp(-x)
}
func (m *linModel) InitStateExtra(x, t float64) []float64            { return nil }
func (m *linModel) ComputeEnv(t float64, env model.Environment) error { return nil }

func linspaceT(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}
