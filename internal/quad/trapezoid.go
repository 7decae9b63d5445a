// Package quad provides the trapezoidal quadrature primitive shared by
// FMU's boundary flux and CM's birth-flux fixed-point iteration
// (spec section 4.5). Quadrature over x beyond this is out of scope.
package quad

import "math"

// Trapz integrates paired samples (x[i], y[i]) with the composite
// trapezoidal rule. x must be strictly increasing and len(x) == len(y).
// Returns 0 for fewer than 2 points.
func Trapz(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(x); i++ {
		sum += (x[i] - x[i-1]) * (y[i] + y[i-1]) * 0.5
	}
	return sum
}

// Moment integrates x^p * u(x) over the grid via Trapz, the general
// weighted-moment form the original quadrature contract names (p=0 gives
// total population, p=1 total size-weighted mass, etc). Birth flux itself
// needs only the plain integral (p=0); Moment is kept general for
// downstream consumers such as Solver.MeanSize.
func Moment(x, u []float64, p float64) float64 {
	if p == 0 {
		return Trapz(x, u)
	}
	weighted := make([]float64, len(u))
	for i, xi := range x {
		weighted[i] = math.Pow(xi, p) * u[i]
	}
	return Trapz(x, weighted)
}
