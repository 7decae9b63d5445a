// Package grid describes a species' size-axis discretization: boundary and
// upper size, breakpoints, and (for FMU) the derived cell centers and
// widths. Grounded on the teacher's plain parameter-struct idiom
// (internal/physics/pendulum.go: a struct of fields, a constructor, and
// validating methods).
package grid

import (
	"errors"
	"fmt"
)

// ErrTooFewBreakpoints indicates fewer than 2 breakpoints were supplied.
var ErrTooFewBreakpoints = errors.New("grid: need at least 2 breakpoints")

// ErrNonMonotonic indicates breakpoints that are not strictly increasing.
// species.go wraps this as the root package's ErrNonMonotonicBreakpoints.
var ErrNonMonotonic = errors.New("grid: breakpoints must be strictly increasing")

// Grid is the breakpoint mesh for one species.
type Grid struct {
	Xb, Xm      float64
	X           []float64 // breakpoints, x[0..len(X)-1]
	CellCenters []float64 // FMU only: (x[i]+x[i+1])/2, length len(X)-1
	Widths      []float64 // FMU only: x[i+1]-x[i], length len(X)-1
}

// New validates breakpoints and builds a Grid. There must be at least 2
// breakpoints, strictly increasing.
func New(breakpoints []float64) (*Grid, error) {
	if len(breakpoints) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewBreakpoints, len(breakpoints))
	}
	for i := 1; i < len(breakpoints); i++ {
		if breakpoints[i] <= breakpoints[i-1] {
			return nil, fmt.Errorf("%w: x[%d]=%g <= x[%d]=%g", ErrNonMonotonic, i, breakpoints[i], i-1, breakpoints[i-1])
		}
	}
	x := make([]float64, len(breakpoints))
	copy(x, breakpoints)
	return &Grid{
		Xb: x[0],
		Xm: x[len(x)-1],
		X:  x,
	}, nil
}

// NumCells returns the number of finite-volume cells, i.e. len(X)-1. Used
// as J by FMU and MMU.
func (g *Grid) NumCells() int { return len(g.X) - 1 }

// NumCohorts returns len(X), the cohort count used as J by CM and EBT.
func (g *Grid) NumCohorts() int { return len(g.X) }

// ComputeCellGeometry fills CellCenters and Widths from X. Required before
// the FMU kernel runs; a no-op cost for methods that never read them.
func (g *Grid) ComputeCellGeometry() error {
	n := g.NumCells()
	g.CellCenters = make([]float64, n)
	g.Widths = make([]float64, n)
	for i := 0; i < n; i++ {
		h := g.X[i+1] - g.X[i]
		if h <= 0 {
			return fmt.Errorf("grid: non-positive cell width at cell %d: %g", i, h)
		}
		g.Widths[i] = h
		g.CellCenters[i] = 0.5 * (g.X[i] + g.X[i+1])
	}
	return nil
}

// IsMonotonic reports whether the grid's breakpoints X are strictly
// increasing. CM structural updates change the state buffer, not X.
func (g *Grid) IsMonotonic() bool {
	for i := 1; i < len(g.X); i++ {
		if g.X[i] <= g.X[i-1] {
			return false
		}
	}
	return true
}

// OneSidedDerivative returns a numerical derivative of f at x using a fixed
// forward step of 1e-3, as spec'd for g' in the CM and EBT kernels.
func OneSidedDerivative(f func(float64) float64, x float64) float64 {
	const h = 1e-3
	return (f(x+h) - f(x)) / h
}
