package kernels

import (
	"errors"

	"github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// ErrMMUUnimplemented is returned by MMU: the moving-mesh method's rate
// kernel is stubbed in every source this library was grounded on (spec
// section 4.3.4/9). The state layout (mesh nodes advecting with g) is
// spec'd, but no derivative equations survive in the retrievable sources
// to port faithfully, so this is left as an explicit error rather than a
// guessed implementation.
var ErrMMUUnimplemented = errors.New("kernels: MMU rate kernel is not implemented")

// MMU always fails: see ErrMMUUnimplemented.
func MMU(m model.Model, g *grid.Grid, l *layout.Layout, t float64, S, dSdt []float64) error {
	return ErrMMUUnimplemented
}
