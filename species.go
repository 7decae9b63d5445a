package pspm

import (
	"errors"
	"fmt"

	igrid "github.com/jaideep777/pspm/internal/grid"
	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// Species bundles one species' grid, state layout, model collaborator
// and its range within the solver's shared flat state buffer. Grounded on
// the composition style of the teacher's internal/sim/types.go
// (Dynamics+Config held together, rather than inherited).
type Species struct {
	Grid           *igrid.Grid
	Layout         *layout.Layout
	Model          model.Model
	ExtraNames     []string
	StartIndex     int
	Size           int
	InputBirthFlux float64
	Method         Method
}

func newSpecies(method Method, breakpoints []float64, m model.Model, extraNames []string, inputBirthFlux float64) (*Species, error) {
	g, err := igrid.New(breakpoints)
	if err != nil {
		if errors.Is(err, igrid.ErrNonMonotonic) {
			return nil, fmt.Errorf("%w: %v", ErrNonMonotonicBreakpoints, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}

	var l *layout.Layout
	switch method {
	case FMU, MMU:
		if err := g.ComputeCellGeometry(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
		}
		l = layout.NewPackedLayout(g.NumCells(), "u")
	case CM:
		l = layout.NewPackedLayout(g.NumCohorts(), "x", "u")
	case EBT:
		l = layout.NewPackedLayout(g.NumCohorts(), "X", "N")
	default:
		return nil, fmt.Errorf("%w: unknown method %v", ErrInvalidGrid, method)
	}

	if len(extraNames) > 0 {
		l.AddInterleaved(extraNames...)
	}

	return &Species{
		Grid:           g,
		Layout:         l,
		Model:          m,
		ExtraNames:     extraNames,
		Size:           l.Size(),
		InputBirthFlux: inputBirthFlux,
		Method:         method,
	}, nil
}

// J returns the cohort/cell count this species' layout iterates over.
func (s *Species) J() int { return s.Layout.J }

// Range returns [start, end) of this species within the solver's global
// state buffer.
func (s *Species) Range() (start, end int) { return s.StartIndex, s.StartIndex + s.Size }

// gridX returns, per method, the size value associated with each column:
// FMU/MMU use cell centers, CM/EBT use the cohort's own size variable.
func (s *Species) gridX(S []float64) []float64 {
	switch s.Method {
	case FMU, MMU:
		return s.Grid.CellCenters
	case CM, EBT:
		return S[0:s.J()]
	}
	return nil
}
