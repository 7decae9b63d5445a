package pspm

import (
	"math"

	"github.com/jaideep777/pspm/internal/kernels"
	"github.com/jaideep777/pspm/layout"
)

// deadCohortThreshold is the EBT removeDeadCohorts default: cohorts with
// N_k at or below this are culled (spec section 4.4 names "≈0" without a
// precise value).
const deadCohortThreshold = 1e-12

// cmBoundaryTol and cmBoundaryMaxIter bound calcBirthFlux_CM's fixed-point
// iteration (spec section 7: "no explicit cap is specified... an
// implementer should impose one").
const (
	cmBoundaryTol     = 1e-6
	cmBoundaryMaxIter = 100
)

// ebtStructuralUpdate applies, in order, EBT's remove-before-add structural
// update for species idx (spec section 5: "remove-before-add in EBT, so a
// dead boundary cohort is not re-spawned onto stale data").
func (s *Solver) ebtStructuralUpdate(idx int) error {
	if err := s.ebtRemoveDeadCohorts(idx); err != nil {
		return err
	}
	return s.ebtAddCohort(idx)
}

// ebtRemoveDeadCohorts removes interior cohorts (k>=1) with N_k at or
// below deadCohortThreshold, compacting the X and N blocks and shrinking
// the species' (and every later species') range in the shared buffer.
func (s *Solver) ebtRemoveDeadCohorts(idx int) error {
	sp := s.Species[idx]
	J := sp.J()
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	X := sub[0:J]
	N := sub[J : 2*J]

	keep := make([]int, 0, J)
	keep = append(keep, 0)
	for k := 1; k < J; k++ {
		if N[k] > deadCohortThreshold {
			keep = append(keep, k)
		}
	}
	if len(keep) == J {
		return nil
	}

	newJ := len(keep)
	newX := make([]float64, newJ)
	newN := make([]float64, newJ)
	for i, k := range keep {
		newX[i] = X[k]
		newN[i] = N[k]
	}

	return s.spliceCohortBlocks(idx, newJ, newX, newN)
}

// ebtAddCohort promotes the boundary cell into a new interior cohort once
// it carries any mass, then resets π0=N0=0 (spec section 4.4).
func (s *Solver) ebtAddCohort(idx int) error {
	sp := s.Species[idx]
	J := sp.J()
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	X := sub[0:J]
	N := sub[J : 2*J]

	n0 := N[0]
	if n0 <= 0 {
		return nil
	}
	pi0 := X[0]
	newCohortX := sp.Grid.Xb + pi0/n0
	newCohortN := n0

	newJ := J + 1
	newX := make([]float64, newJ)
	newN := make([]float64, newJ)
	copy(newX, X)
	copy(newN, N)
	newX[J] = newCohortX
	newN[J] = newCohortN
	newX[0] = 0
	newN[0] = 0

	return s.spliceCohortBlocks(idx, newJ, newX, newN)
}

// cmStructuralUpdate applies, in order, CM's add-before-remove structural
// update for species idx (spec section 5: "add-before-remove in CM, so a
// freshly added cohort is not subject to immediate culling").
func (s *Solver) cmStructuralUpdate(idx int) error {
	if err := s.cmAddCohort(idx); err != nil {
		return err
	}
	return s.cmRemoveCohort(idx)
}

// cmAddCohort inserts a fresh boundary cohort (xb, u0) at the front of the
// x- and u-blocks, where u0 solves the renewal fixed point via
// kernels.CalcBirthFluxCM against the post-insertion cohort count.
func (s *Solver) cmAddCohort(idx int) error {
	sp := s.Species[idx]
	J := sp.J()
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	x := sub[0:J]
	u := sub[J : 2*J]

	newJ := J + 1
	newX := make([]float64, newJ)
	newU := make([]float64, newJ)
	newX[0] = sp.Grid.Xb
	copy(newX[1:], x)
	newU[0] = u[0]
	copy(newU[1:], u)

	if err := s.spliceCohortBlocks(idx, newJ, newX, newU); err != nil {
		return err
	}

	sp = s.Species[idx]
	sub = s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	newXs := sub[0:newJ]
	newLogU := sub[newJ : 2*newJ]
	env := &envView{species: s.Species, buf: s.State}
	recompute := func() error { return sp.Model.ComputeEnv(s.t, env) }

	_, _, err := kernels.CalcBirthFluxCM(sp.Model, sp.Grid, s.t, newXs, newLogU, newLogU[0], cmBoundaryTol, cmBoundaryMaxIter, recompute)
	if err != nil {
		return wrapKernelDiagnostic(err)
	}
	return nil
}

// cmRemoveCohort removes the interior cohort minimizing Δx_k (the
// neighbor spacing around it) by building new x and u blocks without its
// (x_k, u_k) pair and splicing them into the state buffer.
func (s *Solver) cmRemoveCohort(idx int) error {
	sp := s.Species[idx]
	J := sp.J()
	if J < 3 {
		return nil
	}
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	x := sub[0:J]
	u := sub[J : 2*J]

	best := -1
	bestDx := math.Inf(1)
	for k := 1; k <= J-2; k++ {
		dx := x[k+1] - x[k-1]
		if dx < bestDx {
			bestDx = dx
			best = k
		}
	}
	if best < 0 {
		return nil
	}

	newJ := J - 1
	newX := make([]float64, newJ)
	newU := make([]float64, newJ)
	copy(newX, x[:best])
	copy(newX[best:], x[best+1:])
	copy(newU, u[:best])
	copy(newU[best:], u[best+1:])

	return s.spliceCohortBlocks(idx, newJ, newX, newU)
}

// spliceCohortBlocks replaces species idx's two packed CM/EBT blocks
// (x/X and u/N) with newly sized ones, splicing the shared state buffer
// and shifting every later species' StartIndex by the resulting size
// delta. Structural updates only ever occur between integrator steps, so
// this is safe to do outside any derivative evaluation (spec section 4.4).
func (s *Solver) spliceCohortBlocks(idx, newJ int, blockA, blockB []float64) error {
	sp := s.Species[idx]
	newExtra := len(sp.ExtraNames)
	oldExtraLen := sp.Size - 2*sp.J()
	var extra []float64
	if oldExtraLen > 0 {
		oldSub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
		extra = append([]float64(nil), oldSub[2*sp.J():]...)
	}

	newSize := 2*newJ + newExtra*newJ
	newBuf := make([]float64, newSize)
	copy(newBuf[0:newJ], blockA)
	copy(newBuf[newJ:2*newJ], blockB)

	if newExtra > 0 {
		oldJ := sp.J()
		count := newExtra
		newExtraBuf := newBuf[2*newJ:]
		if newJ <= oldJ {
			copy(newExtraBuf, extra[:newJ*count])
		} else {
			copy(newExtraBuf[:oldJ*count], extra)
			last := extra[(oldJ-1)*count : oldJ*count]
			for k := oldJ; k < newJ; k++ {
				copy(newExtraBuf[k*count:(k+1)*count], last)
			}
		}
	}

	delta := newSize - sp.Size
	head := s.State[:sp.StartIndex]
	tail := s.State[sp.StartIndex+sp.Size:]
	s.State = append(append(append([]float64{}, head...), newBuf...), tail...)

	sp.Size = newSize
	sp.Layout = rebuildCohortLayout(sp.Method, newJ, sp.ExtraNames)
	for i := idx + 1; i < len(s.Species); i++ {
		s.Species[i].StartIndex += delta
	}
	return nil
}

// rebuildCohortLayout reconstructs a CM/EBT species' layout descriptor
// after a structural resize, rather than mutating a stale Layout.J in
// place: Layout's cached Variable offsets and block lengths are derived
// from J at construction time and must be rebuilt whenever J changes.
func rebuildCohortLayout(method Method, newJ int, extraNames []string) *layout.Layout {
	var l *layout.Layout
	switch method {
	case CM:
		l = layout.NewPackedLayout(newJ, "x", "u")
	case EBT:
		l = layout.NewPackedLayout(newJ, "X", "N")
	}
	if len(extraNames) > 0 {
		l.AddInterleaved(extraNames...)
	}
	return l
}
