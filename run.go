package pspm

import (
	"math"

	"github.com/jaideep777/pspm/internal/quad"
	"github.com/jaideep777/pspm/metrics"
)

// Population returns species i's zeroth moment: total population mass
// (FMU/MMU: ∫u dx over cells, i.e. Σ u_i·h_i; CM: ∫exp(logU) dx over
// cohorts; EBT: Σ N_k including the boundary cell's N0).
func (s *Solver) Population(i int) (float64, error) {
	sp := s.Species[i]
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	J := sp.J()

	switch sp.Method {
	case FMU, MMU:
		u := sub[0:J]
		var total float64
		for k, h := range sp.Grid.Widths {
			total += u[k] * h
		}
		return total, nil
	case CM:
		x := sub[0:J]
		logu := sub[J : 2*J]
		u := make([]float64, J)
		for i, lu := range logu {
			u[i] = math.Exp(lu)
		}
		return quad.Trapz(x, u), nil
	case EBT:
		N := sub[J : 2*J]
		var total float64
		for _, n := range N {
			total += n
		}
		return total, nil
	}
	return 0, ErrMethodUnimplemented
}

// MeanSize returns species i's mean size, the ratio of its first moment
// (size-weighted mass, quad.Moment with p=1) to its zeroth moment
// (quad.Moment with p=0). EBT's cohorts are discrete, so both moments are computed
// as direct weighted sums over X rather than through quad.Moment, which
// assumes samples of a continuous function.
func (s *Solver) MeanSize(i int) (float64, error) {
	sp := s.Species[i]
	sub := s.State[sp.StartIndex : sp.StartIndex+sp.Size]
	J := sp.J()

	var p0, p1 float64
	switch sp.Method {
	case FMU, MMU:
		u := sub[0:J]
		p0 = quad.Moment(sp.Grid.CellCenters, u, 0)
		p1 = quad.Moment(sp.Grid.CellCenters, u, 1)
	case CM:
		x := sub[0:J]
		logu := sub[J : 2*J]
		u := make([]float64, J)
		for i, lu := range logu {
			u[i] = math.Exp(lu)
		}
		p0 = quad.Moment(x, u, 0)
		p1 = quad.Moment(x, u, 1)
	case EBT:
		X := sub[0:J]
		N := sub[J : 2*J]
		for k := range N {
			p0 += N[k]
			p1 += X[k] * N[k]
		}
	default:
		return 0, ErrMethodUnimplemented
	}
	if p0 == 0 {
		return 0, nil
	}
	return p1 / p0, nil
}

// snapshot samples every species' population, boundary birth flux and
// boundary density at the solver's current time, for consumption by
// metrics.Metric/metrics.Observer.
func (s *Solver) snapshot() metrics.Snapshot {
	n := len(s.Species)
	snap := metrics.Snapshot{
		Time:        s.t,
		Population:  make([]float64, n),
		NewbornsOut: make([]float64, n),
		U0Out:       make([]float64, n),
	}
	for i := range s.Species {
		if p, err := s.Population(i); err == nil {
			snap.Population[i] = p
		}
		if b, err := s.NewbornsOut(i); err == nil {
			snap.NewbornsOut[i] = b
		}
		if u0, err := s.U0Out(i); err == nil {
			snap.U0Out[i] = u0
		}
	}
	return snap
}

// Run drives the solver from its current time to tEnd in increments of
// dt, observing the given metrics and observers after each step.
// Adapted from the teacher's sim.Simulator.Run loop, minus the
// control/energy-drift machinery that has no PSPM analogue (spec.md's
// Non-goals exclude control entirely).
func (s *Solver) Run(tEnd, dt float64, ms []metrics.Metric, observers []metrics.Observer) error {
	for _, m := range ms {
		m.Reset()
	}
	for s.t < tEnd {
		target := s.t + dt
		if target > tEnd {
			target = tEnd
		}
		if err := s.StepTo(target); err != nil {
			return err
		}
		snap := s.snapshot()
		for _, m := range ms {
			m.Observe(snap)
		}
		for _, o := range observers {
			o.OnStep(snap)
		}
	}
	return nil
}
