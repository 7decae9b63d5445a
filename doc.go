// Package pspm solves physiologically structured population models: the
// evolution of a population density u(x,t) over a one-dimensional size
// axis x, under caller-supplied growth, mortality and birth rates.
//
// The package defines the core simulation primitives:
//
//   - [Method]: the discretization scheme (FMU, MMU, CM, EBT)
//   - [Solver]: owns one or more species sharing a flat state buffer and
//     drives them forward in time
//   - [Species]: one species' grid, layout and model collaborator
//   - [Control]: accuracy and stepping settings
//
// Kernels and the adaptive integrator live under internal/, and the
// state-layout machinery in package layout; callers only implement
// [model.Model] and drive a [Solver].
//
// # Example
//
//	solver := pspm.NewSolver(pspm.FMU, pspm.DefaultControl())
//	sp, _ := solver.AddSpecies(breakpoints, myModel, nil, 0)
//	_ = solver.Initialize()
//	_ = solver.StepTo(10.0)
//	u0, _ := solver.U0Out(0)
//
// # Thread Safety
//
// Solver instances are NOT thread-safe: spec.md's Non-goals exclude
// parallel execution across cohorts, and the integrator's scratch
// buffers are owned per-Solver and mutated in place during a step.
package pspm
