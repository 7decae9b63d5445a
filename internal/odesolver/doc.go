// Package odesolver implements the embedded Cash-Karp 5(4) Runge-Kutta
// stepper with per-component error-scaled adaptive step control.
//
// Grounded on the teacher's internal/integrators/rk45.go (struct shape:
// safety/scale fields, Step/StepAdaptive methods operating on a flat
// numeric state), with the Dormand-Prince tableau it uses replaced
// bit-for-bit by the Cash-Karp coefficients from the original C++
// RKCK45::RKTry (pspm_ode_solver2.h). Scratch buffers are owned per
// instance (design note: "static scratch inside RK4" must become
// per-instance state to avoid cross-instance aliasing).
package odesolver
