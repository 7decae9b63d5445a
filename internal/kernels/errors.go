package kernels

import "errors"

// ErrDimensionMismatch indicates a kernel was handed a state or rates
// buffer whose length doesn't match what its layout/grid describe. The
// root package wraps this as pspm.ErrDimensionMismatch when surfacing a
// kernel failure as a diagnostic.
var ErrDimensionMismatch = errors.New("kernels: state/rates buffer length mismatch")

// ErrBoundaryNonConvergence indicates CalcBirthFluxCM's renewal
// fixed-point iteration didn't settle within its iteration cap. The root
// package wraps this as pspm.ErrBoundaryNonConvergence.
var ErrBoundaryNonConvergence = errors.New("kernels: boundary density iteration did not converge")
