// Package kernels implements the method-specific derivative kernels:
// FMU, CM, EBT (MMU left stubbed), plus the extras kernel shared by all
// four. Each kernel reads its species' range of the state buffer and
// writes only into the matching range of dSdt, never touching anything
// outside it (spec section 5's shared-resource policy), addressing named
// blocks ("u", "x"/"u", "X"/"N") through a layout.Layout's IteratorSet
// rather than by raw offset. Grounded on the per-model Derive/Derivative
// methods in the teacher's internal/physics and internal/models
// packages, generalized from a single hardcoded system to a model.Model
// collaborator plus a grid.Grid description.
package kernels
