// Package model defines the contract a user supplies to drive a Solver.
//
// The solver core never implements growth, mortality, birth or the
// environment; it only calls into whatever satisfies [Model]. This mirrors
// how the teacher's internal/dynamo package separates dyn dynamo.System
// (user-supplied) from dynamo.Integrator (library-supplied).
package model

// Environment lets a Model read the full simulation state when computing
// its environment, including species other than its own.
type Environment interface {
	// SpeciesState returns the flat state slice owned by species i.
	SpeciesState(i int) []float64
	// NumSpecies reports how many species share this Environment.
	NumSpecies() int
}

// Model is the per-species demographic contract. x is always a size along
// the species' own axis; t is simulation time.
type Model interface {
	// GrowthRate returns g(x, t).
	GrowthRate(x, t float64) float64
	// MortalityRate returns m(x, t).
	MortalityRate(x, t float64) float64
	// BirthRate returns b(x, t).
	BirthRate(x, t float64) float64
	// InitDensity returns the initial density u(x, 0). Must be positive.
	InitDensity(x float64) float64
	// InitStateExtra returns initial values for the species' declared
	// extra state variables at size x, time t. The returned slice length
	// must equal the number of extra variable names the species declared.
	InitStateExtra(x, t float64) []float64
	// ComputeEnv recomputes any model-internal environment variables that
	// GrowthRate/MortalityRate/BirthRate depend on. Called once per
	// derivative evaluation, before those rates are consulted. Must be
	// idempotent in (t, env).
	ComputeEnv(t float64, env Environment) error
}

// ExtraRateProvider is an optional capability: a Model that declares extra
// per-cohort state variables implements this to supply their rates. Models
// with no extras, or constant extras, need not implement it; the extras
// kernel then leaves their derivatives at zero. This mirrors the teacher's
// optional dynamo.Hamiltonian capability check in internal/metrics/energy.go.
type ExtraRateProvider interface {
	// ExtraRates returns d(extra)/dt for the cohort at size x with current
	// extra-state values extra, at time t. The returned slice must have
	// the same length as extra.
	ExtraRates(x float64, extra []float64, t float64) []float64
}
