package odesolver

import (
	"fmt"
	"math"
)

const (
	safety = 0.9
	pgrow  = -0.2
	pshrnk = -0.25
	errcon = 1.89e-4
)

// DerivFunc evaluates dy/dt at (t, y), returning a freshly allocated
// derivative vector the same length as y.
type DerivFunc func(t float64, y []float64) []float64

// Stepper is the embedded Cash-Karp 5(4) adaptive integrator: a single
// owned instance of scratch storage plus the scale/accuracy state from
// the original RKCK45 class, re-expressed with explicit return values in
// place of the original's by-reference mutation.
type Stepper struct {
	Eps float64 // accuracy: max_i |yerr_i/yscal_i| must not exceed this

	xt float64 // current time
	ht float64 // current trial step

	nok, nbad int // good / bad step counters

	n      int
	yscal  []float64
	sc     scratch
	underflows int // count of non-fatal step-size-underflow events
}

// NewStepper creates a stepper with the given accuracy and initial trial
// step size, starting at time t0.
func NewStepper(eps, h0, t0 float64) *Stepper {
	return &Stepper{Eps: eps, ht: h0, xt: t0}
}

// Time reports the stepper's current time.
func (s *Stepper) Time() float64 { return s.xt }

// StepSize reports the current trial step.
func (s *Stepper) StepSize() float64 { return s.ht }

// Counts returns the good/bad step counters accumulated so far.
func (s *Stepper) Counts() (nok, nbad int) { return s.nok, s.nbad }

// Underflows reports how many non-fatal step-size-underflow events have
// been recorded.
func (s *Stepper) Underflows() int { return s.underflows }

func (s *Stepper) resize(n int) {
	if s.n == n {
		return
	}
	s.n = n
	s.yscal = make([]float64, n)
	s.sc.resize(n)
}

// Step takes one adaptive Cash-Karp step of at most s.ht, mutating y in
// place and advancing s.xt. It never steps past tStop; if s.xt+s.ht would
// overshoot, the trial step is clamped to land exactly on tStop.
func (s *Stepper) Step(y []float64, f DerivFunc, tStop float64) error {
	n := len(y)
	s.resize(n)

	dydx := f(s.xt, y)
	for i := 0; i < n; i++ {
		s.yscal[i] = math.Abs(y[i]) + math.Abs(dydx[i]*s.ht) + 1e-3
	}

	hTry := s.ht
	if s.xt+hTry > tStop {
		hTry = tStop - s.xt
	}

	hdid, hnext, err := s.rkStep(y, dydx, hTry, f)
	if hdid == s.ht {
		s.nok++
	} else {
		s.nbad++
	}
	s.xt += hdid
	s.ht = hnext
	return err
}

// StepTo repeatedly calls Step until s.xt reaches tTarget, then snaps s.xt
// to tTarget exactly to absorb any floating-point residue from clamping.
// Step-size-underflow diagnostics are non-fatal (spec section 7): StepTo
// keeps stepping and returns the most recent one, if any, once it reaches
// tTarget.
func (s *Stepper) StepTo(tTarget float64, y []float64, f DerivFunc) error {
	var lastDiag error
	for s.xt < tTarget {
		if err := s.Step(y, f, tTarget); err != nil {
			lastDiag = err
		}
	}
	s.xt = tTarget
	return lastDiag
}

// rkStep is the inner accept/retry loop: try a step of h, and if the
// scaled error exceeds Eps, shrink h and retry.
func (s *Stepper) rkStep(y, dydx []float64, hTry float64, f DerivFunc) (hdid, hnext float64, err error) {
	n := len(y)
	h := hTry

	var yout, yerr []float64
	for {
		yout, yerr = rkTry(f, s.xt, y, dydx, h, &s.sc)

		errmax := 0.0
		for i := 0; i < n; i++ {
			errmax = math.Max(errmax, math.Abs(yerr[i]/s.yscal[i]))
		}
		errmax /= s.Eps

		if errmax <= 1.0 {
			if errmax > errcon {
				hnext = safety * h * math.Pow(errmax, pgrow)
			} else {
				hnext = 5.0 * h
			}
			break
		}

		hshrunk := safety * h * math.Pow(errmax, pshrnk)
		if h >= 0 {
			h = math.Max(hshrunk, 0.1*h)
		} else {
			h = math.Min(hshrunk, 0.1*h)
		}

		if s.xt+h == s.xt {
			// Step size has underflowed to zero in floating point: the
			// original source only logs and keeps looping, which would
			// spin forever here since h can no longer change. Accept the
			// current (out-of-tolerance) trial step instead and surface
			// the underflow as a non-fatal diagnostic.
			s.underflows++
			err = fmt.Errorf("odesolver: step-size underflow at t=%g", s.xt)
			hnext = h
			break
		}
	}

	copy(y, yout)
	return h, hnext, err
}
