package odesolver_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jaideep777/pspm/internal/odesolver"
)

var _ = Describe("Stepper", func() {
	var decay = func(t float64, y []float64) []float64 {
		return []float64{-y[0]}
	}

	It("integrates y'=-y from 1 to e^-1 within 1e-6", func() {
		s := odesolver.NewStepper(1e-8, 0.1, 0)
		y := []float64{1.0}

		Expect(s.StepTo(1.0, y, decay)).To(Succeed())
		Expect(y[0]).To(BeNumerically("~", math.Exp(-1), 1e-6))
		Expect(s.Time()).To(BeNumerically("==", 1.0))
	})

	It("integrates a harmonic oscillator one full period back to its start", func() {
		harmonic := func(t float64, y []float64) []float64 {
			return []float64{y[1], -y[0]}
		}
		s := odesolver.NewStepper(1e-8, 0.1, 0)
		y := []float64{1.0, 0.0}

		Expect(s.StepTo(2*math.Pi, y, harmonic)).To(Succeed())
		Expect(y[0]).To(BeNumerically("~", 1.0, 1e-5))
		Expect(y[1]).To(BeNumerically("~", 0.0, 1e-5))
	})

	It("never grows the step by more than a factor of 5 in one step", func() {
		s := odesolver.NewStepper(1e-6, 0.01, 0)
		y := []float64{1.0}
		prev := s.StepSize()
		for i := 0; i < 20; i++ {
			Expect(s.Step(y, decay, 100)).To(Succeed())
			Expect(s.StepSize()).To(BeNumerically("<=", 5*prev))
			prev = s.StepSize()
		}
	})

	It("clamps the final sub-step to land exactly on the target time", func() {
		s := odesolver.NewStepper(1e-8, 0.37, 0)
		y := []float64{1.0}
		Expect(s.StepTo(0.05, y, decay)).To(Succeed())
		Expect(s.Time()).To(BeNumerically("==", 0.05))
	})
})
