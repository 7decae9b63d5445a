package odesolver

// Cash-Karp 5(4) tableau, transcribed bit-for-bit from the original
// RKCK45::RKTry coefficients (pspm_ode_solver2.h). ckA are the stage
// abscissae, ckB the stage coupling matrix, ckC the 5th-order solution
// weights, ckDC the weight differences used for the embedded error estimate.
var (
	ckA = [6]float64{0, 0.2, 0.3, 0.6, 1.0, 0.875}

	ckB = [6][6]float64{
		{0, 0, 0, 0, 0, 0},
		{0.2, 0, 0, 0, 0, 0},
		{3.0 / 40.0, 9.0 / 40.0, 0, 0, 0, 0},
		{0.3, -0.9, 1.2, 0, 0, 0},
		{-11.0 / 54.0, 2.5, -70.0 / 27.0, 35.0 / 27.0, 0, 0},
		{1631.0 / 55296.0, 175.0 / 512.0, 575.0 / 13824.0, 44275.0 / 110592.0, 253.0 / 4096.0, 0},
	}

	ckC = [6]float64{37.0 / 378.0, 0, 250.0 / 621.0, 125.0 / 594.0, 0, 512.0 / 1771.0}

	ckDC = [6]float64{
		37.0/378.0 - 2825.0/27648.0,
		0,
		250.0/621.0 - 18575.0/48384.0,
		125.0/594.0 - 13525.0/55296.0,
		-277.0 / 14336.0,
		512.0/1771.0 - 0.25,
	}
)

// rkTry performs one six-stage Cash-Karp step of size h starting from (x,
// y) with known derivative dydx = f(x, y). It writes the 5th-order result
// into yout and the 5th-vs-embedded-4th error estimate into yerr. Scratch
// yt must be sized to len(y) by the caller; k1..k5 are replaced by the
// slices f returns.
func rkTry(f DerivFunc, x float64, y, dydx []float64, h float64, s *scratch) (yout, yerr []float64) {
	n := len(y)

	for i := 0; i < n; i++ {
		s.yt[i] = y[i] + h*ckB[1][0]*dydx[i]
	}
	s.k1 = f(x+ckA[1]*h, s.yt)

	for i := 0; i < n; i++ {
		s.yt[i] = y[i] + h*(ckB[2][0]*dydx[i]+ckB[2][1]*s.k1[i])
	}
	s.k2 = f(x+ckA[2]*h, s.yt)

	for i := 0; i < n; i++ {
		s.yt[i] = y[i] + h*(ckB[3][0]*dydx[i]+ckB[3][1]*s.k1[i]+ckB[3][2]*s.k2[i])
	}
	s.k3 = f(x+ckA[3]*h, s.yt)

	for i := 0; i < n; i++ {
		s.yt[i] = y[i] + h*(ckB[4][0]*dydx[i]+ckB[4][1]*s.k1[i]+ckB[4][2]*s.k2[i]+ckB[4][3]*s.k3[i])
	}
	s.k4 = f(x+ckA[4]*h, s.yt)

	for i := 0; i < n; i++ {
		s.yt[i] = y[i] + h*(ckB[5][0]*dydx[i]+ckB[5][1]*s.k1[i]+ckB[5][2]*s.k2[i]+ckB[5][3]*s.k3[i]+ckB[5][4]*s.k4[i])
	}
	s.k5 = f(x+ckA[5]*h, s.yt)

	yout = make([]float64, n)
	for i := 0; i < n; i++ {
		yout[i] = y[i] + h*(ckC[0]*dydx[i]+ckC[2]*s.k2[i]+ckC[3]*s.k3[i]+ckC[5]*s.k5[i])
	}

	yerr = make([]float64, n)
	for i := 0; i < n; i++ {
		yerr[i] = h * (ckDC[0]*dydx[i] + ckDC[2]*s.k2[i] + ckDC[3]*s.k3[i] + ckDC[4]*s.k4[i] + ckDC[5]*s.k5[i])
	}

	return yout, yerr
}

// scratch is the per-stepper owned storage for one Cash-Karp stage
// evaluation, resized lazily as the system size changes. Never shared
// across Stepper instances (design note: no static/package-level buffers).
// k1..k5 are reassigned to whatever DerivFunc returns each stage, matching
// the teacher's pattern of the derivative functor allocating its own
// result (internal/integrators/rk45.go's k1 := dyn.Derive(...)); only yt,
// which this package itself writes into, needs pre-sizing.
type scratch struct {
	yt                 []float64
	k1, k2, k3, k4, k5 []float64
}

func (s *scratch) resize(n int) {
	s.yt = make([]float64, n)
}
