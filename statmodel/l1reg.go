package statmodel

import (
	"fmt"
	"math"
)

// Focuser is a model that can be reduced to a single coefficient.  Focus
// returns a one-parameter model for the covariate in position pos, with
// the contribution of every other covariate folded into an offset using
// the values in coeff.
type Focuser interface {
	NumParams() int
	NumObs() int
	Focus(pos int, coeff []float64) RegFitter
}

// FitL1Reg maximizes the lasso objective
//
//	loglike(b) - n * sum_j l1wgt[j] * |b_j|
//
// by cyclic coordinate descent, starting from the coefficients held in
// param, which are updated in place.  Each coordinate update solves a
// soft-thresholded quadratic approximation.  If checkstep is true an
// update that does not decrease the objective is replaced by a line
// search, which is needed when the log-likelihood is far from quadratic,
// as for the partial likelihood.  The returned count is the number of
// sweeps over the coordinates.
func FitL1Reg(model Focuser, param Parameter, l1wgt []float64, checkstep bool) (Parameter, int, error) {

	const maxsweep = 400

	p := model.NumParams()
	n := float64(model.NumObs())

	// Scratch parameter for the one-coefficient models
	work := param.Clone()
	work.SetCoeff([]float64{0})

	// The log-likelihood is a sum over cases, so the convergence
	// criterion grows with n, up to a cap.
	tol := math.Min(1e-7*n, 0.1)

	coeff := param.GetCoeff()

	for sweep := 0; sweep < maxsweep; sweep++ {

		// Largest absolute change in this sweep
		var maxchange float64

		for j := 0; j < p; j++ {
			m1 := model.Focus(j, coeff)
			b := updateCoord(m1, coeff[j], work, n*l1wgt[j], checkstep)
			maxchange = math.Max(maxchange, math.Abs(b-coeff[j]))
			coeff[j] = b
		}

		if maxchange < tol {
			return param, sweep + 1, nil
		}
	}

	return param, maxsweep, fmt.Errorf("%w: coordinate descent did not converge in %d sweeps",
		ErrConvergence, maxsweep)
}

// l1Objective is the penalized negative log-likelihood of a
// one-coefficient model, to be minimized.
func l1Objective(m1 RegFitter, work Parameter, wgt float64) func(float64) float64 {
	return func(b float64) float64 {
		work.SetCoeff([]float64{b})
		return -m1.LogLike(work, false) + wgt*math.Abs(b)
	}
}

// updateCoord returns the new value of a single coefficient b0 under the
// penalty wgt*|b|.
func updateCoord(m1 RegFitter, b0 float64, work Parameter, wgt float64, checkstep bool) float64 {

	// Gradient and curvature of the negative log-likelihood at b0
	g := make([]float64, 1)
	work.SetCoeff([]float64{b0})
	m1.Score(work, g)
	grad := -g[0]
	m1.Hessian(work, ObsHess, g)
	curv := -g[0]

	// Minimizer of the quadratic is b0 - grad/curv; the subgradient
	// condition for zero compares |curv*b0 - grad| to the penalty.
	z := grad - curv*b0
	if math.Abs(z) < wgt {
		return 0
	}

	var b1 float64
	if z >= 0 {
		b1 = b0 + (wgt-grad)/curv
	} else {
		b1 = b0 - (wgt+grad)/curv
	}

	if !checkstep {
		return b1
	}

	obj := l1Objective(m1, work, wgt)
	if obj(b1) <= obj(b0)+1e-10 {
		return b1
	}

	return bisection(obj, b0-1, b0+1, 1e-7)
}

// bisection minimizes f, first searching for a bracket x0 < x1 < x2 with
// f(x1) below both ends.  If no bracket is found the best of the final
// three points is returned.
func bisection(f func(float64) float64, xl, xu, tol float64) float64 {

	x0, x2 := xl, xu
	x1 := (x0 + x2) / 2
	var f0, f1, f2 float64

	bracketed := false
	for k := 0; k < 100; k++ {

		f0, f1, f2 = f(x0), f(x1), f(x2)

		switch {
		case f1 < f0 && f1 < f2:
			bracketed = true
		case f0 > f1 && f1 > f2:
			// Decreasing, move right
			x0, x1 = x1, x2
			x2 += 1.5 * (x1 - x0)
			continue
		case f0 < f1 && f1 < f2:
			// Increasing, move left
			x2, x1 = x1, x0
			x0 -= 1.5 * (x2 - x1)
			continue
		default:
			x0 = x1 - 2*(x1-x0)
			x2 = x1 + 2*(x2-x1)
			continue
		}
		break
	}

	if !bracketed {
		switch {
		case f0 < f1 && f0 < f2:
			return x0
		case f1 < f0 && f1 < f2:
			return x1
		default:
			return x2
		}
	}

	// Shrink the bracket by halving its longer side
	for x2-x0 > tol {
		left := x1-x0 > x2-x1
		var xm float64
		if left {
			xm = (x0 + x1) / 2
		} else {
			xm = (x1 + x2) / 2
		}
		fm := f(xm)
		switch {
		case fm < f1 && left:
			x2, x1, f1 = x1, xm, fm
		case fm < f1:
			x0, x1, f1 = x1, xm, fm
		case left:
			x0 = xm
		default:
			x2 = xm
		}
	}

	return x1
}
