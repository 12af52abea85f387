package duration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kshedden/survstat/statmodel"
)

// SurvType determines how a survival function is obtained from a
// cumulative hazard.
type SurvType int

const (
	// Exponential gives S(t) = exp(-H(t)).
	Exponential SurvType = iota

	// ProductLimit gives S(t) as the product of (1 - h_k)^r over the
	// event times up to t, where r is the relative risk of the profile.
	// At zero coefficients this is the Kaplan-Meier estimate.
	ProductLimit
)

// Breslow is the Breslow estimate of the baseline cumulative hazard of a
// fitted proportional hazards model, along with predictions of the
// cumulative hazard and survival function for covariate profiles.
//
// The estimate is computed with covariates centered at their means.
// The centered baseline refers to a subject with the mean covariate
// vector, the uncentered baseline to a subject with all covariates zero.
type Breslow struct {

	// The fitted coefficients and their covariance
	params []float64
	vcov   *mat.SymDense

	// The covariate means used for centering
	means []float64

	// Linear predictor of the means
	lpmean float64

	// The distinct event times
	time []float64

	// Hazard increments for the mean profile, d / S0c
	hazc []float64

	// Cumulative sums of d / S0c^2
	varc []float64

	// Cumulative sums of d * (S1c / S0c) / S0c, one vector per time
	s1c [][]float64

	// Cumulative sums of d / S0c
	cumhazc []float64

	stype SurvType
	level float64
}

// NewBreslow estimates the baseline cumulative hazard for the given fitted
// model.
func NewBreslow(results *PHResults) *Breslow {

	ph := results.Model().(*PHReg)
	p := ph.NumParams()
	params := results.Params()

	br := &Breslow{
		params: params,
		means:  ph.design.Means(),
		time:   append([]float64(nil), ph.etimes...),
		level:  results.Level(),
	}
	if p > 0 {
		br.vcov = mat.NewSymDense(p, append([]float64(nil), results.VCov()...))
	}
	br.lpmean = floats.Dot(params, br.means)

	// Relative risks with centered covariates
	n := ph.NumObs()
	rr := make([]float64, n)
	for i := 0; i < n; i++ {
		var lp float64
		for j, x := range ph.xdat {
			lp += params[j] * (x[i] - br.means[j])
		}
		rr[i] = math.Exp(lp)
	}

	m := len(br.time)
	br.hazc = make([]float64, m)
	br.cumhazc = make([]float64, m)
	br.varc = make([]float64, m)
	br.s1c = make([][]float64, m)

	var s0, ch, cv float64
	s1 := make([]float64, p)
	cs := make([]float64, p)
	for k := range br.time {

		for _, i := range ph.enter[k] {
			s0 += rr[i]
			for j, x := range ph.xdat {
				s1[j] += rr[i] * (x[i] - br.means[j])
			}
		}

		d := float64(len(ph.event[k]))
		br.hazc[k] = d / s0
		ch += d / s0
		cv += d / (s0 * s0)
		floats.AddScaled(cs, d/(s0*s0), s1)
		br.cumhazc[k] = ch
		br.varc[k] = cv
		br.s1c[k] = append([]float64(nil), cs...)

		for _, i := range ph.exit[k] {
			s0 -= rr[i]
			for j, x := range ph.xdat {
				s1[j] -= rr[i] * (x[i] - br.means[j])
			}
		}
	}

	return br
}

// Type sets the way survival probabilities are obtained from the
// cumulative hazard, the default is Exponential.
func (br *Breslow) Type(st SurvType) *Breslow {
	br.stype = st
	return br
}

// Time returns the distinct event times at which the estimate steps.
func (br *Breslow) Time() []float64 {
	return br.time
}

// CumHaz returns the baseline cumulative hazard for a subject whose
// covariates are all zero.
func (br *Breslow) CumHaz() []float64 {
	f := math.Exp(-br.lpmean)
	ch := make([]float64, len(br.cumhazc))
	floats.ScaleTo(ch, f, br.cumhazc)
	return ch
}

// CumHazCentered returns the baseline cumulative hazard for a subject
// with the mean covariate vector.
func (br *Breslow) CumHazCentered() []float64 {
	return append([]float64(nil), br.cumhazc...)
}

// CumHazSE returns standard errors for the baseline cumulative hazard,
// centered or not, accounting for the estimation of the coefficients.
func (br *Breslow) CumHazSE(centered bool) []float64 {
	z := make([]float64, len(br.params))
	if centered {
		copy(z, br.means)
	}
	_, v := br.cumhaz(z)
	for i := range v {
		v[i] = math.Sqrt(v[i])
	}
	return v
}

// cumhaz returns the cumulative hazard for covariate profile z and its
// variance.
func (br *Breslow) cumhaz(z []float64) ([]float64, []float64) {

	p := len(br.params)
	zc := make([]float64, p)
	floats.SubTo(zc, z, br.means)
	rc := math.Exp(floats.Dot(br.params, zc))

	m := len(br.time)
	h := make([]float64, m)
	v := make([]float64, m)
	g := make([]float64, p)
	for k := range br.time {
		h[k] = rc * br.cumhazc[k]
		v[k] = rc * rc * br.varc[k]
		if p == 0 {
			continue
		}

		// Gradient of the cumulative hazard with respect to the
		// coefficients.
		for j := range g {
			g[j] = rc * (zc[j]*br.cumhazc[k] - br.s1c[k][j])
		}
		gv := mat.NewVecDense(p, g)
		v[k] += mat.Inner(gv, br.vcov, gv)
	}

	return h, v
}

// Predict returns the estimated survival function for a subject with
// covariate vector z, in the column order of the model's design, with
// pointwise log-log confidence bounds.  The variance of the survival
// probability is S^2 * Var[H].
func (br *Breslow) Predict(z []float64) (*SurvCurve, error) {

	if len(z) != len(br.params) {
		return nil, fmt.Errorf("%w: covariate vector has length %d, the model has %d coefficients",
			statmodel.ErrDesign, len(z), len(br.params))
	}

	h, v := br.cumhaz(z)

	zc := make([]float64, len(z))
	floats.SubTo(zc, z, br.means)
	rc := math.Exp(floats.Dot(br.params, zc))

	surv := make([]float64, len(h))
	pl := float64(1)
	for k := range h {
		switch br.stype {
		case ProductLimit:
			pl *= math.Max(0, 1-br.hazc[k])
			surv[k] = math.Pow(pl, rc)
		default:
			surv[k] = math.Exp(-h[k])
		}
		v[k] *= surv[k] * surv[k]
	}

	return newSurvCurve(br.time, surv, v, br.level), nil
}

// BaselineSurv returns the estimated baseline survival function, for the
// mean covariate vector if centered is true, otherwise for all covariates
// equal to zero.
func (br *Breslow) BaselineSurv(centered bool) *SurvCurve {
	z := make([]float64, len(br.params))
	if centered {
		copy(z, br.means)
	}
	sc, err := br.Predict(z)
	if err != nil {
		panic(err)
	}
	return sc
}
