package duration

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/survstat/statmodel"
)

// LogLog is the complementary log-log transform of a survival probability,
// log(-log(s)).
func LogLog(s float64) float64 {
	return math.Log(-math.Log(s))
}

// InvLogLog inverts LogLog, returning exp(-exp(theta)).
func InvLogLog(theta float64) float64 {
	return math.Exp(-math.Exp(theta))
}

// LogLogConfInt returns a confidence interval for a survival probability s
// with variance v, formed on the log(-log(s)) scale and transformed back.
// The standard error is multiplied by z.  The transform is only defined for
// 0 < s < 1, other values of s produce an error wrapping
// statmodel.ErrDomain.
func LogLogConfInt(s, v, z float64) (float64, float64, error) {

	if !(s > 0 && s < 1) {
		return 0, 0, fmt.Errorf("%w: log-log interval is undefined at survival probability %v",
			statmodel.ErrDomain, s)
	}
	if math.IsNaN(v) || v < 0 {
		return 0, 0, fmt.Errorf("%w: invalid variance %v", statmodel.ErrDomain, v)
	}

	ls := math.Log(s)
	se := math.Sqrt(v) / math.Abs(s*ls)
	theta := math.Log(-ls)

	// The transform is decreasing, so the upper bound on theta gives the
	// lower bound on s.
	return InvLogLog(theta + z*se), InvLogLog(theta - z*se), nil
}

// confBand returns log-log confidence bounds, handling the boundary
// points where the transform is undefined.
func confBand(s, v, z float64) (float64, float64) {

	switch {
	case s >= 1:
		return 1, 1
	case s <= 0:
		return 0, 0
	}

	lo, hi, err := LogLogConfInt(s, v, z)
	if err != nil {
		return math.NaN(), math.NaN()
	}

	return lo, hi
}

// CurvePoint is one step of a survival curve.
type CurvePoint struct {
	Time  float64
	Surv  float64
	Lower float64
	Upper float64
}

// SurvCurve is a right-continuous step function estimate of a survival
// function, with pointwise confidence bounds.  The estimate is 1 before the
// first time point.
type SurvCurve struct {
	time     []float64
	surv     []float64
	variance []float64
	lower    []float64
	upper    []float64
	level    float64
}

// newSurvCurve builds a curve, obtaining the bounds at the given coverage
// level from the log-log transform.
func newSurvCurve(time, surv, variance []float64, level float64) *SurvCurve {

	c := &SurvCurve{
		time:     time,
		surv:     surv,
		variance: variance,
		lower:    make([]float64, len(time)),
		upper:    make([]float64, len(time)),
		level:    level,
	}

	z := statmodel.NormalQuantile(level)
	for i := range time {
		c.lower[i], c.upper[i] = confBand(surv[i], variance[i], z)
	}

	return c
}

// Len returns the number of steps in the curve.
func (c *SurvCurve) Len() int {
	return len(c.time)
}

// Time returns the times at which the curve steps.
func (c *SurvCurve) Time() []float64 {
	return c.time
}

// Surv returns the estimated survival probabilities at the step times.
func (c *SurvCurve) Surv() []float64 {
	return c.surv
}

// Var returns the variances of the survival probabilities.
func (c *SurvCurve) Var() []float64 {
	return c.variance
}

// Lower returns the lower confidence bounds.
func (c *SurvCurve) Lower() []float64 {
	return c.lower
}

// Upper returns the upper confidence bounds.
func (c *SurvCurve) Upper() []float64 {
	return c.upper
}

// Level returns the coverage probability of the confidence bounds.
func (c *SurvCurve) Level() float64 {
	return c.level
}

// Points returns the curve as a sequence of steps.
func (c *SurvCurve) Points() []CurvePoint {
	pts := make([]CurvePoint, len(c.time))
	for i := range c.time {
		pts[i] = CurvePoint{
			Time:  c.time[i],
			Surv:  c.surv[i],
			Lower: c.lower[i],
			Upper: c.upper[i],
		}
	}
	return pts
}

// index returns the position of the last step at or before t, or -1.
func (c *SurvCurve) index(t float64) int {
	i := sort.SearchFloat64s(c.time, t)
	if i < len(c.time) && c.time[i] == t {
		return i
	}
	return i - 1
}

// At evaluates the survival curve at time t.
func (c *SurvCurve) At(t float64) float64 {
	i := c.index(t)
	if i < 0 {
		return 1
	}
	return c.surv[i]
}

// BoundsAt returns the confidence bounds at time t.
func (c *SurvCurve) BoundsAt(t float64) (float64, float64) {
	i := c.index(t)
	if i < 0 {
		return 1, 1
	}
	return c.lower[i], c.upper[i]
}

// Quantile returns the smallest time at which the survival curve is at or
// below 1-p, or NaN if the curve never falls that low.  Quantile(0.5) is the
// median survival time.
func (c *SurvCurve) Quantile(p float64) float64 {
	for i, s := range c.surv {
		if s <= 1-p {
			return c.time[i]
		}
	}
	return math.NaN()
}
