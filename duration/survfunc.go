package duration

import (
	"fmt"
	"math"
)

// SurvfuncRight uses the method of Kaplan and Meier to estimate the
// survival distribution based on (possibly) right censored data.  Create
// it with NewSurvfuncRight, optionally set the coverage level, then call
// Done to perform the estimation.
type SurvfuncRight struct {

	// The data used to perform the estimation.
	data *SurvData

	// Coverage probability of the confidence bounds
	level float64

	// Times at which events occur, sorted.
	times []float64

	// Number of events at each time in times.
	nEvents []float64

	// Number of people at risk just before each time in times
	nRisk []float64

	// Number of censorings in [times[i], times[i+1])
	nCensored []float64

	// The estimated survival function evaluated at each time in times
	survProb []float64

	// The standard errors for the estimates in survProb.
	survProbSE []float64

	// Cumulative Greenwood sums, sum d / (n * (n - d))
	greenwood []float64

	curve *SurvCurve
}

// NewSurvfuncRight creates a new value for fitting a survival function.
func NewSurvfuncRight(data *SurvData) *SurvfuncRight {

	return &SurvfuncRight{
		data:  data,
		level: 0.95,
	}
}

// Level sets the coverage probability of the confidence bounds, the default
// is 0.95.
func (sf *SurvfuncRight) Level(level float64) *SurvfuncRight {
	if level <= 0 || level >= 1 {
		panic(fmt.Sprintf("SurvfuncRight: coverage level %v is not in (0, 1)", level))
	}
	sf.level = level
	return sf
}

// Time returns the times at which the survival function changes.
func (sf *SurvfuncRight) Time() []float64 {
	return sf.times
}

// NumRisk returns the number of people at risk at each time point
// where the survival function changes.
func (sf *SurvfuncRight) NumRisk() []float64 {
	return sf.nRisk
}

// NumEvents returns the number of events at each time point where the
// survival function changes.
func (sf *SurvfuncRight) NumEvents() []float64 {
	return sf.nEvents
}

// NumCensored returns the number of censored observations from each time
// point where the survival function changes, up to the next such point.
func (sf *SurvfuncRight) NumCensored() []float64 {
	return sf.nCensored
}

// SurvProb returns the estimated survival probabilities at the points
// where the survival function changes.
func (sf *SurvfuncRight) SurvProb() []float64 {
	return sf.survProb
}

// SurvProbSE returns the standard errors of the estimated survival
// probabilities at the points where the survival function changes.
func (sf *SurvfuncRight) SurvProbSE() []float64 {
	return sf.survProbSE
}

// Greenwood returns the cumulative sums in Greenwood's variance formula,
// so that the variance of SurvProb()[i] is SurvProb()[i]^2 * Greenwood()[i].
// The sum is infinite from the point where the whole risk set fails.
func (sf *SurvfuncRight) Greenwood() []float64 {
	return sf.greenwood
}

// Curve returns the survival function with log-log confidence bounds.
func (sf *SurvfuncRight) Curve() *SurvCurve {
	return sf.curve
}

// At returns the estimated survival probability at time t.
func (sf *SurvfuncRight) At(t float64) float64 {
	return sf.curve.At(t)
}

// Median returns the estimated median survival time, NaN if the survival
// function does not reach 1/2.
func (sf *SurvfuncRight) Median() float64 {
	return sf.curve.Quantile(0.5)
}

func (sf *SurvfuncRight) eventstats() {

	times, nevents, ncensor, nrisk := sf.data.timeTable()

	// Retain the times with events, censorings are attributed to
	// the most recent event time.  Censorings before the first event
	// only reduce the risk set.
	sf.times = sf.times[0:0]
	sf.nEvents = sf.nEvents[0:0]
	sf.nRisk = sf.nRisk[0:0]
	sf.nCensored = sf.nCensored[0:0]
	for i := range times {
		if nevents[i] > 0 {
			sf.times = append(sf.times, times[i])
			sf.nEvents = append(sf.nEvents, nevents[i])
			sf.nRisk = append(sf.nRisk, nrisk[i])
			sf.nCensored = append(sf.nCensored, ncensor[i])
		} else if len(sf.times) > 0 {
			sf.nCensored[len(sf.nCensored)-1] += ncensor[i]
		}
	}
}

func (sf *SurvfuncRight) fit() {

	m := len(sf.times)
	sf.survProb = make([]float64, m)
	sf.survProbSE = make([]float64, m)
	sf.greenwood = make([]float64, m)
	variance := make([]float64, m)

	x := float64(1)
	gw := float64(0)
	for i := range sf.times {
		d := sf.nEvents[i]
		n := sf.nRisk[i]

		if d >= n {
			// The entire risk set fails, the curve is zero from here on.
			x = 0
			gw = math.Inf(1)
		} else {
			x *= 1 - d/n
			gw += d / (n * (n - d))
		}
		sf.survProb[i] = x
		sf.greenwood[i] = gw

		if x > 0 {
			variance[i] = x * x * gw
			sf.survProbSE[i] = math.Sqrt(gw) * x
		}
	}

	sf.curve = newSurvCurve(sf.times, sf.survProb, variance, sf.level)
}

// Done indicates that the survival function has been configured and can now be fit.
func (sf *SurvfuncRight) Done() *SurvfuncRight {
	sf.eventstats()
	sf.fit()
	return sf
}
