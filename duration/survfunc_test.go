package duration

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestSF1(t *testing.T) {

	var time []float64
	var status []float64
	n := 20

	for i := 0; i < n; i++ {
		time = append(time, float64(i+1))
		status = append(status, 1)
	}

	sf := NewSurvfuncRight(simple(t, time, status)).Done()

	// Check times and risk set sizes
	times := sf.Time()
	nrisk := sf.NumRisk()
	require.Len(t, times, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, float64(i+1), times[i])
		assert.Equal(t, float64(n-i), nrisk[i])
	}

	// From Python Statsmodels
	se := []float64{0.04873397, 0.06708204, 0.0798436, 0.08944272,
		0.09682458, 0.10246951, 0.10665365, 0.10954451,
		0.11124298, 0.1118034, 0.11124298, 0.10954451,
		0.10665365, 0.10246951, 0.09682458, 0.08944272,
		0.0798436, 0.06708204, 0.04873397}

	// Check probabilities and standard errors
	sp := sf.SurvProb()
	spse := sf.SurvProbSE()
	for i := 0; i < n; i++ {
		p := 1 - float64(i+1)/float64(n)
		assert.InDelta(t, p, sp[i], 1e-6)
		if i < n-1 {
			assert.InDelta(t, se[i], spse[i], 1e-6)
		}
	}
}

func TestSurvfuncScenario(t *testing.T) {

	sf := NewSurvfuncRight(scenario(t)).Done()

	assert.Equal(t, []float64{5, 10, 15, 20}, sf.Time())
	assert.Equal(t, []float64{6, 5, 3, 2}, sf.NumRisk())
	assert.Equal(t, []float64{1, 1, 1, 1}, sf.NumEvents())
	assert.Equal(t, []float64{0, 1, 0, 1}, sf.NumCensored())

	expect := []float64{5.0 / 6, 2.0 / 3, 4.0 / 9, 2.0 / 9}
	assert.True(t, floats.EqualApprox(expect, sf.SurvProb(), 1e-12))

	gw := []float64{1.0 / 30, 1.0/30 + 1.0/20, 1.0/30 + 1.0/20 + 1.0/6, 1.0/30 + 1.0/20 + 1.0/6 + 1.0/2}
	assert.True(t, floats.EqualApprox(gw, sf.Greenwood(), 1e-12))
	for i := range expect {
		assert.InDelta(t, expect[i]*math.Sqrt(gw[i]), sf.SurvProbSE()[i], 1e-12)
		assert.InDelta(t, expect[i]*expect[i]*gw[i], sf.Curve().Var()[i], 1e-12)
	}

	assert.Equal(t, 1.0, sf.At(4.9))
	assert.InDelta(t, 2.0/3, sf.At(12), 1e-12)
	assert.InDelta(t, 2.0/9, sf.At(30), 1e-12)
	assert.Equal(t, 15.0, sf.Median())

	// The bounds bracket the estimate
	c := sf.Curve()
	assert.Equal(t, 0.95, c.Level())
	for i, s := range c.Surv() {
		assert.True(t, c.Lower()[i] < s && s < c.Upper()[i])
		assert.True(t, c.Lower()[i] > 0 && c.Upper()[i] < 1)
	}
}

func TestSurvfuncLevel(t *testing.T) {

	data := scenario(t)
	c95 := NewSurvfuncRight(data).Done().Curve()
	c80 := NewSurvfuncRight(data).Level(0.8).Done().Curve()

	assert.Equal(t, c95.Surv(), c80.Surv())
	for i := range c95.Surv() {
		assert.True(t, c95.Lower()[i] < c80.Lower()[i])
		assert.True(t, c95.Upper()[i] > c80.Upper()[i])
	}

	assert.Panics(t, func() { NewSurvfuncRight(data).Level(1) })
}

// Without censoring the estimate is the empirical survival function.
func TestSurvfuncNoCensoring(t *testing.T) {

	time := []float64{2, 2, 3, 5, 5, 5, 8, 9.5}
	status := make([]float64, len(time))
	floats.AddConst(1, status)

	sf := NewSurvfuncRight(simple(t, time, status)).Done()

	n := float64(len(time))
	for i, tm := range sf.Time() {
		var m float64
		for _, x := range time {
			if x > tm {
				m++
			}
		}
		assert.InDelta(t, m/n, sf.SurvProb()[i], 1e-12)
	}
}

func TestSurvfuncMonotone(t *testing.T) {

	time := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9}
	status := []float64{1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 1, 0, 0, 1, 1}

	sf := NewSurvfuncRight(simple(t, time, status)).Done()

	sp := sf.SurvProb()
	gw := sf.Greenwood()
	for i := 1; i < len(sp); i++ {
		assert.True(t, sp[i] <= sp[i-1])
		assert.True(t, gw[i] >= gw[i-1])
	}
	for _, s := range sp {
		assert.True(t, s >= 0 && s <= 1)
	}

	// A censoring tied with the first event is still at risk.
	assert.Equal(t, 1.0, sf.Time()[0])
	assert.Equal(t, 15.0, sf.NumRisk()[0])
}

func TestSurvfuncAllCensored(t *testing.T) {

	sf := NewSurvfuncRight(simple(t, []float64{1, 2, 3}, []float64{0, 0, 0})).Done()

	assert.Empty(t, sf.Time())
	assert.Equal(t, 0, sf.Curve().Len())
	for _, tm := range []float64{0.5, 1, 2.5, 100} {
		assert.Equal(t, 1.0, sf.At(tm))
	}
	assert.True(t, math.IsNaN(sf.Median()))
}

// When the entire risk set fails the curve drops to zero.
func TestSurvfuncLastEvent(t *testing.T) {

	sf := NewSurvfuncRight(simple(t, []float64{1, 2, 3, 3}, []float64{1, 0, 1, 1})).Done()

	sp := sf.SurvProb()
	require.Len(t, sp, 2)
	assert.InDelta(t, 0.75, sp[0], 1e-12)
	assert.Equal(t, 0.0, sp[1])
	assert.True(t, math.IsInf(sf.Greenwood()[1], 1))
	assert.Equal(t, 0.0, sf.SurvProbSE()[1])

	c := sf.Curve()
	assert.Equal(t, 0.0, c.Var()[1])
	assert.Equal(t, 0.0, c.Lower()[1])
	assert.Equal(t, 0.0, c.Upper()[1])
	assert.Equal(t, 0.0, sf.At(10))
}

func TestStratifiedSurvfunc(t *testing.T) {

	data := scenario(t)

	sfs, err := StratifiedSurvfunc(context.Background(), data, "grp", 0.9)
	require.NoError(t, err)
	require.Len(t, sfs, 2)

	// Group a: times 5 (event), 10 (censored), 20 (censored)
	assert.Equal(t, "a", sfs[0].Level)
	assert.Equal(t, []float64{5}, sfs[0].Survfunc.Time())
	assert.InDelta(t, 2.0/3, sfs[0].Survfunc.SurvProb()[0], 1e-12)
	assert.Equal(t, 0.9, sfs[0].Survfunc.Curve().Level())

	// Group b: times 10, 15, 20, all events
	assert.Equal(t, "b", sfs[1].Level)
	assert.Equal(t, []float64{10, 15, 20}, sfs[1].Survfunc.Time())
	assert.True(t, floats.EqualApprox([]float64{2.0 / 3, 1.0 / 3, 0}, sfs[1].Survfunc.SurvProb(), 1e-12))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StratifiedSurvfunc(ctx, data, "grp", 0.9)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = StratifiedSurvfunc(context.Background(), data, "nope", 0.9)
	assert.Error(t, err)
}

func TestLogRank(t *testing.T) {

	lr, err := LogRank(scenario(t), "grp")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, lr.Levels)
	assert.Equal(t, []float64{1, 3}, lr.Observed)
	assert.True(t, floats.EqualApprox([]float64{1.7333333333333334, 2.2666666666666666}, lr.Expected, 1e-12))
	assert.Equal(t, 1, lr.DF)

	// Calculated directly from the two-sample formula
	assert.InDelta(t, 0.5588914549653581, lr.Stat, 1e-10)
	assert.InDelta(t, 0.45470723730273677, lr.PValue, 1e-8)

	// Observed and expected totals agree
	assert.InDelta(t, floats.Sum(lr.Observed), floats.Sum(lr.Expected), 1e-12)
}

func TestLogRankErrors(t *testing.T) {

	data := scenario(t)
	one, err := data.Filter(func(o Observation) bool { return o.Covariates[0].Str() == "a" })
	require.NoError(t, err)

	_, err = LogRank(one, "grp")
	assert.Error(t, err)

	_, err = LogRank(data, "nope")
	assert.Error(t, err)
}
