package duration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshedden/survstat/statmodel"
)

func TestLogLogRoundTrip(t *testing.T) {

	for _, s := range []float64{1e-8, 0.01, 0.2, 0.5, 0.77, 0.999, 1 - 1e-9} {
		assert.InDelta(t, s, InvLogLog(LogLog(s)), 1e-12*math.Max(1, 1/s))
	}
}

func TestLogLogConfInt(t *testing.T) {

	z := statmodel.NormalQuantile(0.95)
	assert.InDelta(t, 1.959964, z, 1e-6)

	for _, s := range []float64{0.05, 0.3, 0.5, 0.9, 0.99} {
		for _, v := range []float64{0, 1e-4, 0.01, 0.1} {
			lo, hi, err := LogLogConfInt(s, v, z)
			require.NoError(t, err)
			assert.True(t, lo >= 0 && lo <= s, "lower bound %v for s=%v", lo, s)
			assert.True(t, hi >= s && hi <= 1, "upper bound %v for s=%v", hi, s)
			if v == 0 {
				assert.InDelta(t, s, lo, 1e-12)
				assert.InDelta(t, s, hi, 1e-12)
			}
		}
	}

	// A known value: s = exp(-1), se on the log-log scale is sqrt(v)/s
	s := math.Exp(-1)
	lo, hi, err := LogLogConfInt(s, s*s*0.01, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-math.Exp(0.1)), lo, 1e-12)
	assert.InDelta(t, math.Exp(-math.Exp(-0.1)), hi, 1e-12)
}

func TestLogLogDomain(t *testing.T) {

	for _, s := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, _, err := LogLogConfInt(s, 0.01, 1.96)
		assert.ErrorIs(t, err, statmodel.ErrDomain)
	}

	_, _, err := LogLogConfInt(0.5, -1, 1.96)
	assert.ErrorIs(t, err, statmodel.ErrDomain)

	// At the boundaries the bands collapse onto the estimate
	lo, hi := confBand(1, 0, 1.96)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
	lo, hi = confBand(0, 0, 1.96)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestSurvCurveStep(t *testing.T) {

	c := newSurvCurve([]float64{2, 4, 7}, []float64{0.9, 0.6, 0.3}, []float64{0.001, 0.004, 0.006}, 0.9)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 0.9, c.Level())
	assert.Equal(t, 1.0, c.At(1))
	assert.Equal(t, 0.9, c.At(2))
	assert.Equal(t, 0.9, c.At(3.99))
	assert.Equal(t, 0.6, c.At(4))
	assert.Equal(t, 0.3, c.At(100))

	lo, hi := c.BoundsAt(0.5)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
	lo, hi = c.BoundsAt(5)
	assert.Equal(t, c.Lower()[1], lo)
	assert.Equal(t, c.Upper()[1], hi)

	assert.Equal(t, 4.0, c.Quantile(0.5))
	assert.Equal(t, 2.0, c.Quantile(0.1))
	assert.True(t, math.IsNaN(c.Quantile(0.8)))

	pts := c.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, CurvePoint{Time: 7, Surv: 0.3, Lower: c.Lower()[2], Upper: c.Upper()[2]}, pts[2])
}
