package duration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshedden/survstat/statmodel"
)

func TestConcordance1(t *testing.T) {

	time := []float64{1, 2, 3, 4, 5, 6}
	status := []float64{1, 1, 1, 1, 1, 1}

	for _, r := range []struct {
		score  []float64
		expect float64
	}{
		{score: []float64{7, 6, 5, 4, 3, 2}, expect: 1},
		{score: []float64{2, 3, 4, 5, 6, 7}, expect: 0},
		{score: []float64{1, 1, 1, 1, 1, 1}, expect: 0.5},
	} {
		c, err := NewConcordance(time, status, r.score)
		require.NoError(t, err)
		v, err := c.Concordance(100)
		require.NoError(t, err)
		assert.Equal(t, r.expect, v)
	}
}

// The inputs need not be sorted, and censored pairs are weighted by the
// inverse squared censoring survival function.
func TestConcordanceWeighted(t *testing.T) {

	time := []float64{3, 1, 4, 2}
	status := []float64{1, 1, 1, 0}
	score := []float64{1, 4, 2, 3}

	c, err := NewConcordance(time, status, score)
	require.NoError(t, err)

	// The censoring survival function is 2/3 from time 2
	v, err := c.Concordance(100)
	require.NoError(t, err)
	assert.InDelta(t, 3/(3+9.0/4), v, 1e-12)

	// Truncation at 2 leaves only the pairs with the first subject
	v, err = c.Concordance(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = c.Concordance(1)
	assert.ErrorIs(t, err, statmodel.ErrDomain)
	assert.True(t, math.IsNaN(v))
}

func TestConcordanceErrors(t *testing.T) {

	_, err := NewConcordance([]float64{1, 2}, []float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, statmodel.ErrDataValidation)

	_, err = NewConcordance([]float64{1, -2}, []float64{1, 1}, []float64{1, 2})
	assert.ErrorIs(t, err, statmodel.ErrDataValidation)
}

func TestPHConcordance(t *testing.T) {

	beta := []float64{1, -1}
	time, status, x := simulate(500, beta, 4411)
	data, design := phData(t, time, status, x, []string{"x1", "x2"})

	rslt, err := newPHReg(t, data, design, nil).Fit()
	require.NoError(t, err)

	v, err := rslt.Concordance(math.Inf(1))
	require.NoError(t, err)

	// A strong effect gives good discrimination
	assert.True(t, v > 0.65 && v < 1, "concordance %v", v)
}
