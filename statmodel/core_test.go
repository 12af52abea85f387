package statmodel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func data1() [][]float64 {
	return [][]float64{
		{1, 1, 1, 1, 1, 1, 1},
		{4, 1, -1, 3, 5, -5, 3},
	}
}

func data1b() [][]float64 {
	return [][]float64{
		{1, 1, 1, 1, 1, 1, 1},
		{8, 2, -2, 6, 10, -10, 6},
	}
}

// A mock model for testing
type Mock struct {
	data [][]float64
	hess []float64
}

func (m *Mock) Dataset() [][]float64 {
	return m.data
}

func (m *Mock) LogLike(params Parameter, exact bool) float64 {
	return 0
}

func (m *Mock) Score(params Parameter, score []float64) {
}

func (m *Mock) Hessian(params Parameter, ht HessType, hess []float64) {
	copy(hess, m.hess)
}

func (m *Mock) NumParams() int {
	return len(m.data)
}

func (m *Mock) NumObs() int {
	return len(m.data[0])
}

func TestResult1(t *testing.T) {

	model := &Mock{
		data: data1(),
	}

	params := []float64{1, 2}
	xnames := []string{"x1", "x2"}
	vcov := []float64{0, 0, 0, 0}

	r := NewBaseResults(model, 0, params, xnames, vcov)

	// Test fitted values on the training data.
	fv := []float64{9, 3, -1, 7, 11, -9, 7}
	if !floats.Equal(fv, r.FittedValues(nil)) {
		t.Fail()
	}

	// Test fitted values when passing new data.
	fv = []float64{17, 5, -3, 13, 21, -19, 13}
	if !floats.Equal(fv, r.FittedValues(data1b())) {
		t.Fail()
	}
}

func TestWald(t *testing.T) {

	model := &Mock{data: data1()}
	params := []float64{2, -1}
	vcov := []float64{4, 0.5, 0.5, 0.25}

	r := NewBaseResults(model, -3, params, []string{"a", "b"}, vcov)

	assert.Equal(t, []float64{2, 0.5}, r.StdErr())
	assert.Equal(t, []float64{1, -2}, r.ZScores())

	pv := r.PValues()
	assert.InDelta(t, 0.3173105078629141, pv[0], 1e-10)
	assert.InDelta(t, 0.04550026389635842, pv[1], 1e-10)

	lcb, ucb := r.ConfInt(0.95)
	assert.InDelta(t, 2-1.959963984540054*2, lcb[0], 1e-8)
	assert.InDelta(t, -1+1.959963984540054*0.5, ucb[1], 1e-8)

	// No covariance, no inference.
	r2 := NewBaseResults(model, 0, params, nil, nil)
	assert.Nil(t, r2.StdErr())
	assert.Nil(t, r2.PValues())
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 1.959963984540054, NormalQuantile(0.95), 1e-10)
	assert.InDelta(t, 2.5758293035489, NormalQuantile(0.99), 1e-10)
	assert.Panics(t, func() { NormalQuantile(1) })
}

func TestGetVcov(t *testing.T) {

	model := &Mock{
		data: data1(),
		hess: []float64{-2, -1, -1, -2},
	}

	vcov, err := GetVcov(model, NewGenericParameter([]float64{0, 0}))
	require.NoError(t, err)
	require.True(t, floats.EqualApprox([]float64{2.0 / 3, -1.0 / 3, -1.0 / 3, 2.0 / 3}, vcov, 1e-12))

	// A singular information matrix.
	model.hess = []float64{-1, -1, -1, -1}
	_, err = GetVcov(model, NewGenericParameter([]float64{0, 0}))
	require.True(t, errors.Is(err, ErrConvergence))
}

func TestGenericParameter(t *testing.T) {

	p := NewGenericParameter([]float64{1, 2})
	q := p.Clone()
	q.GetCoeff()[0] = 5
	assert.Equal(t, 1.0, p.GetCoeff()[0])

	p.SetCoeff([]float64{3, 4, 5})
	assert.Equal(t, []float64{3, 4, 5}, p.GetCoeff())
}

func TestSummaryTable(t *testing.T) {

	st := &SummaryTable{
		Title:    "Test table",
		ColNames: []string{"Variable", "Coefficient"},
		ColFmt:   []Fmter{StringFmt, FloatFmt},
		Cols:     []interface{}{[]string{"x", "longer"}, []float64{1, -2.5}},
		Top:      []string{"  Sample size: 10", "  Events: 3", "  Ties: Breslow"},
		Msg:      []string{"a message"},
	}

	s := st.String()
	assert.Contains(t, s, "Test table")
	assert.Contains(t, s, "longer")
	assert.Contains(t, s, "-2.5000")
	assert.Contains(t, s, "Ties: Breslow")
	assert.Contains(t, s, "a message\n")
}
