package duration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshedden/survstat/statmodel"
)

// scenario returns six subjects with tied times and a group label.
func scenario(t *testing.T) *SurvData {

	time := []float64{5, 10, 10, 15, 20, 20}
	status := []float64{1, 0, 1, 1, 0, 1}
	grp := []string{"a", "a", "b", "b", "a", "b"}

	obs := make([]Observation, len(time))
	for i := range time {
		obs[i] = Observation{
			Time:       time[i],
			Status:     status[i],
			Covariates: []statmodel.Value{statmodel.Categorical(grp[i]), statmodel.Numeric(float64(i))},
		}
	}

	data, err := NewSurvData(obs, []string{"grp", "x"})
	require.NoError(t, err)

	return data
}

// simple builds a dataset with no covariates.
func simple(t *testing.T, time, status []float64) *SurvData {

	obs := make([]Observation, len(time))
	for i := range time {
		obs[i] = Observation{Time: time[i], Status: status[i]}
	}

	data, err := NewSurvData(obs, nil)
	require.NoError(t, err)

	return data
}

func TestSurvDataIndex(t *testing.T) {

	data := scenario(t)

	assert.Equal(t, 6, data.NumObs())
	assert.Equal(t, 4, data.NumEvents())
	assert.Equal(t, []float64{5, 10, 15, 20}, data.EventTimes())

	var nrisk []int
	for _, tm := range data.EventTimes() {
		nrisk = append(nrisk, data.NumRisk(tm))
	}
	assert.Equal(t, []int{6, 5, 3, 2}, nrisk)

	d, c := data.Ties(10)
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, c)

	d, c = data.Ties(20)
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, c)

	d, c = data.Ties(7)
	assert.Equal(t, 0, d)
	assert.Equal(t, 0, c)

	assert.Equal(t, 0, data.NumRisk(21))
	assert.Equal(t, 6, data.NumRisk(1))
}

func TestSurvDataCopies(t *testing.T) {

	cov := []statmodel.Value{statmodel.Numeric(1)}
	obs := []Observation{{Time: 1, Status: 1, Covariates: cov}}

	data, err := NewSurvData(obs, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1"}, data.Names())

	// Mutating the input does not change the dataset
	obs[0].Time = 99
	cov[0] = statmodel.Numeric(7)
	assert.Equal(t, 1.0, data.Time(0))
	assert.Equal(t, 1.0, data.Observation(0).Covariates[0].Float())

	// Nor does mutating what the dataset returns
	o := data.Observation(0)
	o.Covariates[0] = statmodel.Numeric(3)
	data.EventTimes()[0] = 5
	assert.Equal(t, 1.0, data.Observation(0).Covariates[0].Float())
	assert.Equal(t, []float64{1}, data.EventTimes())
}

func TestSurvDataValidation(t *testing.T) {

	num := func(x float64) []statmodel.Value {
		return []statmodel.Value{statmodel.Numeric(x)}
	}

	for _, obs := range [][]Observation{
		{{Time: 0, Status: 1, Covariates: num(1)}},
		{{Time: -1, Status: 1, Covariates: num(1)}},
		{{Time: math.NaN(), Status: 1, Covariates: num(1)}},
		{{Time: math.Inf(1), Status: 0, Covariates: num(1)}},
		{{Time: 1, Status: 2, Covariates: num(1)}},
		{{Time: 1, Status: 0.5, Covariates: num(1)}},
		{{Time: 1, Status: 1, Covariates: num(math.NaN())}},
		{{Time: 1, Status: 1, Covariates: nil}},
		{
			{Time: 1, Status: 1, Covariates: num(1)},
			{Time: 2, Status: 1, Covariates: []statmodel.Value{statmodel.Categorical("a")}},
		},
	} {
		_, err := NewSurvData(obs, []string{"x"})
		assert.ErrorIs(t, err, statmodel.ErrDataValidation)
	}

	_, err := NewSurvData(nil, []string{"x", "x"})
	assert.ErrorIs(t, err, statmodel.ErrDataValidation)

	// An empty dataset is valid
	data, err := NewSurvData(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, data.NumObs())
	assert.Empty(t, data.EventTimes())
}

func TestSurvDataColumn(t *testing.T) {

	data := scenario(t)

	col, err := data.Column("grp")
	require.NoError(t, err)
	assert.True(t, col.Cat)
	assert.Equal(t, []string{"a", "a", "b", "b", "a", "b"}, col.Levels)

	col, err = data.Column("x")
	require.NoError(t, err)
	assert.False(t, col.Cat)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, col.Num)

	_, err = data.Column("y")
	assert.Error(t, err)
}

func TestSurvDataFilterStrata(t *testing.T) {

	data := scenario(t)

	late, err := data.Filter(func(o Observation) bool { return o.Time > 10 })
	require.NoError(t, err)
	assert.Equal(t, 3, late.NumObs())
	assert.Equal(t, []float64{15, 20}, late.EventTimes())
	assert.Equal(t, 6, data.NumObs())

	strata, err := data.Strata("grp")
	require.NoError(t, err)
	require.Len(t, strata, 2)
	assert.Equal(t, "a", strata[0].Level)
	assert.Equal(t, []float64{5, 10, 20}, strata[0].Data.Times())
	assert.Equal(t, "b", strata[1].Level)
	assert.Equal(t, []float64{10, 15, 20}, strata[1].Data.Times())

	_, err = data.Strata("nope")
	assert.ErrorIs(t, err, statmodel.ErrDataValidation)
}

func TestStrataNumericOrder(t *testing.T) {

	var obs []Observation
	for i, v := range []float64{10, 2, 10, 2, 1} {
		obs = append(obs, Observation{
			Time:       float64(i + 1),
			Status:     1,
			Covariates: []statmodel.Value{statmodel.Numeric(v)},
		})
	}

	data, err := NewSurvData(obs, []string{"dose"})
	require.NoError(t, err)

	strata, err := data.Strata("dose")
	require.NoError(t, err)
	require.Len(t, strata, 3)
	for i, lev := range []string{"1", "2", "10"} {
		assert.Equal(t, lev, strata[i].Level)
	}
	assert.Equal(t, 2, strata[2].Data.NumObs())
}
