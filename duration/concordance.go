package duration

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/kshedden/survstat/statmodel"
)

// Concordance calculates the survival concordance of Uno et al.
// (https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3079915), a measure of
// how well a risk score orders the observed survival times.  Higher
// scores are taken to indicate shorter survival.
type Concordance struct {

	// The risk scores that are being assessed
	score []float64

	// Event or censoring time, sorted
	time []float64

	// Event status
	status []float64

	// The survival function for the censoring distribution, nil if
	// there is no censoring
	sf *SurvfuncRight
}

// NewConcordance creates a new Concordance value for the given times,
// status values and risk scores.  Errors wrap statmodel.ErrDataValidation.
func NewConcordance(time, status, score []float64) (*Concordance, error) {

	if len(time) != len(status) || len(time) != len(score) {
		return nil, fmt.Errorf("%w: %d times, %d status values and %d scores",
			statmodel.ErrDataValidation, len(time), len(status), len(score))
	}

	// Sort everything by time
	n := len(time)
	ii := make([]int, n)
	time1 := make([]float64, n)
	copy(time1, time)
	floats.Argsort(time1, ii)

	c := &Concordance{
		time:   time1,
		status: make([]float64, n),
		score:  make([]float64, n),
	}

	// We want the survival function for censoring
	obs := make([]Observation, n)
	var ncens int
	for i, j := range ii {
		c.status[i] = status[j]
		c.score[i] = score[j]
		obs[i] = Observation{Time: time1[i], Status: 1 - status[j]}
		if status[j] == 0 {
			ncens++
		}
	}

	da, err := NewSurvData(obs, nil)
	if err != nil {
		return nil, err
	}

	// Without censoring the censoring survival function is 1 for all t.
	if ncens > 0 {
		c.sf = NewSurvfuncRight(da).Done()
	}

	return c, nil
}

// censorSurv returns the censoring survival function just before t.
func (c *Concordance) censorSurv(t float64) float64 {

	if c.sf == nil {
		return 1
	}

	st := c.sf.Time()
	jj := sort.SearchFloat64s(st, t) - 1
	if jj < 0 {
		return 1
	}

	return c.sf.SurvProb()[jj]
}

// Concordance returns the concordance statistic, using all comparable
// pairs in which the shorter time is an event occurring before the
// truncation time tau.  Pairs with tied scores count one half.  An error
// wrapping statmodel.ErrDomain is returned if there are no comparable
// pairs.
func (c *Concordance) Concordance(tau float64) (float64, error) {

	n := len(c.time)
	jt := sort.SearchFloat64s(c.time, tau)

	var numer, denom float64
	for j1 := 0; j1 < jt; j1++ {

		if c.status[j1] != 1 {
			continue
		}

		g := c.censorSurv(c.time[j1])
		if g <= 0 {
			continue
		}
		w := 1 / (g * g)

		// Everyone with a strictly longer time is comparable
		j0 := sort.Search(n, func(i int) bool { return c.time[i] > c.time[j1] })
		for j2 := j0; j2 < n; j2++ {
			denom += w
			switch {
			case c.score[j1] > c.score[j2]:
				numer += w
			case c.score[j1] == c.score[j2]:
				numer += w / 2
			}
		}
	}

	if denom == 0 {
		return math.NaN(), fmt.Errorf("%w: no comparable pairs before time %v", statmodel.ErrDomain, tau)
	}

	return numer / denom, nil
}
