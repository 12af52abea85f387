package duration

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kshedden/survstat/statmodel"
)

// StratumSurvfunc is the Kaplan-Meier estimate for one stratum.
type StratumSurvfunc struct {
	Level    string
	Survfunc *SurvfuncRight
}

// StratifiedSurvfunc estimates a separate survival function in each
// stratum defined by the named covariate.  Each stratum has its own risk
// sets.  The strata are fit concurrently, each on its own dataset, and
// returned in level order.
func StratifiedSurvfunc(ctx context.Context, data *SurvData, name string, level float64) ([]StratumSurvfunc, error) {

	strata, err := data.Strata(name)
	if err != nil {
		return nil, err
	}

	out := make([]StratumSurvfunc, len(strata))
	g, ctx := errgroup.WithContext(ctx)
	for i, st := range strata {
		i, st := i, st
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sf := NewSurvfuncRight(st.Data).Level(level).Done()
			out[i] = StratumSurvfunc{Level: st.Level, Survfunc: sf}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// LogRankResult holds the k-sample log-rank test comparing the survival
// distributions of several strata.
type LogRankResult struct {

	// The stratum levels, in the order of Observed and Expected
	Levels []string

	// Observed and expected number of events in each stratum
	Observed []float64
	Expected []float64

	// The chi-square statistic, its degrees of freedom and p-value
	Stat   float64
	DF     int
	PValue float64
}

// LogRank performs the log-rank test of the null hypothesis that all
// strata defined by the named covariate have the same survival
// distribution.
func LogRank(data *SurvData, name string) (*LogRankResult, error) {

	strata, err := data.Strata(name)
	if err != nil {
		return nil, err
	}

	k := len(strata)
	if k < 2 {
		return nil, fmt.Errorf("%w: log-rank test needs at least two strata, '%s' has %d",
			statmodel.ErrDataValidation, name, k)
	}

	rslt := &LogRankResult{
		Levels:   make([]string, k),
		Observed: make([]float64, k),
		Expected: make([]float64, k),
		DF:       k - 1,
	}
	for g, st := range strata {
		rslt.Levels[g] = st.Level
	}

	// Only the first k-1 strata enter the covariance, the last is
	// determined by the others.
	q := k - 1
	cov := make([]float64, q*q)
	nr := make([]float64, k)

	for _, t := range data.EventTimes() {

		n := float64(data.NumRisk(t))
		d, _ := data.Ties(t)
		dt := float64(d)

		for g, st := range strata {
			nr[g] = float64(st.Data.NumRisk(t))
			dg, _ := st.Data.Ties(t)
			rslt.Observed[g] += float64(dg)
			rslt.Expected[g] += dt * nr[g] / n
		}

		if n <= 1 {
			continue
		}

		f := dt * (n - dt) / (n - 1)
		for a := 0; a < q; a++ {
			for b := 0; b < q; b++ {
				v := -nr[a] * nr[b] / (n * n)
				if a == b {
					v += nr[a] / n
				}
				cov[a*q+b] += f * v
			}
		}
	}

	oe := make([]float64, q)
	for g := 0; g < q; g++ {
		oe[g] = rslt.Observed[g] - rslt.Expected[g]
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(q, cov)); !ok {
		return nil, fmt.Errorf("%w: log-rank covariance is singular", statmodel.ErrDataValidation)
	}

	var sol mat.VecDense
	ov := mat.NewVecDense(q, oe)
	if err := chol.SolveVecTo(&sol, ov); err != nil {
		return nil, fmt.Errorf("%w: %v", statmodel.ErrDataValidation, err)
	}

	rslt.Stat = mat.Dot(ov, &sol)
	rslt.PValue = distuv.ChiSquared{K: float64(rslt.DF)}.Survival(rslt.Stat)

	return rslt, nil
}
