// Package duration supports various methods for statistical analysis
// of duration data (survival analysis).
package duration

import (
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kshedden/survstat/statmodel"
)

// PHParameter contains a parameter value for a proportional hazards
// regression model.
type PHParameter struct {
	coeff []float64
}

// GetCoeff returns the array of model coefficients from a parameter value.
func (p *PHParameter) GetCoeff() []float64 {
	return p.coeff
}

// SetCoeff sets the array of model coefficients for a parameter value.
func (p *PHParameter) SetCoeff(x []float64) {
	p.coeff = x
}

// Clone returns a deep copy of the parameter value.
func (p *PHParameter) Clone() statmodel.Parameter {
	q := make([]float64, len(p.coeff))
	copy(q, p.coeff)
	return &PHParameter{q}
}

// PHReg describes a proportional hazards regression model for right
// censored data.  Ties are handled with the method of Breslow.
type PHReg struct {

	// The data to which the model is fit
	data *SurvData

	// The design matrix, one row per observation in data
	design *statmodel.Design

	// The covariate columns of the design matrix
	xdat [][]float64

	// The names of the covariates
	xnames []string

	// Event or censoring times, and status values
	time   []float64
	status []float64

	// Starting values, optional
	start []float64

	// The sorted times at which events occur
	etimes []float64

	// enter[j] are the row indices that enter the risk set at the jth
	// distinct event time
	enter [][]int

	// event[j] are the row indices that have an event at the jth
	// distinct event time
	event [][]int

	// exit[j] are the row indices that exit the risk set after the jth
	// distinct event time
	exit [][]int

	// The sum of covariates over the cases with events
	sumx []float64

	// L2 (ridge) weights for each variable
	l2wgt []float64

	// L1 (lasso) weights for each variable
	l1wgt []float64

	// A fixed term added to the linear predictor, used when
	// focusing on one covariate
	offset []float64

	// If skip[i] is true, case i is skipped since it is censored before the first event.
	skip []bool

	// The number of cases that are skipped because they are censored before the first event
	skipEarlyCensor int

	// Newton-Raphson convergence settings
	tol     float64
	maxiter int

	// Coverage probability for confidence intervals
	level float64

	// Optional gradient-based optimizer
	optsettings *optimize.Settings
	optmethod   optimize.Method

	log *log.Logger
}

// PHRegConfig defines configuration parameters for a proportional hazards regression.
type PHRegConfig struct {

	// A logger to which logging information is written, optional
	Log *log.Logger

	// Start contains starting values for the regression parameter
	// estimates, the default is zero.
	Start []float64

	// Tolerance is the bound on the Euclidean norm of the score vector
	// at which Newton-Raphson iteration stops.
	Tolerance float64

	// MaxIter is the maximum number of Newton-Raphson iterations.
	MaxIter int

	// Level is the coverage probability of confidence intervals.
	Level float64

	// L2Penalty maps covariate names to ridge penalty weights, the
	// penalty subtracted from the log-likelihood is w * b^2.
	L2Penalty map[string]float64

	// L1Penalty maps covariate names to lasso penalty weights, the
	// penalty subtracted from the log-likelihood is n * w * |b|, with n
	// the sample size.  If present the model is fit by coordinate
	// descent and no standard errors are available.
	L1Penalty map[string]float64

	// OptMethod, if not nil, is a Gonum optimization method used to
	// approach the maximum before the Newton-Raphson iterations.
	OptMethod optimize.Method

	// OptSettings configures the Gonum optimization routine.
	OptSettings *optimize.Settings
}

// DefaultPHRegConfig returns a default configuration struct for a proportional hazards regression.
func DefaultPHRegConfig() *PHRegConfig {

	return &PHRegConfig{
		Tolerance: 1e-9,
		MaxIter:   25,
		Level:     0.95,
	}
}

// NewPHReg returns a PHReg value that can be used to fit a proportional
// hazards regression model.  The design matrix must have one row per
// observation in data.  A nil design yields the null model, which has no
// covariates.  Errors wrap statmodel.ErrDesign.
func NewPHReg(data *SurvData, design *statmodel.Design, config *PHRegConfig) (*PHReg, error) {

	if config == nil {
		config = DefaultPHRegConfig()
	}

	if design == nil {
		var err error
		design, err = statmodel.NewDesignFromColumns(nil, nil)
		if err != nil {
			return nil, err
		}
	}

	if design.NumParams() > 0 && design.NumObs() != data.NumObs() {
		return nil, fmt.Errorf("%w: design has %d rows but the data has %d observations",
			statmodel.ErrDesign, design.NumObs(), data.NumObs())
	}

	p := design.NumParams()
	if config.Start != nil && len(config.Start) != p {
		return nil, fmt.Errorf("%w: %d starting values for %d covariates",
			statmodel.ErrDesign, len(config.Start), p)
	}

	l2wgt, err := penToSlice(config.L2Penalty, design.Names())
	if err != nil {
		return nil, err
	}
	l1wgt, err := penToSlice(config.L1Penalty, design.Names())
	if err != nil {
		return nil, err
	}

	def := DefaultPHRegConfig()
	tol, maxiter, level := config.Tolerance, config.MaxIter, config.Level
	if tol <= 0 {
		tol = def.Tolerance
	}
	if maxiter <= 0 {
		maxiter = def.MaxIter
	}
	if level <= 0 || level >= 1 {
		level = def.Level
	}

	ph := &PHReg{
		data:        data,
		design:      design,
		xdat:        design.Data(),
		xnames:      design.Names(),
		time:        data.Times(),
		status:      data.Statuses(),
		start:       config.Start,
		l2wgt:       l2wgt,
		l1wgt:       l1wgt,
		tol:         tol,
		maxiter:     maxiter,
		level:       level,
		log:         config.Log,
		optsettings: config.OptSettings,
		optmethod:   config.OptMethod,
	}

	ph.setupTimes()

	// The partial likelihood is invariant to shifting a covariate, so
	// the rank is assessed after centering.  Cases censored before the
	// first event never enter a risk set and do not contribute.
	if err := statmodel.CheckRank(ph.riskRows(), design.Names(), true); err != nil {
		return nil, err
	}

	ph.setupCovs()

	return ph, nil
}

// riskRows returns the covariate columns restricted to the cases that
// enter a risk set.
func (ph *PHReg) riskRows() [][]float64 {

	if ph.skipEarlyCensor == 0 {
		return ph.xdat
	}

	x := make([][]float64, len(ph.xdat))
	for j, col := range ph.xdat {
		for i, v := range col {
			if !ph.skip[i] {
				x[j] = append(x[j], v)
			}
		}
	}

	return x
}

// penToSlice converts a map of penalty weights keyed by covariate name to a
// slice aligned with the covariates, nil if there are no weights.
func penToSlice(pen map[string]float64, names []string) ([]float64, error) {

	if len(pen) == 0 {
		return nil, nil
	}

	pos := make(map[string]int)
	for j, na := range names {
		pos[na] = j
	}

	wgt := make([]float64, len(names))
	for na, w := range pen {
		j, ok := pos[na]
		if !ok {
			return nil, fmt.Errorf("%w: penalized covariate '%s' is not in the design",
				statmodel.ErrDesign, na)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative penalty weight for '%s'", statmodel.ErrDesign, na)
		}
		wgt[j] = w
	}

	return wgt, nil
}

// NumObs returns the number of observations in the data set.
func (ph *PHReg) NumObs() int {
	return len(ph.time)
}

// NumParams returns the number of model parameters (regression coefficients).
func (ph *PHReg) NumParams() int {
	return len(ph.xdat)
}

// Dataset returns the covariate columns that are used to fit the model.
func (ph *PHReg) Dataset() [][]float64 {
	return ph.xdat
}

// Data returns the survival data the model is fit to.
func (ph *PHReg) Data() *SurvData {
	return ph.data
}

// Design returns the design matrix of the model.
func (ph *PHReg) Design() *statmodel.Design {
	return ph.design
}

func (ph *PHReg) setupTimes() {

	ph.skipEarlyCensor = 0

	time := ph.time
	status := ph.status
	nobs := len(time)

	// Track cases that are omitted since they are
	// censored before the first event.
	ph.skip = make([]bool, nobs)

	// The sorted distinct times where events occur
	et := ph.data.EventTimes()
	ph.etimes = et

	// Indices of cases that enter or exit the risk set,
	// or have an event at each time point.
	ph.enter = make([][]int, len(et))
	ph.exit = make([][]int, len(et))
	ph.event = make([][]int, len(et))

	// No events
	if len(et) == 0 {
		return
	}

	// Risk set exit times
	for i := 0; i < nobs; i++ {
		ii := sort.SearchFloat64s(et, time[i])
		switch {
		case ii == len(et):
			// Censored after last event, exits after the last event
			ph.exit[len(et)-1] = append(ph.exit[len(et)-1], i)
		case et[ii] == time[i]:
			// Event or censored at an event time
			ph.exit[ii] = append(ph.exit[ii], i)
		case ii == 0:
			// Censored before first event, never enters
			ph.skip[i] = true
			ph.skipEarlyCensor++
		default:
			// Censored between event times
			ph.exit[ii-1] = append(ph.exit[ii-1], i)
		}
	}

	// Event times
	for i := 0; i < nobs; i++ {
		if status[i] == 0 || ph.skip[i] {
			continue
		}
		ii := sort.SearchFloat64s(et, time[i])
		ph.event[ii] = append(ph.event[ii], i)
	}

	// Everyone enters at time 0
	for i := 0; i < nobs; i++ {
		if !ph.skip[i] {
			ph.enter[0] = append(ph.enter[0], i)
		}
	}
}

func (ph *PHReg) setupCovs() {

	// Get the sum of covariates, including only covariates for
	// cases with the event
	ph.sumx = make([]float64, len(ph.xdat))
	for j, x := range ph.xdat {
		for i := range x {
			if !ph.skip[i] && ph.status[i] == 1 {
				ph.sumx[j] += x[i]
			}
		}
	}
}

// linpred returns the linear predictor at the given parameter values.
func (ph *PHReg) linpred(params []float64) []float64 {
	lp := make([]float64, ph.NumObs())
	copy(lp, ph.offset)
	for j, x := range ph.xdat {
		floats.AddScaled(lp, params[j], x)
	}
	return lp
}

// LogLike returns the log-likelihood at the given parameter value. The 'exact'
// parameter is ignored here.
func (ph *PHReg) LogLike(param statmodel.Parameter, exact bool) float64 {

	coeff := param.GetCoeff()

	ll := ph.breslowLogLike(coeff)

	// Account for L2 weights if present.
	for j, w := range ph.l2wgt {
		ll -= w * coeff[j] * coeff[j]
	}

	return ll
}

// breslowLogLike returns the log-likelihood value for the
// proportional hazards regression model at the given parameter
// values, using the Breslow method to resolve ties.
func (ph *PHReg) breslowLogLike(params []float64) float64 {

	if len(ph.etimes) == 0 {
		return 0
	}

	lp := ph.linpred(params)
	elp := make([]float64, len(lp))

	// We can add any constant here due to invariance in
	// the partial likelihood.
	mx := floats.Max(lp)
	for i := range lp {
		lp[i] -= mx
		elp[i] = math.Exp(lp[i])
	}

	ql := float64(0)
	rlp := float64(0)
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {
			rlp += elp[i]
		}

		for _, i := range ph.event[k] {
			ql += lp[i]
		}

		ql -= float64(len(ph.event[k])) * math.Log(rlp)

		// Update for new exits
		for _, i := range ph.exit[k] {
			rlp -= elp[i]
		}
	}

	return ql
}

// Score computes the score vector for the proportional hazards
// regression model at the given parameter setting.
func (ph *PHReg) Score(params statmodel.Parameter, score []float64) {

	coeff := params.GetCoeff()
	ph.breslowScore(coeff, score)

	// Account for L2 weights if present.
	for j, w := range ph.l2wgt {
		score[j] -= 2 * w * coeff[j]
	}
}

// breslowScore calculates the score vector for the proportional
// hazards regression model at the given parameter values, using the
// Breslow approach to resolving ties.
func (ph *PHReg) breslowScore(params, score []float64) {

	zero(score)
	if len(ph.etimes) == 0 {
		return
	}

	copy(score, ph.sumx)

	lp := ph.linpred(params)

	// We can add any constant here due to invariance in
	// the partial likelihood.
	mx := floats.Max(lp)
	for i := range lp {
		lp[i] = math.Exp(lp[i] - mx)
	}

	rlp := float64(0)
	rlpv := make([]float64, len(ph.xdat))
	for q := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[q] {
			rlp += lp[i]
			for j, x := range ph.xdat {
				rlpv[j] += lp[i] * x[i]
			}
		}

		d := float64(len(ph.event[q]))
		floats.AddScaled(score, -d/rlp, rlpv)

		// Update for new exits
		for _, i := range ph.exit[q] {
			rlp -= lp[i]
			for j, x := range ph.xdat {
				rlpv[j] -= lp[i] * x[i]
			}
		}
	}
}

// Hessian computes the Hessian matrix for the model evaluated at the
// given parameter setting.  The Hessian type parameter is not used
// here, the observed and expected Hessians coincide.
func (ph *PHReg) Hessian(params statmodel.Parameter, ht statmodel.HessType, hess []float64) {

	coeff := params.GetCoeff()
	ph.breslowHess(coeff, hess)

	// Account for L2 weights if present.
	p := len(coeff)
	for j, w := range ph.l2wgt {
		hess[j*p+j] -= 2 * w
	}
}

// breslowHess calculates the Hessian matrix for the proportional
// hazards regression model at the given parameter values.
func (ph *PHReg) breslowHess(params []float64, hess []float64) {

	zero(hess)
	if len(ph.etimes) == 0 {
		return
	}

	lp := ph.linpred(params)

	// We can add any constant here due to invariance in
	// the partial likelihood.
	mx := floats.Max(lp)
	for i := range lp {
		lp[i] = math.Exp(lp[i] - mx)
	}

	p := len(ph.xdat)
	d1s := make([]float64, p)
	d2s := make([]float64, p*p)

	// update adds (sgn = 1) or removes (sgn = -1) case i from the
	// risk set sums.
	update := func(i int, sgn float64) {
		w := sgn * lp[i]
		for j1, x1 := range ph.xdat {
			d1s[j1] += w * x1[i]
			for j2 := 0; j2 <= j1; j2++ {
				u := w * x1[i] * ph.xdat[j2][i]
				d2s[j1*p+j2] += u
				if j2 != j1 {
					d2s[j2*p+j1] += u
				}
			}
		}
	}

	rlp := float64(0)
	for k := range ph.etimes {

		// Update for new entries
		for _, i := range ph.enter[k] {
			rlp += lp[i]
			update(i, 1)
		}

		d := float64(len(ph.event[k]))

		jj := 0
		for j1 := 0; j1 < p; j1++ {
			for j2 := 0; j2 < p; j2++ {
				hess[jj] -= d * d2s[j1*p+j2] / rlp
				hess[jj] += d * d1s[j1] * d1s[j2] / (rlp * rlp)
				jj++
			}
		}

		// Update for new exits
		for _, i := range ph.exit[k] {
			rlp -= lp[i]
			update(i, -1)
		}
	}
}

func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PHResults describes the results of a proportional hazards model.
type PHResults struct {
	statmodel.BaseResults

	// Log-likelihood at zero coefficients
	nullLogLike float64

	// Number of Newton-Raphson iterations
	niter int

	// Coverage probability of confidence intervals
	level float64
}

// Fit fits the model to the data using Newton-Raphson iterations.  The
// returned error wraps statmodel.ErrConvergence if the data contain no
// events, the information matrix is singular, or the score norm does not
// fall below the tolerance within the allowed number of iterations.  No
// results are returned on failure.
func (ph *PHReg) Fit() (*PHResults, error) {

	if len(ph.etimes) == 0 {
		return nil, fmt.Errorf("%w: the data contain no events, the partial likelihood is undefined",
			statmodel.ErrConvergence)
	}

	nvar := ph.NumParams()
	start := make([]float64, nvar)
	if ph.start != nil {
		copy(start, ph.start)
	}

	if ph.l1wgt != nil {
		return ph.fitRegularized(start)
	}

	var niter int
	if ph.optmethod != nil && nvar > 0 {
		var err error
		start, niter, err = ph.fitGradient(start)
		if err != nil {
			return nil, err
		}
	}

	params, iter, err := ph.fitNewton(start)
	if err != nil {
		return nil, err
	}
	niter += iter

	vcov, err := statmodel.GetVcov(ph, &PHParameter{params})
	if err != nil {
		return nil, err
	}

	ll := ph.LogLike(&PHParameter{params}, false)

	results := &PHResults{
		BaseResults: statmodel.NewBaseResults(ph, ll, params, ph.xnames, vcov),
		nullLogLike: ph.breslowLogLike(make([]float64, nvar)),
		niter:       niter,
		level:       ph.level,
	}

	return results, nil
}

// fitRegularized estimates the parameters of the model using L1
// regularization (with optional L2 regularization).  This invokes
// coordinate descent optimization.
func (ph *PHReg) fitRegularized(start []float64) (*PHResults, error) {

	par, niter, err := statmodel.FitL1Reg(ph, &PHParameter{start}, ph.l1wgt, true)
	if err != nil {
		ph.failMessage(start, make([]float64, len(start)))
		return nil, err
	}
	coeff := par.GetCoeff()

	if ph.log != nil {
		ph.log.Printf("Coordinate descent converged in %d sweeps\n", niter)
	}

	results := &PHResults{
		BaseResults: statmodel.NewBaseResults(ph, ph.breslowLogLike(coeff), coeff, ph.xnames, nil),
		nullLogLike: ph.breslowLogLike(make([]float64, len(coeff))),
		niter:       niter,
		level:       ph.level,
	}

	return results, nil
}

// Focus returns a new PHReg instance with a single variable, which is variable pos in the
// original model.  The effects of the remaining covariates are captured
// through the offset.
func (ph *PHReg) Focus(pos int, coeff []float64) statmodel.RegFitter {

	fph := *ph

	fph.xdat = [][]float64{ph.xdat[pos]}
	fph.xnames = []string{ph.xnames[pos]}
	fph.start = nil

	// These are not used for coordinate optimization
	fph.optsettings = nil
	fph.optmethod = nil

	// Fill in the offset
	fph.offset = make([]float64, ph.NumObs())
	copy(fph.offset, ph.offset)
	for j, x := range ph.xdat {
		if j != pos {
			floats.AddScaled(fph.offset, coeff[j], x)
		}
	}

	if ph.l2wgt != nil {
		fph.l2wgt = []float64{ph.l2wgt[pos]}
	}
	fph.l1wgt = nil

	fph.setupCovs()

	return &fph
}

// fitNewton maximizes the log-likelihood from the given starting point
// using Newton-Raphson steps, halving a step whenever it fails to increase
// the log-likelihood.
func (ph *PHReg) fitNewton(start []float64) ([]float64, int, error) {

	p := ph.NumParams()
	params := append([]float64(nil), start...)
	score := make([]float64, p)
	hess := make([]float64, p*p)
	info := make([]float64, p*p)
	trial := make([]float64, p)

	ll := ph.LogLike(&PHParameter{params}, false)

	for iter := 0; ; iter++ {

		ph.Score(&PHParameter{params}, score)
		if math.IsNaN(ll) || math.IsInf(ll, 0) || !allFinite(score) {
			ph.failMessage(params, score)
			return nil, iter, fmt.Errorf("%w: non-finite log-likelihood or score at iteration %d",
				statmodel.ErrConvergence, iter)
		}

		norm := floats.Norm(score, 2)
		if ph.log != nil {
			ph.log.Printf("Iteration %d: log-likelihood=%.10f score norm=%.3g\n", iter, ll, norm)
		}
		if norm < ph.tol {
			return params, iter, nil
		}
		if iter >= ph.maxiter {
			ph.failMessage(params, score)
			return nil, iter, fmt.Errorf("%w: score norm %g after %d iterations", statmodel.ErrConvergence, norm, iter)
		}

		ph.Hessian(&PHParameter{params}, statmodel.ObsHess, hess)
		for i := range hess {
			info[i] = -hess[i]
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(mat.NewSymDense(p, info)); !ok {
			ph.failMessage(params, score)
			return nil, iter, fmt.Errorf("%w: information matrix is singular at iteration %d",
				statmodel.ErrConvergence, iter)
		}

		var step mat.VecDense
		if err := chol.SolveVecTo(&step, mat.NewVecDense(p, score)); err != nil {
			return nil, iter, fmt.Errorf("%w: %v", statmodel.ErrConvergence, err)
		}

		// Step halving
		f := 1.0
		var llnew float64
		for k := 0; ; k++ {
			for j := range params {
				trial[j] = params[j] + f*step.AtVec(j)
			}
			llnew = ph.LogLike(&PHParameter{trial}, false)
			if llnew >= ll || math.Abs(llnew-ll) <= 1e-12*(1+math.Abs(ll)) {
				break
			}
			if k == 30 {
				return nil, iter, fmt.Errorf("%w: no increase in log-likelihood at iteration %d",
					statmodel.ErrConvergence, iter)
			}
			f /= 2
			if ph.log != nil {
				ph.log.Printf("Step halving, factor=%g\n", f)
			}
		}

		copy(params, trial)
		ll = llnew
	}
}

// fitGradient uses gradient-based optimization to approach the maximum
// of the log-likelihood.
func (ph *PHReg) fitGradient(start []float64) ([]float64, int, error) {

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return -ph.LogLike(&PHParameter{x}, false)
		},
		Grad: func(grad, x []float64) {
			ph.Score(&PHParameter{x}, grad)
			floats.Scale(-1, grad)
		},
	}

	settings := ph.optsettings
	if settings == nil {
		settings = &optimize.Settings{
			GradientThreshold: 1e-6,
		}
	}

	if ph.log != nil {
		ph.log.Print("Fitting using gradient optimization\n")
	}

	optrslt, err := optimize.Minimize(p, start, settings, ph.optmethod)
	if err != nil {
		if optrslt != nil {
			ph.failMessage(optrslt.X, optrslt.Gradient)
		}
		return nil, 0, fmt.Errorf("%w: %v", statmodel.ErrConvergence, err)
	}
	if err = optrslt.Status.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", statmodel.ErrConvergence, err)
	}

	x := make([]float64, len(optrslt.X))
	copy(x, optrslt.X)

	return x, optrslt.Stats.MajorIterations, nil
}

// failMessage logs information that can help diagnose optimization failures.
func (ph *PHReg) failMessage(params, score []float64) {

	if ph.log == nil {
		return
	}

	ph.log.Print("Current point and score:\n")
	for j := range params {
		ph.log.Printf("%16.8f %16.8f %s\n", params[j], score[j], ph.xnames[j])
	}

	ph.log.Print("Covariate means and standard deviations:\n")
	n := float64(ph.NumObs())
	for j, x := range ph.xdat {
		mn := floats.Sum(x) / n
		var sd float64
		for _, v := range x {
			sd += (v - mn) * (v - mn)
		}
		sd = math.Sqrt(sd / n)
		ph.log.Printf("%16.8f %16.8f %s\n", mn, sd, ph.xnames[j])
	}

	ph.log.Printf("Size: %d  Events: %d  Event times: %d\n",
		ph.NumObs(), ph.data.NumEvents(), len(ph.etimes))
}

// NumIter returns the number of iterations used to fit the model.
func (rslt *PHResults) NumIter() int {
	return rslt.niter
}

// Level returns the coverage probability used for confidence intervals.
func (rslt *PHResults) Level() float64 {
	return rslt.level
}

// NullLogLike returns the log partial likelihood at zero coefficients.
func (rslt *PHResults) NullLogLike() float64 {
	return rslt.nullLogLike
}

// HazardRatios returns the exponentiated coefficients.
func (rslt *PHResults) HazardRatios() []float64 {
	hr := make([]float64, len(rslt.Params()))
	for j, b := range rslt.Params() {
		hr[j] = math.Exp(b)
	}
	return hr
}

// HRConfInt returns confidence intervals for the hazard ratios,
// exp(b -/+ q*SE) with q the normal quantile for the model's coverage
// level.  The quantile is exact, so at the 0.95 level q is 1.959964
// rather than the rounded 1.96 printed by many packages.
func (rslt *PHResults) HRConfInt() ([]float64, []float64) {
	lcb, ucb := rslt.ConfInt(rslt.level)
	for j := range lcb {
		lcb[j] = math.Exp(lcb[j])
		ucb[j] = math.Exp(ucb[j])
	}
	return lcb, ucb
}

// LRTest returns the likelihood ratio test of the fitted model against the
// null model with all coefficients equal to zero: the statistic, its
// degrees of freedom and its p-value.
func (rslt *PHResults) LRTest() (float64, int, float64) {
	df := len(rslt.Params())
	stat := 2 * (rslt.LogLike() - rslt.nullLogLike)
	if df == 0 {
		return 0, 0, 1
	}
	return stat, df, distuv.ChiSquared{K: float64(df)}.Survival(stat)
}

// LinearPredictor returns the fitted linear predictor for each observation.
func (rslt *PHResults) LinearPredictor() []float64 {
	return rslt.FittedValues(nil)
}

// Concordance returns the concordance between the fitted linear predictor
// and the observed survival times, restricted to pairs in which the
// earlier time is below tau.
func (rslt *PHResults) Concordance(tau float64) (float64, error) {

	ph := rslt.Model().(*PHReg)
	c, err := NewConcordance(ph.time, ph.status, rslt.LinearPredictor())
	if err != nil {
		return 0, err
	}

	return c.Concordance(tau)
}

// PHSummary summarizes a fitted proportional hazards regression model.
type PHSummary struct {

	// The model
	ph *PHReg

	// The results structure
	results *PHResults

	// Messages that are appended to the table
	messages []string
}

// Summary displays a summary table of the model results.
func (rslt *PHResults) Summary() *PHSummary {

	ph := rslt.Model().(*PHReg)

	return &PHSummary{
		ph:      ph,
		results: rslt,
	}
}

// String returns a string representation of a summary table for the model.
func (phs *PHSummary) String() string {

	ph := phs.ph
	rslt := phs.results

	sum := &statmodel.SummaryTable{
		Msg: phs.messages,
	}

	sum.Title = "Proportional hazards regression analysis"

	sum.Top = append(sum.Top, fmt.Sprintf("  Sample size: %10d", ph.NumObs()))
	sum.Top = append(sum.Top, fmt.Sprintf("  Events:      %10d", ph.data.NumEvents()))
	sum.Top = append(sum.Top, fmt.Sprintf("  Log-like:    %10.4f", rslt.LogLike()))
	sum.Top = append(sum.Top, fmt.Sprintf("  Iterations:  %10d", rslt.NumIter()))
	sum.Top = append(sum.Top, "  Ties:           Breslow")

	fn := statmodel.FloatFmt
	if ph.l1wgt != nil {
		// Only point estimates are available for lasso fits
		sum.ColNames = []string{"Variable   ", "Coefficient", "HR"}
		sum.ColFmt = []statmodel.Fmter{statmodel.StringFmt, fn, fn}
		sum.Cols = []interface{}{rslt.Names(), rslt.Params(), rslt.HazardRatios()}
		sum.Msg = append(sum.Msg, "Lasso-penalized fit, standard errors are not available")
	} else {
		lcb, ucb := rslt.HRConfInt()
		sum.ColNames = []string{"Variable   ", "Coefficient", "SE", "HR", "LCB", "UCB", "Z-score", "P-value"}
		sum.ColFmt = []statmodel.Fmter{statmodel.StringFmt, fn, fn, fn, fn, fn, fn, fn}
		sum.Cols = []interface{}{rslt.Names(), rslt.Params(), rslt.StdErr(), rslt.HazardRatios(),
			lcb, ucb, rslt.ZScores(), rslt.PValues()}
	}

	if len(ph.l2wgt) > 0 {
		sum.Msg = append(sum.Msg, "Ridge-penalized fit, standard errors are from the penalized information")
	}

	if ph.skipEarlyCensor > 0 {
		msg := fmt.Sprintf("%d observations censored before the first event do not contribute", ph.skipEarlyCensor)
		sum.Msg = append(sum.Msg, msg)
	}

	return sum.String()
}
