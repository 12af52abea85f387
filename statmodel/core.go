// Package statmodel holds the vocabulary shared by the models in this
// module: parameters, fitted results, design matrices and the error
// values reported by the estimators.
package statmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HessType indicates the type of a Hessian matrix for a log-likelihood.
type HessType int

// ObsHess (observed Hessian) and ExpHess (expected Hessian) are the two type of log-likelihood
// Hessian matrices
const (
	ObsHess HessType = iota
	ExpHess
)

// Parameter is the parameter of a model.
type Parameter interface {

	// Get the coefficients of the covariates in the linear
	// predictor.  The returned value should be a reference so
	// that changes to it lead to corresponding changes in the
	// parameter itself.
	GetCoeff() []float64

	// Set the coefficients of the covariates in the linear
	// predictor.
	SetCoeff([]float64)

	// Clone creates a deep copy of the Parameter struct.
	Clone() Parameter
}

// GenericParameter is a Parameter consisting only of regression coefficients.
type GenericParameter struct {
	params []float64
}

// NewGenericParameter wraps the given coefficients, which are not copied.
func NewGenericParameter(coeff []float64) *GenericParameter {
	return &GenericParameter{params: coeff}
}

// GetCoeff returns the coefficients.
func (gp *GenericParameter) GetCoeff() []float64 {
	return gp.params
}

// SetCoeff copies x into the coefficients.
func (gp *GenericParameter) SetCoeff(x []float64) {
	if len(x) != len(gp.params) {
		gp.params = make([]float64, len(x))
	}
	copy(gp.params, x)
}

// Clone returns a deep copy of the parameter.
func (gp *GenericParameter) Clone() Parameter {
	y := &GenericParameter{params: make([]float64, len(gp.params))}
	copy(y.params, gp.params)
	return y
}

// RegFitter is a regression model that can be fit to data.
type RegFitter interface {

	// Number of parameters in the model.
	NumParams() int

	// Number of observations in the data set
	NumObs() int

	// The covariate columns, one slice per parameter.
	Dataset() [][]float64

	// The log-likelihood function
	LogLike(Parameter, bool) float64

	// The score vector
	Score(Parameter, []float64)

	// The Hessian matrix
	Hessian(Parameter, HessType, []float64)
}

// BaseResultser is a fitted model that can produce results (parameter estimates, etc.).
type BaseResultser interface {
	Model() RegFitter
	Names() []string
	LogLike() float64
	Params() []float64
	VCov() []float64
	StdErr() []float64
	ZScores() []float64
	PValues() []float64
}

// BaseResults contains the results after fitting a model to data.
type BaseResults struct {
	model   RegFitter
	loglike float64
	params  []float64
	xnames  []string
	vcov    []float64
	stderr  []float64
	zscores []float64
	pvalues []float64
}

// NewBaseResults returns a BaseResults corresponding to the given fitted model.
func NewBaseResults(model RegFitter, loglike float64, params []float64, xnames []string, vcov []float64) BaseResults {
	return BaseResults{
		model:   model,
		loglike: loglike,
		params:  params,
		xnames:  xnames,
		vcov:    vcov,
	}
}

// Model produces the model value used to produce the results.
func (rslt *BaseResults) Model() RegFitter {
	return rslt.model
}

// FittedValues returns the fitted linear predictor for a regression
// model.  If da is nil, the fitted values are based on the data used
// to fit the model.  Otherwise da must hold the same covariate columns
// as the training data, in the same order.
func (rslt *BaseResults) FittedValues(da [][]float64) []float64 {

	if da == nil {
		da = rslt.model.Dataset()
	}

	if len(da) != len(rslt.params) {
		msg := fmt.Sprintf("Data has incorrect number of columns, %d != %d\n",
			len(da), len(rslt.params))
		panic(msg)
	}

	var n int
	if len(da) > 0 {
		n = len(da[0])
	} else {
		n = rslt.model.NumObs()
	}

	fv := make([]float64, n)
	for k, z := range da {
		for i := range z {
			fv[i] += rslt.params[k] * z[i]
		}
	}

	return fv
}

// Names returns the covariate names for the variables in the model.
func (rslt *BaseResults) Names() []string {
	return rslt.xnames
}

// Params returns the point estimates for the parameters in the model.
func (rslt *BaseResults) Params() []float64 {
	return rslt.params
}

// VCov returns the sampling variance/covariance model for the parameters in the model.
// The matrix is vetorized to one dimension.
func (rslt *BaseResults) VCov() []float64 {
	return rslt.vcov
}

// LogLike returns the log-likelihood or objective function value for the fitted model.
func (rslt *BaseResults) LogLike() float64 {
	return rslt.loglike
}

// StdErr returns the standard errors for the parameters in the model.
func (rslt *BaseResults) StdErr() []float64 {

	// No vcov, no standard error
	if rslt.vcov == nil {
		return nil
	}

	if rslt.stderr != nil {
		return rslt.stderr
	}

	p := len(rslt.params)
	rslt.stderr = make([]float64, p)
	for i := range rslt.stderr {
		rslt.stderr[i] = math.Sqrt(rslt.vcov[i*p+i])
	}

	return rslt.stderr
}

// ZScores returns the Wald Z-scores (the parameter estimates divided by the
// standard errors).
func (rslt *BaseResults) ZScores() []float64 {

	// No vcov, no z-scores
	if rslt.vcov == nil {
		return nil
	}

	if rslt.zscores != nil {
		return rslt.zscores
	}

	std := rslt.StdErr()
	rslt.zscores = make([]float64, len(rslt.params))
	for i := range std {
		rslt.zscores[i] = rslt.params[i] / std[i]
	}

	return rslt.zscores
}

// PValues returns the p-values for the null hypothesis that each parameter's population
// value is equal to zero.
func (rslt *BaseResults) PValues() []float64 {

	// No vcov, no p-values
	if rslt.vcov == nil {
		return nil
	}

	if rslt.pvalues != nil {
		return rslt.pvalues
	}

	zs := rslt.ZScores()
	rslt.pvalues = make([]float64, len(zs))
	for i, z := range zs {
		rslt.pvalues[i] = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	}

	return rslt.pvalues
}

// ConfInt returns Wald confidence intervals for the parameters, with the
// given coverage probability.
func (rslt *BaseResults) ConfInt(level float64) ([]float64, []float64) {

	std := rslt.StdErr()
	if std == nil {
		return nil, nil
	}

	q := NormalQuantile(level)
	lcb := make([]float64, len(std))
	ucb := make([]float64, len(std))
	for j, s := range std {
		lcb[j] = rslt.params[j] - q*s
		ucb[j] = rslt.params[j] + q*s
	}

	return lcb, ucb
}

// NormalQuantile returns the multiplier of the standard error giving a
// two-sided normal interval with the given coverage, e.g. 1.96 for 0.95.
func NormalQuantile(level float64) float64 {
	if level <= 0 || level >= 1 {
		panic(fmt.Sprintf("coverage level %v is not in (0, 1)", level))
	}
	return distuv.UnitNormal.Quantile(1 - (1-level)/2)
}

// GetVcov returns the sampling variance/covariance matrix for the parameter
// estimates, the inverse of the information matrix.  An ErrConvergence is
// returned if the information matrix is not positive definite.
func GetVcov(model RegFitter, params Parameter) ([]float64, error) {

	nvar := model.NumParams()
	if nvar == 0 {
		return []float64{}, nil
	}

	hess := make([]float64, nvar*nvar)
	model.Hessian(params, ObsHess, hess)
	for i := range hess {
		hess[i] = -hess[i]
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(nvar, hess)); !ok {
		return nil, fmt.Errorf("%w: information matrix is singular", ErrConvergence)
	}

	var vc mat.SymDense
	if err := chol.InverseTo(&vc); err != nil {
		return nil, fmt.Errorf("%w: cannot invert information matrix: %v", ErrConvergence, err)
	}

	vcov := make([]float64, nvar*nvar)
	for i := 0; i < nvar; i++ {
		for j := 0; j < nvar; j++ {
			vcov[i*nvar+j] = vc.At(i, j)
		}
	}

	return vcov, nil
}
