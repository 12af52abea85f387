package statmodel

import "errors"

// Errors returned by the model constructors and fitting routines.  They are
// usually wrapped with additional context, so test for them with errors.Is.
var (
	// ErrDataValidation indicates malformed input records, e.g. a
	// non-positive time or covariate rows of differing lengths.
	ErrDataValidation = errors.New("statmodel: invalid data")

	// ErrDesign indicates a design matrix that cannot be used to fit a
	// model, most often because its columns are linearly dependent.
	ErrDesign = errors.New("statmodel: unusable design matrix")

	// ErrConvergence indicates that the fitting algorithm did not reach
	// a solution, or that the information matrix is singular.
	ErrConvergence = errors.New("statmodel: model fitting did not converge")

	// ErrDomain indicates that a transformation was evaluated outside
	// of its domain.
	ErrDomain = errors.New("statmodel: argument outside the domain of the transformation")
)
