package statmodel

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Value is a single covariate value, either a number or the level of a
// categorical variable.
type Value struct {
	num   float64
	level string
	cat   bool
}

// Numeric returns a numeric Value.
func Numeric(x float64) Value {
	return Value{num: x}
}

// Categorical returns a categorical Value with the given level.
func Categorical(level string) Value {
	return Value{level: level, cat: true}
}

// IsCategorical reports whether the value is a categorical level.
func (v Value) IsCategorical() bool {
	return v.cat
}

// Float returns the numeric value, or NaN for a categorical value.
func (v Value) Float() float64 {
	if v.cat {
		return math.NaN()
	}
	return v.num
}

// Str returns the categorical level, or the formatted number for a
// numeric value.
func (v Value) Str() string {
	if v.cat {
		return v.level
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

func (v Value) String() string {
	return v.Str()
}

// Column is a named column of data.  Exactly one of Num and Levels is
// used, according to Cat.
type Column struct {
	Name   string
	Cat    bool
	Num    []float64
	Levels []string
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	if c.Cat {
		return len(c.Levels)
	}
	return len(c.Num)
}

// ColumnSource provides named columns from which a design matrix is built.
type ColumnSource interface {
	NumObs() int
	Column(name string) (Column, error)
}

// DesignConfig configures the construction of a design matrix.
type DesignConfig struct {

	// RefLevels maps the name of a categorical variable to its
	// reference level.  Categorical variables that are not present
	// use the first of their levels in sorted order.
	RefLevels map[string]string
}

// Design is a numeric design matrix.  Categorical variables are expanded
// into indicator columns for every level but the reference level, and an
// interaction term "a:b" is the elementwise product of the columns of its
// factors.
type Design struct {

	// Column-major data, data[j] is the j^th column.
	data [][]float64

	// Column names
	names []string

	// Map from term to the positions of its columns
	termCols map[string][]int

	// The terms in the order given by the caller
	terms []string

	// Reference levels used for the categorical variables
	refLevels map[string]string

	nobs int
}

// NewDesign builds a design matrix from the given terms.  A term is either a
// variable name or several variable names joined by ':'.
func NewDesign(src ColumnSource, terms []string, config *DesignConfig) (*Design, error) {

	if config == nil {
		config = &DesignConfig{}
	}

	ds := &Design{
		termCols:  make(map[string][]int),
		refLevels: make(map[string]string),
		nobs:      src.NumObs(),
	}

	for _, term := range terms {

		if _, ok := ds.termCols[term]; ok {
			return nil, fmt.Errorf("%w: duplicated term '%s'", ErrDesign, term)
		}

		var cols [][]float64
		var names []string
		for i, fa := range strings.Split(term, ":") {
			fa = strings.TrimSpace(fa)
			if fa == "" {
				return nil, fmt.Errorf("%w: empty factor in term '%s'", ErrDesign, term)
			}
			fcols, fnames, err := ds.expand(src, fa, config.RefLevels[fa])
			if err != nil {
				return nil, err
			}
			if i == 0 {
				cols, names = fcols, fnames
				continue
			}
			cols, names = interact(cols, names, fcols, fnames)
		}

		for j := range cols {
			ds.termCols[term] = append(ds.termCols[term], len(ds.data))
			ds.data = append(ds.data, cols[j])
			ds.names = append(ds.names, names[j])
		}
		ds.terms = append(ds.terms, term)
	}

	seen := make(map[string]bool)
	for _, na := range ds.names {
		if seen[na] {
			return nil, fmt.Errorf("%w: duplicated column '%s'", ErrDesign, na)
		}
		seen[na] = true
	}

	return ds, nil
}

// NewDesignFromColumns wraps an already numeric design matrix, given as
// columns.  The columns are copied.
func NewDesignFromColumns(data [][]float64, names []string) (*Design, error) {

	if len(data) != len(names) {
		return nil, fmt.Errorf("%w: %d columns but %d names", ErrDesign, len(data), len(names))
	}

	ds := &Design{
		termCols:  make(map[string][]int),
		refLevels: make(map[string]string),
	}

	for j, x := range data {
		if j > 0 && len(x) != ds.nobs {
			return nil, fmt.Errorf("%w: column '%s' has length %d, expected %d",
				ErrDesign, names[j], len(x), ds.nobs)
		}
		ds.nobs = len(x)
		if _, ok := ds.termCols[names[j]]; ok {
			return nil, fmt.Errorf("%w: duplicated column '%s'", ErrDesign, names[j])
		}
		ds.data = append(ds.data, append([]float64(nil), x...))
		ds.names = append(ds.names, names[j])
		ds.terms = append(ds.terms, names[j])
		ds.termCols[names[j]] = []int{j}
	}

	return ds, nil
}

// expand returns the design columns for one variable.
func (ds *Design) expand(src ColumnSource, name, ref string) ([][]float64, []string, error) {

	col, err := src.Column(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDesign, err)
	}

	if !col.Cat {
		if ref != "" {
			return nil, nil, fmt.Errorf("%w: reference level given for numeric variable '%s'", ErrDesign, name)
		}
		return [][]float64{col.Num}, []string{name}, nil
	}

	lmap := make(map[string]bool)
	for _, v := range col.Levels {
		lmap[v] = true
	}
	var levels []string
	for v := range lmap {
		levels = append(levels, v)
	}
	sort.Strings(levels)

	if len(levels) < 2 {
		return nil, nil, fmt.Errorf("%w: categorical variable '%s' has fewer than two levels", ErrDesign, name)
	}

	if ref == "" {
		ref = levels[0]
	} else if !lmap[ref] {
		return nil, nil, fmt.Errorf("%w: reference level '%s' does not occur in '%s'", ErrDesign, ref, name)
	}
	ds.refLevels[name] = ref

	var cols [][]float64
	var names []string
	for _, lev := range levels {
		if lev == ref {
			continue
		}
		x := make([]float64, len(col.Levels))
		for i, v := range col.Levels {
			if v == lev {
				x[i] = 1
			}
		}
		cols = append(cols, x)
		names = append(names, fmt.Sprintf("%s[%s]", name, lev))
	}

	return cols, names, nil
}

// interact forms all pairwise products of the columns in a and b.
func interact(a [][]float64, anames []string, b [][]float64, bnames []string) ([][]float64, []string) {

	var cols [][]float64
	var names []string
	for i := range a {
		for j := range b {
			x := make([]float64, len(a[i]))
			floats.MulTo(x, a[i], b[j])
			cols = append(cols, x)
			names = append(names, anames[i]+":"+bnames[j])
		}
	}

	return cols, names
}

// NumObs returns the number of rows of the design matrix.
func (ds *Design) NumObs() int {
	return ds.nobs
}

// NumParams returns the number of columns of the design matrix.
func (ds *Design) NumParams() int {
	return len(ds.data)
}

// Names returns the column names.
func (ds *Design) Names() []string {
	return ds.names
}

// Terms returns the terms used to build the design.
func (ds *Design) Terms() []string {
	return ds.terms
}

// TermColumns returns the positions of the columns generated by a term.
func (ds *Design) TermColumns(term string) []int {
	return ds.termCols[term]
}

// RefLevels returns the reference level used for each categorical variable.
func (ds *Design) RefLevels() map[string]string {
	m := make(map[string]string, len(ds.refLevels))
	for k, v := range ds.refLevels {
		m[k] = v
	}
	return m
}

// Data returns the design columns.  The returned slices must not be
// modified.
func (ds *Design) Data() [][]float64 {
	return ds.data
}

// Row copies row i of the design into dst, which is allocated if too small.
func (ds *Design) Row(i int, dst []float64) []float64 {
	if cap(dst) < len(ds.data) {
		dst = make([]float64, len(ds.data))
	}
	dst = dst[0:len(ds.data)]
	for j, x := range ds.data {
		dst[j] = x[i]
	}
	return dst
}

// Means returns the mean of each design column.
func (ds *Design) Means() []float64 {
	mn := make([]float64, len(ds.data))
	if ds.nobs == 0 {
		return mn
	}
	for j, x := range ds.data {
		mn[j] = floats.Sum(x) / float64(ds.nobs)
	}
	return mn
}

// Vector returns a covariate vector with the given values for the named
// columns, and zero for all other columns.
func (ds *Design) Vector(values map[string]float64) ([]float64, error) {

	pos := make(map[string]int, len(ds.names))
	for j, na := range ds.names {
		pos[na] = j
	}

	z := make([]float64, len(ds.names))
	for na, v := range values {
		j, ok := pos[na]
		if !ok {
			return nil, fmt.Errorf("%w: no design column named '%s'", ErrDesign, na)
		}
		z[j] = v
	}

	return z, nil
}

// CheckRank returns an ErrDesign if the given columns are linearly
// dependent.  If center is true, the columns are mean-centered first, so
// that a constant column is also reported.  A column is flat when its
// centered values are within rounding error of zero relative to the
// magnitude of its raw values.
func CheckRank(data [][]float64, names []string, center bool) error {

	p := len(data)
	if p == 0 {
		return nil
	}
	n := len(data[0])

	if n < p {
		return fmt.Errorf("%w: %d columns but only %d rows", ErrDesign, p, n)
	}

	x := mat.NewDense(n, p, nil)
	var flat []string
	var maxnorm float64
	for j, col := range data {
		var mn float64
		if center {
			mn = floats.Sum(col) / float64(n)
		}
		var dev, mag float64
		for i, v := range col {
			x.Set(i, j, v-mn)
			dev = math.Max(dev, math.Abs(v-mn))
			mag = math.Max(mag, math.Abs(v))
		}
		if dev <= 1e-10*math.Max(1, mag) {
			flat = append(flat, names[j])
		}
		maxnorm = math.Max(maxnorm, floats.Norm(col, 2))
	}

	if len(flat) > 0 {
		return fmt.Errorf("%w: columns without variation: %s", ErrDesign, strings.Join(flat, ", "))
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDNone); !ok {
		return fmt.Errorf("%w: singular value decomposition failed", ErrDesign)
	}
	sv := svd.Values(nil)

	// Singular values are compared to the scale of the raw columns, since
	// centering can leave only rounding noise in a dependent direction.
	tol := maxnorm * float64(n) * 1e-12
	rank := 0
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}

	if rank < p {
		return fmt.Errorf("%w: design has rank %d but %d columns (%s)",
			ErrDesign, rank, p, strings.Join(names, ", "))
	}

	return nil
}
