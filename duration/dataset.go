package duration

import (
	"fmt"
	"math"
	"sort"

	"github.com/kshedden/survstat/statmodel"
)

// Observation is a single right censored record.  Status is 1 if the event
// was observed at Time and 0 if the record is censored at Time.
type Observation struct {
	Time       float64
	Status     float64
	Covariates []statmodel.Value
}

// Event reports whether the event of interest was observed.
func (o Observation) Event() bool {
	return o.Status == 1
}

// SurvData is an immutable collection of right censored observations with
// an index of the distinct event times.
type SurvData struct {

	// The observations, in the order provided by the caller
	obs []Observation

	// Covariate names, in the order of Observation.Covariates
	names []string

	// Position of each covariate name
	pos map[string]int

	// All observed times, sorted
	sortedTimes []float64

	// The sorted distinct times at which events occur
	etimes []float64

	// Number of events and censorings at each distinct time
	events map[float64]int
	censor map[float64]int

	nevent int
}

// Stratum is the subset of a SurvData having one level of a stratifying
// variable.
type Stratum struct {
	Level string
	Data  *SurvData
}

// NewSurvData validates the given observations and returns a dataset
// holding copies of them.  If names is nil the covariates are named x1,
// x2, etc.  Errors wrap statmodel.ErrDataValidation.
func NewSurvData(obs []Observation, names []string) (*SurvData, error) {

	p := len(names)
	if names == nil && len(obs) > 0 {
		p = len(obs[0].Covariates)
		names = make([]string, p)
		for j := range names {
			names[j] = fmt.Sprintf("x%d", j+1)
		}
	}

	sd := &SurvData{
		obs:    make([]Observation, len(obs)),
		names:  append([]string(nil), names...),
		pos:    make(map[string]int),
		events: make(map[float64]int),
		censor: make(map[float64]int),
	}

	for j, na := range sd.names {
		if _, ok := sd.pos[na]; ok {
			return nil, fmt.Errorf("%w: duplicated covariate name '%s'", statmodel.ErrDataValidation, na)
		}
		sd.pos[na] = j
	}

	for i, o := range obs {
		if err := sd.check(i, o); err != nil {
			return nil, err
		}
		sd.obs[i] = Observation{
			Time:       o.Time,
			Status:     o.Status,
			Covariates: append([]statmodel.Value(nil), o.Covariates...),
		}
	}

	sd.index()

	return sd, nil
}

func (sd *SurvData) check(i int, o Observation) error {

	if math.IsNaN(o.Time) || math.IsInf(o.Time, 0) {
		return fmt.Errorf("%w: record %d has non-finite time %v", statmodel.ErrDataValidation, i, o.Time)
	}
	if o.Time <= 0 {
		return fmt.Errorf("%w: record %d has non-positive time %v", statmodel.ErrDataValidation, i, o.Time)
	}
	if o.Status != 0 && o.Status != 1 {
		return fmt.Errorf("%w: record %d has status %v, status must be 0 or 1",
			statmodel.ErrDataValidation, i, o.Status)
	}
	if len(o.Covariates) != len(sd.names) {
		return fmt.Errorf("%w: record %d has %d covariates, expected %d",
			statmodel.ErrDataValidation, i, len(o.Covariates), len(sd.names))
	}

	for j, v := range o.Covariates {
		if i > 0 && v.IsCategorical() != sd.obs[0].Covariates[j].IsCategorical() {
			return fmt.Errorf("%w: covariate '%s' mixes numeric and categorical values (record %d)",
				statmodel.ErrDataValidation, sd.names[j], i)
		}
		if !v.IsCategorical() {
			x := v.Float()
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: covariate '%s' is not finite in record %d",
					statmodel.ErrDataValidation, sd.names[j], i)
			}
		}
	}

	return nil
}

func (sd *SurvData) index() {

	sd.sortedTimes = make([]float64, len(sd.obs))
	for i, o := range sd.obs {
		sd.sortedTimes[i] = o.Time
		if o.Event() {
			sd.events[o.Time]++
			sd.nevent++
		} else {
			sd.censor[o.Time]++
		}
	}
	sort.Float64s(sd.sortedTimes)

	for t := range sd.events {
		sd.etimes = append(sd.etimes, t)
	}
	sort.Float64s(sd.etimes)
}

// NumObs returns the number of observations.
func (sd *SurvData) NumObs() int {
	return len(sd.obs)
}

// NumEvents returns the number of observations with an observed event.
func (sd *SurvData) NumEvents() int {
	return sd.nevent
}

// Names returns the covariate names.
func (sd *SurvData) Names() []string {
	return append([]string(nil), sd.names...)
}

// EventTimes returns the distinct event times in increasing order.
func (sd *SurvData) EventTimes() []float64 {
	return append([]float64(nil), sd.etimes...)
}

// NumRisk returns the number of observations at risk at time t, i.e. the
// number with time at least t.
func (sd *SurvData) NumRisk(t float64) int {
	return len(sd.sortedTimes) - sort.SearchFloat64s(sd.sortedTimes, t)
}

// Ties returns the number of events and the number of censorings occurring
// exactly at time t.
func (sd *SurvData) Ties(t float64) (int, int) {
	return sd.events[t], sd.censor[t]
}

// Time returns the event or censoring time of observation i.
func (sd *SurvData) Time(i int) float64 {
	return sd.obs[i].Time
}

// Status returns the status of observation i.
func (sd *SurvData) Status(i int) float64 {
	return sd.obs[i].Status
}

// Observation returns a copy of observation i.
func (sd *SurvData) Observation(i int) Observation {
	o := sd.obs[i]
	o.Covariates = append([]statmodel.Value(nil), o.Covariates...)
	return o
}

// Times returns the event or censoring times, in the original order.
func (sd *SurvData) Times() []float64 {
	x := make([]float64, len(sd.obs))
	for i, o := range sd.obs {
		x[i] = o.Time
	}
	return x
}

// Statuses returns the status values, in the original order.
func (sd *SurvData) Statuses() []float64 {
	x := make([]float64, len(sd.obs))
	for i, o := range sd.obs {
		x[i] = o.Status
	}
	return x
}

// Column returns the named covariate as a column, for use in building a
// design matrix.
func (sd *SurvData) Column(name string) (statmodel.Column, error) {

	j, ok := sd.pos[name]
	if !ok {
		return statmodel.Column{}, fmt.Errorf("covariate '%s' not found in dataset", name)
	}

	col := statmodel.Column{Name: name}
	if len(sd.obs) > 0 && sd.obs[0].Covariates[j].IsCategorical() {
		col.Cat = true
		col.Levels = make([]string, len(sd.obs))
		for i, o := range sd.obs {
			col.Levels[i] = o.Covariates[j].Str()
		}
		return col, nil
	}

	col.Num = make([]float64, len(sd.obs))
	for i, o := range sd.obs {
		col.Num[i] = o.Covariates[j].Float()
	}

	return col, nil
}

// Filter returns a new dataset containing the observations for which keep
// returns true.
func (sd *SurvData) Filter(keep func(Observation) bool) (*SurvData, error) {

	var obs []Observation
	for i := range sd.obs {
		o := sd.Observation(i)
		if keep(o) {
			obs = append(obs, o)
		}
	}

	return NewSurvData(obs, sd.names)
}

// Strata partitions the dataset by the values of the named covariate.  The
// strata are ordered by level, numerically for a numeric covariate.
func (sd *SurvData) Strata(name string) ([]Stratum, error) {

	j, ok := sd.pos[name]
	if !ok {
		return nil, fmt.Errorf("%w: stratifying variable '%s' not found", statmodel.ErrDataValidation, name)
	}

	groups := make(map[string][]Observation)
	var levels []string
	numeric := make(map[string]float64)
	for i := range sd.obs {
		o := sd.Observation(i)
		v := o.Covariates[j]
		lev := v.Str()
		if _, ok := groups[lev]; !ok {
			levels = append(levels, lev)
			if !v.IsCategorical() {
				numeric[lev] = v.Float()
			}
		}
		groups[lev] = append(groups[lev], o)
	}

	sort.Slice(levels, func(a, b int) bool {
		if len(numeric) > 0 {
			return numeric[levels[a]] < numeric[levels[b]]
		}
		return levels[a] < levels[b]
	})

	strata := make([]Stratum, len(levels))
	for i, lev := range levels {
		da, err := NewSurvData(groups[lev], sd.names)
		if err != nil {
			return nil, err
		}
		strata[i] = Stratum{Level: lev, Data: da}
	}

	return strata, nil
}

// timeTable returns the sorted distinct times (event or censoring), with
// the number of events, the number of censorings, and the number at risk
// at each time.
func (sd *SurvData) timeTable() ([]float64, []float64, []float64, []float64) {

	total := make(map[float64]float64)
	for t, n := range sd.events {
		total[t] += float64(n)
	}
	for t, n := range sd.censor {
		total[t] += float64(n)
	}

	times := make([]float64, 0, len(total))
	for t := range total {
		times = append(times, t)
	}
	sort.Float64s(times)

	nevents := make([]float64, len(times))
	ncensor := make([]float64, len(times))
	nrisk := make([]float64, len(times))
	for i, t := range times {
		nevents[i] = float64(sd.events[t])
		ncensor[i] = float64(sd.censor[t])
		nrisk[i] = total[t]
	}
	rollback(nrisk)

	return times, nevents, ncensor, nrisk
}

// rollback replaces x with its reversed cumulative sums.
func rollback(x []float64) {
	var z float64
	for i := len(x) - 1; i >= 0; i-- {
		z += x[i]
		x[i] = z
	}
}
