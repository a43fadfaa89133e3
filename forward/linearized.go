package forward

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/waveinv/earthmodel"
)

// LinearizedConfig configures a Linearized evaluator.
//   - Reference: the expansion point m₀ of the linearization.
//   - Observed: the observed data values, one per kernel row.
//   - BasePredictions: forward predictions at m₀, one per kernel row.
//   - Jacobian: sensitivities at m₀, rows = observations, columns in
//     earthmodel.Flatten order.
//   - DataCov: diagonal data covariance, strictly positive.
//   - Damping: per-type prior standard deviations; zero marks a hard prior
//     whose parameter contributes no penalty term (it is pinned to the
//     reference by the step strategies instead).
//   - Posterior: include the Gaussian prior term in objective and gradient.
type LinearizedConfig struct {
	Reference       *earthmodel.Model
	Observed        []float64
	BasePredictions []float64
	Jacobian        *mat.Dense
	DataCov         []float64
	Damping         [earthmodel.NumParamTypes]float64
	Posterior       bool
}

// Linearized is an Evaluator built from a fixed base Jacobian: the exact
// negative log-likelihood (optionally log-posterior) of the linearized
// forward operator
//
//	d(m) = d(m₀) + G·(m − m₀).
//
// It is deterministic and cheap, which makes it the reference collaborator
// for driving and testing the inversion loop without wave physics.
type Linearized struct {
	ref      []float64
	types    []earthmodel.ParamType
	observed []float64
	basePred []float64
	jacobian *mat.Dense
	dataCov  []float64
	damping  [earthmodel.NumParamTypes]float64
	post     bool
}

// NewLinearized validates dimensions and builds the evaluator.
func NewLinearized(cfg LinearizedConfig) (*Linearized, error) {
	ref, _, types, err := earthmodel.Flatten(cfg.Reference)
	if err != nil {
		return nil, err
	}
	rows, cols := cfg.Jacobian.Dims()
	if cols != len(ref) || rows != len(cfg.Observed) ||
		rows != len(cfg.BasePredictions) || rows != len(cfg.DataCov) {
		return nil, ErrDimensionMismatch
	}
	for _, cd := range cfg.DataCov {
		if !(cd > 0) {
			return nil, ErrBadDataCovariance
		}
	}
	return &Linearized{
		ref:      ref,
		types:    types,
		observed: append([]float64(nil), cfg.Observed...),
		basePred: append([]float64(nil), cfg.BasePredictions...),
		jacobian: cfg.Jacobian,
		dataCov:  append([]float64(nil), cfg.DataCov...),
		damping:  cfg.Damping,
		post:     cfg.Posterior,
	}, nil
}

// Evaluate implements Evaluator.
func (l *Linearized) Evaluate(m *earthmodel.Model) (Result, error) {
	v, _, _, err := earthmodel.Flatten(m)
	if err != nil {
		return Result{}, err
	}
	if len(v) != len(l.ref) {
		return Result{}, ErrDimensionMismatch
	}

	n := len(v)
	nres := len(l.observed)

	delta := make([]float64, n)
	for i := range v {
		delta[i] = v[i] - l.ref[i]
	}

	// pred = basePred + G·delta
	var gd mat.VecDense
	gd.MulVec(l.jacobian, mat.NewVecDense(n, delta))

	residuals := make([]float64, nres)
	weighted := make([]float64, nres) // Cd⁻¹·r
	objective := 0.0
	for k := 0; k < nres; k++ {
		residuals[k] = l.observed[k] - (l.basePred[k] + gd.AtVec(k))
		weighted[k] = residuals[k] / l.dataCov[k]
		objective += 0.5 * residuals[k] * weighted[k]
	}

	// dL/dm = −Gᵗ·Cd⁻¹·r (+ Cm⁻¹·(m − m₀) under the posterior flag)
	var gt mat.VecDense
	gt.MulVec(l.jacobian.T(), mat.NewVecDense(nres, weighted))

	gradient := make([]float64, n)
	for i := 0; i < n; i++ {
		gradient[i] = -gt.AtVec(i)
	}
	if l.post {
		for i := 0; i < n; i++ {
			sd := l.damping[l.types[i]]
			if sd == 0 {
				continue
			}
			cm := sd * sd
			objective += 0.5 * delta[i] * delta[i] / cm
			gradient[i] += delta[i] / cm
		}
	}
	if math.IsNaN(objective) || math.IsInf(objective, 0) {
		return Result{}, fmt.Errorf("forward: non-finite objective: %v", objective)
	}

	return Result{
		Objective: objective,
		Residuals: residuals,
		Jacobian:  l.jacobian,
		Gradient:  gradient,
		DataCov:   append([]float64(nil), l.dataCov...),
	}, nil
}

// Predict returns the linearized forward predictions for a model state,
// one value per kernel row.
func (l *Linearized) Predict(m *earthmodel.Model) ([]float64, error) {
	v, _, _, err := earthmodel.Flatten(m)
	if err != nil {
		return nil, err
	}
	if len(v) != len(l.ref) {
		return nil, ErrDimensionMismatch
	}
	delta := make([]float64, len(v))
	for i := range v {
		delta[i] = v[i] - l.ref[i]
	}
	var gd mat.VecDense
	gd.MulVec(l.jacobian, mat.NewVecDense(len(v), delta))

	pred := make([]float64, len(l.basePred))
	for k := range pred {
		pred[k] = l.basePred[k] + gd.AtVec(k)
	}
	return pred, nil
}
