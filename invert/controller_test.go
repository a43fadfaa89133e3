package invert_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/waveinv/earthmodel"
	"github.com/katalvlaran/waveinv/forward"
	"github.com/katalvlaran/waveinv/invert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfspace builds a single-cell, order-0 model: four free parameters.
func halfspace() *earthmodel.Model {
	return &earthmodel.Model{Cells: []earthmodel.Cell{{
		Thickness: 0,
		Coeff: [earthmodel.NumParamTypes][]float64{
			{2700}, {3500}, {1.0}, {1.75},
		},
	}}}
}

// testDamping keeps every parameter type soft with plausible scales.
var testDamping = invert.DampingVector{50, 100, 0.05, 0.05}

// linearEvaluator builds a Linearized evaluator whose data are the flat
// parameters themselves (identity Jacobian), observed at a small offset
// from the reference. Both strategies then converge in one step each.
func linearEvaluator(t *testing.T) *forward.Linearized {
	t.Helper()
	ev, err := forward.NewLinearized(forward.LinearizedConfig{
		Reference:       halfspace(),
		Observed:        []float64{2710, 3510, 1.02, 1.76},
		BasePredictions: []float64{2700, 3500, 1.0, 1.75},
		Jacobian: mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		DataCov:   []float64{1, 1, 1, 1},
		Damping:   [earthmodel.NumParamTypes]float64(testDamping),
		Posterior: true,
	})
	require.NoError(t, err)
	return ev
}

// newOptions returns run options shared by the loop scenarios.
func newOptions() invert.Options {
	opts := invert.DefaultOptions()
	opts.Damping = testDamping
	return opts
}

// strategyRecorder collects the strategy names of accepted steps and the
// number of backtracks.
type strategyRecorder struct {
	accepted   []string
	backtracks int
}

func (r *strategyRecorder) observe(info invert.IterationInfo) {
	if info.Backtracked {
		r.backtracks++
		return
	}
	r.accepted = append(r.accepted, info.Strategy)
}

// TestController_StrategyAlternation verifies accepted iterations 0,2,4 use
// gradient descent and 1,3,5 quasi-Newton when no backtracking occurs.
func TestController_StrategyAlternation(t *testing.T) {
	rec := &strategyRecorder{}
	opts := newOptions()
	opts.MaxIterations = 4
	opts.OnIteration = rec.observe

	ctrl, err := invert.New(linearEvaluator(t), halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusMaxIterReached, res.Status)
	assert.Equal(t, 4, res.Iterations)
	assert.Zero(t, rec.backtracks)
	assert.Equal(t, []string{
		"gradient-descent", "quasi-newton",
		"gradient-descent", "quasi-newton",
	}, rec.accepted)
	// One evaluation per accepted step plus the initial one.
	assert.Equal(t, 5, res.EvaluatorCalls)
	assert.Less(t, res.Objective, res.InitialObjective)
}

// TestController_ModePinning verifies the explicit fixed-strategy modes.
func TestController_ModePinning(t *testing.T) {
	for mode, want := range map[invert.Mode]string{
		invert.ModeGradientOnly:    "gradient-descent",
		invert.ModeQuasiNewtonOnly: "quasi-newton",
	} {
		rec := &strategyRecorder{}
		opts := newOptions()
		opts.MaxIterations = 3
		opts.Mode = mode
		opts.OnIteration = rec.observe

		ctrl, err := invert.New(linearEvaluator(t), halfspace(), halfspace(), opts)
		require.NoError(t, err)
		_, err = ctrl.Run()
		require.NoError(t, err)

		require.Len(t, rec.accepted, 3, mode)
		for _, name := range rec.accepted {
			assert.Equal(t, want, name, mode)
		}
	}
}

// TestController_BoundedProgress verifies MaxIterations=1 accepts at most
// one step.
func TestController_BoundedProgress(t *testing.T) {
	opts := newOptions()
	opts.MaxIterations = 1

	ctrl, err := invert.New(linearEvaluator(t), halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusMaxIterReached, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 2, res.EvaluatorCalls)
}

// TestController_Convergence verifies a positive tolerance stops the run
// once an accepted step no longer improves the objective.
func TestController_Convergence(t *testing.T) {
	opts := newOptions()
	opts.MaxIterations = 50
	opts.Tolerance = 1.0

	ctrl, err := invert.New(linearEvaluator(t), halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	// The first gradient step removes ~100 of misfit; the quasi-Newton
	// step that follows improves by well under the tolerance.
	assert.Equal(t, invert.StatusConverged, res.Status)
	assert.Equal(t, 2, res.Iterations)
}

// worseningEvaluator reports a strictly worse objective on every call,
// driving the loop into endless backtracking.
type worseningEvaluator struct {
	calls int
}

func (w *worseningEvaluator) Evaluate(*earthmodel.Model) (forward.Result, error) {
	w.calls++
	return forward.Result{
		Objective: float64(w.calls),
		Residuals: []float64{0, 0, 0, 0},
		Jacobian:  mat.NewDense(4, 4, nil),
		Gradient:  []float64{1, 1, 1, 1},
		DataCov:   []float64{1, 1, 1, 1},
	}, nil
}

// TestController_BacktrackingTermination verifies an always-regressing
// evaluator drives the active ε below the floor and terminates in
// StatusStepTooSmall after ~log2(ε₀/floor) backtracks.
func TestController_BacktrackingTermination(t *testing.T) {
	opts := newOptions()
	opts.Mode = invert.ModeGradientOnly
	opts.Epsilon = 1.0
	opts.EpsilonMin = 1e-3
	opts.MaxIterations = 100

	ctrl, err := invert.New(&worseningEvaluator{}, halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusStepTooSmall, res.Status)
	assert.Zero(t, res.Iterations)
	// ε halves once per backtrack: 10 full backtracks bring 2⁻¹⁰ below
	// 1e-3, each costing a step evaluation plus a restore evaluation, and
	// the final trial costs one more. 1 + 10·2 + 1.
	assert.Equal(t, 22, res.EvaluatorCalls)
}

// plateauEvaluator reports the same objective forever.
type plateauEvaluator struct{}

func (plateauEvaluator) Evaluate(*earthmodel.Model) (forward.Result, error) {
	return forward.Result{
		Objective: 5,
		Residuals: []float64{0, 0, 0, 0},
		Jacobian:  mat.NewDense(4, 4, nil),
		Gradient:  []float64{0, 0, 0, 0},
		DataCov:   []float64{1, 1, 1, 1},
	}, nil
}

// TestController_EqualObjectiveAccepts verifies the plateau tie-break:
// equal objectives are accepted, so the run reaches the iteration cap
// instead of stalling.
func TestController_EqualObjectiveAccepts(t *testing.T) {
	opts := newOptions()
	opts.MaxIterations = 4

	ctrl, err := invert.New(plateauEvaluator{}, halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusMaxIterReached, res.Status)
	assert.Equal(t, 4, res.Iterations)
	assert.Equal(t, 5, res.EvaluatorCalls)
}

// nanGradientEvaluator reports a permanently non-finite gradient: every
// step computation fails.
type nanGradientEvaluator struct{}

func (nanGradientEvaluator) Evaluate(*earthmodel.Model) (forward.Result, error) {
	return forward.Result{
		Objective: 1,
		Residuals: []float64{0, 0, 0, 0},
		Jacobian:  mat.NewDense(4, 4, nil),
		Gradient:  []float64{math.NaN(), 0, 0, 0},
		DataCov:   []float64{1, 1, 1, 1},
	}, nil
}

// TestController_StepFailurePolicy verifies a persistent step-computation
// failure is not silently ignored: ε is halved like a bound violation and
// the run terminates in StatusStepTooSmall without extra evaluations.
func TestController_StepFailurePolicy(t *testing.T) {
	opts := newOptions()
	opts.Mode = invert.ModeGradientOnly
	opts.EpsilonMin = 1e-3

	ctrl, err := invert.New(nanGradientEvaluator{}, halfspace(), halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusStepTooSmall, res.Status)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, 1, res.EvaluatorCalls, "step failures must not cost evaluations")
}

// improvingEvaluator reports a strictly improving objective and a constant
// steep gradient, so the first admissible proposal is always accepted.
type improvingEvaluator struct {
	calls    int
	gradient []float64
}

func (e *improvingEvaluator) Evaluate(*earthmodel.Model) (forward.Result, error) {
	e.calls++
	return forward.Result{
		Objective: 100 / float64(e.calls),
		Residuals: []float64{0, 0, 0, 0},
		Jacobian:  mat.NewDense(4, 4, nil),
		Gradient:  append([]float64(nil), e.gradient...),
		DataCov:   []float64{1, 1, 1, 1},
	}, nil
}

// TestController_PriorBoundRetry verifies the inner validation loop: a
// proposal violating the shear-velocity ceiling shrinks ε until the step
// becomes admissible, all without spending evaluator calls.
func TestController_PriorBoundRetry(t *testing.T) {
	ev := &improvingEvaluator{gradient: []float64{0, -1e5, 0, 0}}
	opts := newOptions()
	opts.Mode = invert.ModeGradientOnly
	opts.MaxIterations = 1

	model := halfspace()
	ctrl, err := invert.New(ev, model, halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 2, res.EvaluatorCalls)
	// ε halves 1.0 → 0.0625 before 3500 + ε·1e5 fits under the 10000
	// ceiling.
	assert.InDelta(t, 9750, model.Cells[0].Coeff[earthmodel.ShearVelocity][0], 1e-9)
}

// TestController_ZeroDampingPinsToReference verifies hard priors across a
// full run: with all-zero damping no parameter ever leaves the reference.
func TestController_ZeroDampingPinsToReference(t *testing.T) {
	opts := invert.DefaultOptions()
	opts.MaxIterations = 3 // zero damping

	model := halfspace()
	ctrl, err := invert.New(linearEvaluator(t), model, halfspace(), opts)
	require.NoError(t, err)
	res, err := ctrl.Run()
	require.NoError(t, err)

	assert.Equal(t, invert.StatusMaxIterReached, res.Status)
	assert.Equal(t, 3, res.Iterations, "identity proposals plateau and are accepted")
	assert.Equal(t, halfspace(), model)
}

// TestController_StartOutOfBounds verifies construction rejects a starting
// model outside the priors.
func TestController_StartOutOfBounds(t *testing.T) {
	model := halfspace()
	model.Cells[0].Coeff[earthmodel.ShearVelocity][0] = 100 // below the 500 floor

	_, err := invert.New(linearEvaluator(t), model, halfspace(), newOptions())
	assert.ErrorIs(t, err, invert.ErrStartOutOfBounds)
}

// TestController_OptionValidation verifies Options invariants surface as
// ErrBadOptions.
func TestController_OptionValidation(t *testing.T) {
	bad := []func(*invert.Options){
		func(o *invert.Options) { o.Epsilon = 0 },
		func(o *invert.Options) { o.EpsilonMin = 0 },
		func(o *invert.Options) { o.MaxIterations = 0 },
		func(o *invert.Options) { o.Tolerance = -1 },
		func(o *invert.Options) { o.Mode = invert.Mode(42) },
		func(o *invert.Options) { o.Damping[0] = -1 },
		func(o *invert.Options) { o.Bounds.Min[0] = o.Bounds.Max[0] + 1 },
	}
	for i, mutate := range bad {
		opts := newOptions()
		mutate(&opts)
		_, err := invert.New(linearEvaluator(t), halfspace(), halfspace(), opts)
		assert.ErrorIs(t, err, invert.ErrBadOptions, "case %d", i)
	}
}
