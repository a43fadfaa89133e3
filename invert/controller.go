package invert

import (
	"fmt"

	"github.com/katalvlaran/waveinv/earthmodel"
	"github.com/katalvlaran/waveinv/forward"
)

// Controller owns one inversion run: the mutable structured model, the
// immutable reference vector with its mask and type tags, the diagonal
// model covariance, and the two step strategies with their independent,
// persistent step sizes. Controllers are single-use and not safe for
// concurrent use; multiple runs need separate Controller values.
type Controller struct {
	eval  forward.Evaluator
	model *earthmodel.Model
	opts  Options

	reference []float64
	mask      []int
	types     []earthmodel.ParamType
	modelCov  []float64

	steps [2]Stepper
	eps   [2]float64
}

// strategy slots; alternation indexes by iteration parity.
const (
	slotGradient    = 0
	slotQuasiNewton = 1
)

// New prepares an inversion run. The reference model supplies the prior
// vector, mask and type tags; model is the working state mutated in place
// across the run (commonly a clone of the reference). New fails if the two
// disagree in layout or the starting state already violates the prior
// bounds, which would leave the validation retry loop without a fixed
// point.
func New(eval forward.Evaluator, model, reference *earthmodel.Model, opts Options) (*Controller, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ref, mask, types, err := earthmodel.Flatten(reference)
	if err != nil {
		return nil, err
	}
	start, _, _, err := earthmodel.Flatten(model)
	if err != nil {
		return nil, err
	}
	if len(start) != len(ref) {
		return nil, ErrDimensionMismatch
	}
	if !Validate(start, mask, types, opts.Bounds) {
		return nil, ErrStartOutOfBounds
	}

	return &Controller{
		eval:      eval,
		model:     model,
		opts:      opts,
		reference: ref,
		mask:      mask,
		types:     types,
		modelCov:  NewModelCovariance(types, opts.Damping),
		steps:     [2]Stepper{GradientStep{}, QuasiNewtonStep{}},
		eps:       [2]float64{opts.Epsilon, opts.Epsilon},
	}, nil
}

// active returns the strategy slot for an iteration count.
func (c *Controller) active(iteration int) int {
	switch c.opts.Mode {
	case ModeGradientOnly:
		return slotGradient
	case ModeQuasiNewtonOnly:
		return slotQuasiNewton
	default:
		return iteration % 2
	}
}

// Run drives the state machine to a terminal status. Evaluator failures
// are fatal and abort the run with a wrapped error; prior-bound violations
// and step-computation failures are recovered by ε halving; objective
// regressions are recovered by backtracking.
func (c *Controller) Run() (Result, error) {
	res, err := c.eval.Evaluate(c.model)
	if err != nil {
		return Result{}, fmt.Errorf("invert: initial evaluation: %w", err)
	}
	out := Result{
		Status:           StatusIterating,
		InitialObjective: res.Objective,
		Objective:        res.Objective,
		EvaluatorCalls:   1,
	}

	for out.Iterations < c.opts.MaxIterations {
		m := c.active(out.Iterations)

		snapshot, _, _, err := earthmodel.Flatten(c.model)
		if err != nil {
			return out, err
		}

		proposed, ok := c.trialStep(m, snapshot, res)
		if !ok {
			out.Status = StatusStepTooSmall
			break
		}

		if err = earthmodel.Unflatten(proposed, c.model); err != nil {
			return out, err
		}
		lastObjective := out.Objective
		if res, err = c.eval.Evaluate(c.model); err != nil {
			return out, fmt.Errorf("invert: evaluation after step: %w", err)
		}
		out.EvaluatorCalls++
		out.Objective = res.Objective

		if out.Objective > lastObjective {
			// Divergent step. Give up below the floor, otherwise shrink,
			// restore the pre-step state and re-evaluate it so the next
			// trial starts from refreshed sensitivities.
			if c.eps[m] < c.opts.EpsilonMin {
				out.Status = StatusStepTooSmall
				break
			}
			c.eps[m] *= 0.5
			if err = earthmodel.Unflatten(snapshot, c.model); err != nil {
				return out, err
			}
			if res, err = c.eval.Evaluate(c.model); err != nil {
				return out, fmt.Errorf("invert: evaluation after restore: %w", err)
			}
			out.EvaluatorCalls++
			out.Objective = res.Objective
			c.observe(out.Iterations, m, out.Objective, true)
			continue
		}

		// Equal objective counts as acceptance to avoid stalling on
		// plateaus.
		improvement := lastObjective - out.Objective
		out.Iterations++
		c.observe(out.Iterations, m, out.Objective, false)

		if c.opts.Tolerance > 0 && improvement <= c.opts.Tolerance {
			out.Status = StatusConverged
			break
		}
	}

	if out.Status == StatusIterating {
		out.Status = StatusMaxIterReached
	}
	return out, nil
}

// trialStep runs the inner retry loop: propose at the strategy's current ε,
// validate, halve on rejection. A step-computation failure is handled the
// same way, except that once ε sits below the floor the run gives up
// (ok=false) instead of retrying forever on e.g. a persistently singular
// system.
func (c *Controller) trialStep(m int, snapshot []float64, res forward.Result) ([]float64, bool) {
	for {
		proposed, err := c.steps[m].Step(StepInput{
			Epsilon:   c.eps[m],
			DataCov:   res.DataCov,
			ModelCov:  c.modelCov,
			Residuals: res.Residuals,
			Jacobian:  res.Jacobian,
			Gradient:  res.Gradient,
			Mask:      c.mask,
			Current:   snapshot,
			Reference: c.reference,
		})
		if err != nil {
			if c.eps[m] < c.opts.EpsilonMin {
				return nil, false
			}
			c.eps[m] *= 0.5
			continue
		}
		if Validate(proposed, c.mask, c.types, c.opts.Bounds) {
			return proposed, true
		}
		c.eps[m] *= 0.5
	}
}

// observe invokes the optional iteration callback.
func (c *Controller) observe(iteration, m int, objective float64, backtracked bool) {
	if c.opts.OnIteration == nil {
		return
	}
	c.opts.OnIteration(IterationInfo{
		Iteration:   iteration,
		Strategy:    c.steps[m].Name(),
		Objective:   objective,
		Epsilon:     c.eps[m],
		Backtracked: backtracked,
	})
}
