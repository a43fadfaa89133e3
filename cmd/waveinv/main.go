// Command waveinv estimates a layered earth model from observed Love-wave
// dispersion measurements by regularized iterative least-squares inversion.
//
// The run needs four inputs: the raw dispersion measurements, the companion
// phase curve, a reference layered model, and a sensitivity-kernel file
// holding base predictions, data covariance and the Jacobian evaluated
// externally at the reference model. It writes <output>.initial-model,
// <output>.initial-pred, <output>.model and <output>.pred.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/waveinv/dispersion"
	"github.com/katalvlaran/waveinv/earthmodel"
	"github.com/katalvlaran/waveinv/forward"
	"github.com/katalvlaran/waveinv/invert"
)

type runConfig struct {
	input     string
	phase     string
	reference string
	kernel    string
	output    string

	fmin float64
	fmax float64

	sigmaRho  float64
	sigmaVs   float64
	sigmaXi   float64
	sigmaVpVs float64

	order     int
	posterior bool

	epsilon    float64
	epsilonMin float64
	nsteps     int
	tolerance  float64
	mode       string

	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:           "waveinv",
		Short:         "Invert Love-wave dispersion measurements for a layered earth model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&cfg.input, "input", "i", "", "input dispersion measurement file (required)")
	fl.StringVarP(&cfg.phase, "phase", "C", "", "input phase-curve file (required)")
	fl.StringVarP(&cfg.reference, "reference", "r", "", "reference layered-model file (required)")
	fl.StringVarP(&cfg.kernel, "kernel", "k", "", "sensitivity-kernel file for the linearized evaluator (required)")
	fl.StringVarP(&cfg.output, "output", "o", "", "output path prefix (required)")

	fl.Float64VarP(&cfg.fmin, "fmin", "f", 1.0/40.0, "lower edge of the desired frequency band (Hz)")
	fl.Float64VarP(&cfg.fmax, "fmax", "F", 1.0/2.0, "upper edge of the desired frequency band (Hz)")

	fl.Float64VarP(&cfg.sigmaRho, "sigma-rho", "R", 0, "density prior std-dev; 0 fixes density to the reference")
	fl.Float64VarP(&cfg.sigmaVs, "sigma-vs", "V", 0, "shear velocity prior std-dev; 0 fixes vs to the reference")
	fl.Float64VarP(&cfg.sigmaXi, "sigma-xi", "X", 0, "anisotropy prior std-dev; 0 fixes xi to the reference")
	fl.Float64VarP(&cfg.sigmaVpVs, "sigma-vpvs", "S", 0, "vp/vs prior std-dev; 0 fixes vp/vs to the reference")

	fl.IntVarP(&cfg.order, "order", "p", 5, "polynomial order the reference model is promoted to")
	fl.BoolVarP(&cfg.posterior, "posterior", "Q", false, "include the Gaussian prior term in the objective")

	fl.Float64VarP(&cfg.epsilon, "epsilon", "e", invert.DefaultEpsilon, "initial step size of both strategies")
	fl.Float64Var(&cfg.epsilonMin, "epsilon-min", invert.DefaultEpsilonMin, "step-size floor before the run gives up")
	fl.IntVarP(&cfg.nsteps, "nsteps", "N", invert.DefaultMaxIterations, "maximum number of accepted iterations")
	fl.Float64VarP(&cfg.tolerance, "threshold", "t", 0, "objective-improvement convergence threshold; 0 disables")
	fl.StringVarP(&cfg.mode, "mode", "M", "alternate", "strategy schedule: alternate, gradient or quasi-newton")

	fl.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level")

	for _, name := range []string{"input", "phase", "reference", "kernel", "output"} {
		cobra.CheckErr(cmd.MarkFlagRequired(name))
	}
	return cmd
}

func parseMode(s string) (invert.Mode, error) {
	switch s {
	case "alternate":
		return invert.ModeAlternate, nil
	case "gradient":
		return invert.ModeGradientOnly, nil
	case "quasi-newton":
		return invert.ModeQuasiNewtonOnly, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want alternate, gradient or quasi-newton)", s)
	}
}

func run(cfg runConfig) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	mode, err := parseMode(cfg.mode)
	if err != nil {
		return err
	}

	data, err := dispersion.Load(cfg.input, cfg.fmin, cfg.fmax)
	if err != nil {
		return err
	}
	if err = data.LoadPhase(cfg.phase); err != nil {
		return err
	}
	logger.Info("desired band", "fmin", cfg.fmin, "fmax", cfg.fmax)
	lo, hi, err := data.InitTarget()
	if err != nil {
		return err
	}
	logger.Info("actual band", "fmin", lo, "fmax", hi, "samples", data.TargetLen())

	reference, err := earthmodel.Load(cfg.reference, true, cfg.order)
	if err != nil {
		return err
	}
	if err = reference.Save(cfg.output + ".initial-model"); err != nil {
		return err
	}

	kernel, err := forward.LoadKernel(cfg.kernel)
	if err != nil {
		return err
	}

	damping := invert.DampingVector{
		earthmodel.Density:       cfg.sigmaRho,
		earthmodel.ShearVelocity: cfg.sigmaVs,
		earthmodel.Anisotropy:    cfg.sigmaXi,
		earthmodel.VelocityRatio: cfg.sigmaVpVs,
	}

	evaluator, err := forward.NewLinearized(forward.LinearizedConfig{
		Reference:       reference,
		Observed:        data.TargetObs(),
		BasePredictions: kernel.BasePredictions,
		Jacobian:        kernel.Jacobian,
		DataCov:         kernel.DataCov,
		Damping:         [earthmodel.NumParamTypes]float64(damping),
		Posterior:       cfg.posterior,
	})
	if err != nil {
		return err
	}

	model := reference.Clone()

	pred, err := evaluator.Predict(model)
	if err != nil {
		return err
	}
	if err = data.SetPredictions(pred); err != nil {
		return err
	}
	if err = data.SavePredictions(cfg.output + ".initial-pred"); err != nil {
		return err
	}

	opts := invert.DefaultOptions()
	opts.Epsilon = cfg.epsilon
	opts.EpsilonMin = cfg.epsilonMin
	opts.MaxIterations = cfg.nsteps
	opts.Damping = damping
	opts.Mode = mode
	opts.Tolerance = cfg.tolerance
	opts.OnIteration = func(info invert.IterationInfo) {
		if info.Backtracked {
			logger.Debug("backtracking",
				"iteration", info.Iteration,
				"strategy", info.Strategy,
				"objective", info.Objective,
				"epsilon", info.Epsilon)
			return
		}
		logger.Info("accepted step",
			"iteration", info.Iteration,
			"strategy", info.Strategy,
			"objective", info.Objective,
			"epsilon", info.Epsilon)
	}

	ctrl, err := invert.New(evaluator, model, reference, opts)
	if err != nil {
		return err
	}
	result, err := ctrl.Run()
	if err != nil {
		return err
	}
	logger.Info("inversion finished",
		"status", result.Status.String(),
		"iterations", result.Iterations,
		"initial_objective", result.InitialObjective,
		"objective", result.Objective,
		"evaluations", result.EvaluatorCalls)

	if err = model.Save(cfg.output + ".model"); err != nil {
		return err
	}
	if pred, err = evaluator.Predict(model); err != nil {
		return err
	}
	if err = data.SetPredictions(pred); err != nil {
		return err
	}
	if err = data.SavePredictions(cfg.output + ".pred"); err != nil {
		return err
	}
	logger.Info("saved results",
		"model", cfg.output+".model",
		"predictions", cfg.output+".pred")
	return nil
}
