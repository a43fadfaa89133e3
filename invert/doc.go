// Package invert implements the regularized iterative least-squares
// optimizer at the heart of the surface-wave dispersion inversion.
//
// 🚀 What does it do?
//
//	Starting from a reference layered model, the controller repeatedly asks
//	a step strategy for a proposed parameter vector, enforces physical
//	admissibility against per-type prior bounds, commits accepted proposals
//	into the structured model, and re-invokes the forward evaluator to
//	decide whether the objective improved. Divergent steps are undone by a
//	backtracking line search on the strategy's step size.
//
// Algorithm outline (one outer iteration):
//
//  1. Select the active strategy: by iteration parity under ModeAlternate
//     (even → gradient descent, odd → quasi-Newton), or pinned under
//     ModeGradientOnly / ModeQuasiNewtonOnly. Each strategy owns its own
//     persistent step size ε across the whole run.
//  2. Snapshot the structured model into a flat parameter vector.
//  3. Inner retry: compute a proposal at the strategy's current ε and
//     validate it against the prior bounds; on rejection (or on a step
//     computation failure such as a singular normal system) halve that
//     strategy's ε and recompute.
//  4. Commit the accepted proposal and re-evaluate the forward model.
//  5. If the objective got strictly worse: terminate in StatusStepTooSmall
//     when ε is already below the floor, otherwise halve ε, restore the
//     snapshot, re-evaluate the restored state and retry without counting
//     an iteration. An equal objective counts as acceptance, so plateaus
//     never stall the run.
//  6. Stop at the configured iteration cap (StatusMaxIterReached), below
//     the step floor (StatusStepTooSmall), or — when a positive Tolerance
//     is configured — once an accepted step improves the objective by no
//     more than Tolerance (StatusConverged).
//
// Every accepted and every backtracked step costs a full forward
// evaluation; the restored state is deliberately re-evaluated rather than
// cached, so evaluator call counts are part of the observable behavior.
//
// The package is single-threaded: the structured model is the only shared
// resource and is mutated strictly in snapshot → propose → validate →
// commit → evaluate → accept-or-restore order.
//
// ⚙️ Usage:
//
//	ctrl, err := invert.New(evaluator, model, reference, invert.Options{
//	    Epsilon:       1.0,
//	    EpsilonMin:    1e-10,
//	    MaxIterations: 20,
//	    Damping:       invert.DampingVector{50, 100, 0.05, 0.05},
//	    Bounds:        invert.DefaultPriorBounds(),
//	    Mode:          invert.ModeAlternate,
//	})
//	if err != nil { ... }
//	result, err := ctrl.Run()
//
// See controller_test.go for loop-level scenarios and step_test.go for the
// two strategies in isolation.
package invert
