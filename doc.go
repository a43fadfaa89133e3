// Package waveinv estimates layered earth models from surface-wave
// dispersion measurements by regularized iterative inversion.
//
// 🚀 What is waveinv?
//
//	A library plus CLI for fitting a polynomial layered model to an
//	observed Love-wave dispersion curve:
//		• Earth models: cells of polynomial coefficients for density,
//		  shear velocity, anisotropy and vp/vs, with fixed-cell masking
//		• Dispersion data: banded frequency/value/uncertainty curves with
//		  a companion phase grid
//		• Forward evaluation: a linearized Gaussian evaluator built from
//		  an externally computed sensitivity kernel
//		• Inversion: alternating gradient-descent / quasi-Newton steps
//		  with per-strategy step-size halving and backtracking
//
// ✨ Why choose waveinv?
//
//   - Deterministic – the same inputs always yield the same model
//   - Guarded – prior bounds, a step-size floor, and explicit sentinel
//     errors instead of NaN drift
//   - Extensible – swap the forward operator through a one-method
//     Evaluator interface
//
// Under the hood, everything is organized under four subpackages:
//
//	earthmodel/ — layered polynomial models, flattening, promotion & I/O
//	dispersion/ — dispersion curves, phase grids & frequency-band targeting
//	forward/    — the Evaluator contract and the linearized kernel evaluator
//	invert/     — the iteration controller and its two step strategies
//
// The cmd/waveinv command wires the four together: load a reference model
// and the measured curves, run the inversion, and persist the refined
// model with its initial and final predictions.
//
//	go get github.com/katalvlaran/waveinv
package waveinv
