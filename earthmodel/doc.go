// Package earthmodel defines the layered earth model used by the surface-wave
// inversion: a stack of cells, each carrying polynomial coefficient rows for
// density, shear velocity, radial anisotropy and the Vp/Vs ratio, terminated
// by a zero-thickness halfspace cell.
//
// The package provides:
//
//   - Flatten / Unflatten — a deterministic, order-stable projection of the
//     structured model into a contiguous parameter vector (plus a parallel
//     free/fixed mask and an explicit parameter-type tag per entry), and the
//     lossless inverse. The flat ordering interleaves the four parameter
//     types per polynomial node, so Jacobian columns produced by a forward
//     evaluator stay aligned across calls.
//
//   - Promote — raising every cell to a higher polynomial order by padding
//     coefficient rows, used to refine a coarse reference model before
//     inversion.
//
//   - Load / Save — a plain-text layered-model file format, used to persist
//     both the initial and the final model state of a run.
//
// The Model is the single long-lived mutable entity of an inversion run: it
// is committed to (or restored) between iterations and read by the forward
// evaluator. The package itself performs no synchronization.
package earthmodel
