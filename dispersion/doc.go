// Package dispersion manages the observed surface-wave dispersion dataset
// of an inversion run: loading raw measurements and the companion phase
// curve, restricting them to a usable frequency band, deriving the target
// subrange actually fitted, and persisting model-implied predictions.
//
// Files are plain text with '#' comment lines. A measurement file holds one
// sample per line, "frequency value [sigma]", frequencies strictly
// increasing; a missing sigma defaults to 1. A phase file holds
// "frequency phase" lines on exactly the same frequency grid.
//
// The flow mirrors the inversion driver: Load with the desired band,
// LoadPhase, InitTarget to clamp the desired band to what the data can
// support, then SetPredictions/SavePredictions once a model has been fit.
package dispersion
