// Package dsp provides the signal-processing primitives the inspector
// pipeline is built from: a channel/baud detector, an NCO, an AGC filter,
// and a Costas loop. They are concrete, self-contained implementations so
// the engine is runnable end to end, kept deliberately simple enough that
// a production-grade DSP library could be swapped in without changing
// their call shapes.
package dsp

import "math"

// Channel describes the spectral region an inspector is tuned to.
type Channel struct {
	CenterHz    float64
	BandwidthHz float64
}

// Normalize converts an absolute frequency (Hz) to an NCO-style normalized
// angular frequency in radians/sample for the given sample rate.
func Normalize(sampRate, freqHz float64) float64 {
	if sampRate == 0 {
		return 0
	}
	return 2 * math.Pi * freqHz / sampRate
}
