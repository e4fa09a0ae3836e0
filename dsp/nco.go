package dsp

import (
	"math"
	"math/cmplx"
	"sync/atomic"
)

// NCO is a numerically-controlled oscillator: a discrete-time generator of
// unit-magnitude complex rotations at a fixed normalized frequency. Read is
// called once per sample by whichever worker owns the inspector; SetFreq is
// called from the analyzer goroutine on a params update. freq is therefore
// the one field shared across those two goroutines and is kept behind an
// atomic load/store so Read never torn-reads a frequency update.
type NCO struct {
	freqBits atomic.Uint64 // math.Float64bits(freq), radians/sample
	phase    float64       // radians, wrapped to (-pi, pi]; worker-owned only
}

// NewNCO initializes an oscillator at normalized frequency f (radians/sample).
func NewNCO(f float64) *NCO {
	n := &NCO{}
	n.freqBits.Store(math.Float64bits(f))
	return n
}

// Read advances the oscillator by one sample and returns its new rotation.
func (n *NCO) Read() complex64 {
	v := cmplx.Exp(complex(0, n.phase))
	n.phase += math.Float64frombits(n.freqBits.Load())
	if n.phase > math.Pi {
		n.phase -= 2 * math.Pi
	} else if n.phase < -math.Pi {
		n.phase += 2 * math.Pi
	}
	return complex64(v)
}

// SetFreq retunes the oscillator without resetting its phase.
func (n *NCO) SetFreq(fNorm float64) {
	n.freqBits.Store(math.Float64bits(fNorm))
}

// Freq returns the oscillator's current normalized frequency.
func (n *NCO) Freq() float64 {
	return math.Float64frombits(n.freqBits.Load())
}
