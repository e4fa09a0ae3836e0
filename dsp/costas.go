package dsp

import "math/cmplx"

// CostasKind selects the phase-detector nonlinearity: BPSK (2nd order
// symmetry) or QPSK (4th order symmetry).
type CostasKind int

const (
	CostasBPSK CostasKind = iota
	CostasQPSK
)

// Costas is an order-3 Costas loop: an NCO driven by a loop filter with a
// proportional and an integral term, locked to the phase error a
// kind-specific nonlinearity extracts from the rotated input.
type Costas struct {
	kind       CostasKind
	nco        *NCO
	loopGain   float64
	integrator float64
	y          complex64
}

// NewCostas initializes a loop starting at frequency f0 (radians/sample,
// the NCO's starting point) with the given loop gain. omega is accepted but
// not used: the loop's response is set by loopGain alone. order selects the
// loop filter order; this implementation supports only order 3
// (proportional + integral) and rejects anything else.
func NewCostas(kind CostasKind, f0, omega float64, order int, loopGain float64) (*Costas, error) {
	if order != 3 {
		return nil, ErrInvalidParams
	}
	return &Costas{
		kind:     kind,
		nco:      NewNCO(f0),
		loopGain: loopGain,
	}, nil
}

// Feed advances the loop by one sample. The de-rotated output is available
// from Y() afterward.
func (c *Costas) Feed(x complex64) {
	rot := c.nco.Read()
	y := x * complex64(cmplx.Conj(complex128(rot)))
	c.y = y

	err := c.phaseError(y)
	c.integrator += c.loopGain * err
	proportional := c.loopGain * err
	c.nco.SetFreq(c.nco.Freq() + proportional + c.integrator*0.01)
}

// Y returns the most recently produced de-rotated sample.
func (c *Costas) Y() complex64 {
	return c.y
}

// Finalize releases the loop's internal state.
func (c *Costas) Finalize() {
	c.nco = nil
}

// phaseError computes the kind-specific nonlinear phase-error estimate:
// sign(I)*Q for BPSK, and the four-quadrant QPSK analogue
// sign(I)*Q - sign(Q)*I.
func (c *Costas) phaseError(y complex64) float64 {
	re, im := float64(real(y)), float64(imag(y))
	switch c.kind {
	case CostasQPSK:
		return sign(re)*im - sign(im)*re
	default:
		return sign(re) * im
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
