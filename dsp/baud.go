package dsp

import "math"

// BaudMode selects the estimator algorithm a ChannelDetector runs.
type BaudMode int

const (
	// BaudModeAutocorrelation estimates the symbol rate from a lag
	// autocorrelation of the raw complex input: the phase of each sample
	// times the conjugate of the oldest sample still in the window is
	// converted to a rate in Hz and smoothed.
	BaudModeAutocorrelation BaudMode = iota
	// BaudModeNonlinearDiff estimates the symbol rate from a nonlinearly
	// preprocessed signal: the sample-to-sample difference is squared as a
	// complex value, and the phase of that square is converted to a rate in
	// Hz and smoothed.
	BaudModeNonlinearDiff
)

// ChannelDetectorParams carries the sizing a ChannelDetector needs: sample
// rate and window size, both derived from the channel being inspected, plus
// the smoothing factor used to low-pass the estimate.
type ChannelDetectorParams struct {
	SampRate   float64
	WindowSize int
	Alpha      float64
	Mode       BaudMode
}

// ChannelDetector is a blind baud-rate detector: it windows its input and
// produces both a canonical pre-mixer sample (LastWindowSample) and a
// continuously-smoothed baud-rate estimate (Baud).
type ChannelDetector struct {
	params ChannelDetectorParams

	window    []complex64
	pos       int
	filled    bool
	lastX     complex64
	prevX     complex64
	baud      float64
	acc       float64
	phaseAcc  float64
	crossings int
	samples   int
}

// NewChannelDetector allocates a detector with the given parameters.
func NewChannelDetector(params ChannelDetectorParams) (*ChannelDetector, error) {
	if params.WindowSize <= 0 || params.SampRate <= 0 {
		return nil, ErrInvalidParams
	}
	return &ChannelDetector{
		params: params,
		window: make([]complex64, params.WindowSize),
	}, nil
}

// Feed pushes one sample into the detector's window and updates its running
// baud estimate. It never fails in this implementation; the error return
// exists because a substitute DSP backend's feed can fail on an internal
// allocation, and callers are written against that contract.
func (d *ChannelDetector) Feed(x complex64) error {
	d.window[d.pos] = x
	d.pos = (d.pos + 1) % len(d.window)
	if d.pos == 0 {
		d.filled = true
	}
	d.lastX = d.windowedSample()

	switch d.params.Mode {
	case BaudModeNonlinearDiff:
		d.feedNonlinearDiff(x)
	default:
		d.feedAutocorrelation(x)
	}
	d.prevX = x
	d.samples++
	return nil
}

// windowedSample is the detector's canonical pre-mixer output: the mean of
// the current window contents, i.e. a moving average over the last
// WindowSize raw samples (slots not yet written count as zero).
func (d *ChannelDetector) windowedSample() complex64 {
	var sum complex64
	for _, v := range d.window {
		sum += v
	}
	n := float32(len(d.window))
	return complex(real(sum)/n, imag(sum)/n)
}

// feedAutocorrelation converts the phase rotation of the raw complex signal
// across the window lag into a rate estimate.
func (d *ChannelDetector) feedAutocorrelation(x complex64) {
	lag := d.window[d.pos] // the sample one full window behind, pre-overwrite
	corr := x * complexConj(lag)
	angle := math.Atan2(float64(imag(corr)), float64(real(corr)))
	d.updateBaud(angle)
}

// feedNonlinearDiff differentiates the signal (which turns symbol
// transitions into impulses), squares it as a complex value to remove
// data-dependent sign, and converts the phase of the result into a rate
// estimate.
func (d *ChannelDetector) feedNonlinearDiff(x complex64) {
	diff := x - d.prevX
	sq := complex(real(diff)*real(diff)-imag(diff)*imag(diff), 2*real(diff)*imag(diff))
	angle := math.Atan2(float64(imag(sq)), float64(real(sq)))
	d.updateBaud(angle)
}

func (d *ChannelDetector) updateBaud(angleStep float64) {
	rate := math.Abs(angleStep) * d.params.SampRate / (2 * math.Pi)
	if d.samples == 0 {
		d.baud = rate
		return
	}
	d.baud = d.params.Alpha*rate + (1-d.params.Alpha)*d.baud
}

// LastWindowSample returns the windowed sample produced by the most recent
// Feed call.
func (d *ChannelDetector) LastWindowSample() complex64 {
	return d.lastX
}

// Baud returns the detector's current smoothed symbol-rate estimate, in Hz.
func (d *ChannelDetector) Baud() float64 {
	return d.baud
}

// SampRate returns the sample rate the detector was constructed with.
func (d *ChannelDetector) SampRate() float64 {
	return d.params.SampRate
}

// Destroy releases the detector's window buffer.
func (d *ChannelDetector) Destroy() {
	d.window = nil
}

func complexConj(x complex64) complex64 {
	return complex(real(x), -imag(x))
}
