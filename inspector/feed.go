package inspector

import "errors"

// ErrDspFeed is returned by FeedBulk when a DSP sub-object's feed step
// fails. The sample-feed pipeline treats any such failure as fatal to the
// current FeedBulk call: the consumed count reported is not increased for
// the failing sample.
var ErrDspFeed = errors.New("inspector: dsp feed failure")

// FeedBulk runs the per-sample pipeline — baud detectors, carrier mixing,
// AGC, carrier-recovery dispatch, fractional symbol sampler — over samples,
// stopping as soon as one symbol sample has been produced (or the whole
// buffer is consumed), and returns how many input samples were consumed.
// It loads the inspector's published Params once at the start of the call:
// since the call returns at the very next symbol boundary, parameter
// changes take effect exactly at symbol boundaries without any additional
// synchronization.
func (i *Inspector) FeedBulk(samples []complex64) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	params := i.Params()
	tune := i.tune.Load()
	i.symNewSample = false

	consumed := 0
	for _, x := range samples {
		if err := i.facBaud.Feed(x); err != nil {
			return consumed, ErrDspFeed
		}
		if err := i.nlnBaud.Feed(x); err != nil {
			return consumed, ErrDspFeed
		}

		detX := i.facBaud.LastWindowSample()

		// Carrier mixing: det_x <- det_x * conj(NCO.read()) * phase.
		nco := i.lo.Read()
		detX = detX * complexConj64(nco) * tune.phase

		// AGC: det_x <- 2 * AGC.feed(det_x) * sqrt(2).
		detX = scale64(i.agc.Feed(detX), 2*sqrt2)

		// Carrier recovery dispatch.
		var sample complex64
		switch params.FCControl {
		case FCCostas2:
			i.costas2.Feed(detX)
			sample = i.costas2.Y()
		case FCCostas4:
			i.costas4.Feed(detX)
			sample = i.costas4.Y()
		default:
			sample = detX
		}

		i.stepSampler(params, tune, sample)

		i.symLastSample = sample
		consumed++

		if i.symNewSample {
			break
		}
	}

	return consumed, nil
}

// NewSample reports whether the most recent FeedBulk call produced a
// symbol sample.
func (i *Inspector) NewSample() bool { return i.symNewSample }

// SamplerOutput returns the symbol sample emitted by the most recent
// FeedBulk call. Only meaningful when NewSample() is true.
func (i *Inspector) SamplerOutput() complex64 { return i.symSamplerOutput }

const sqrt2 = 1.4142135623730951

// stepSampler is the fractional symbol sampler: it advances the phase
// accumulator one sample and, when the accumulator lands inside the
// user-chosen sampling window, emits a linearly interpolated symbol sample.
// Active only when the symbol period is at least one sample.
func (i *Inspector) stepSampler(params *Params, tune *tuning, sample complex64) {
	if tune.symPeriod < 1 {
		return
	}

	i.symPhase++
	if i.symPhase >= tune.symPeriod {
		i.symPhase -= tune.symPeriod
	}

	target := float64(params.SymPhase) * tune.symPeriod
	delta := i.symPhase - target
	if int(floor(delta)) != 0 {
		return
	}

	alpha := i.symPhase - floor(i.symPhase)
	i.symSamplerOutput = scale64(
		complex64(complex(
			(1-alpha)*float64(real(i.symLastSample))+alpha*float64(real(sample)),
			(1-alpha)*float64(imag(i.symLastSample))+alpha*float64(imag(sample)),
		)),
		0.5,
	)
	i.symNewSample = true
}

func complexConj64(x complex64) complex64 {
	return complex(real(x), -imag(x))
}

func scale64(x complex64, s float64) complex64 {
	return complex64(complex(float64(real(x))*s, float64(imag(x))*s))
}

func floor(v float64) float64 {
	f := float64(int64(v))
	if v < 0 && f != v {
		f--
	}
	return f
}
