package dsp

import "math"

// AGCParams holds the filter's time constants (in samples) and
// history-buffer sizing, typically derived from the symbol period of the
// channel being leveled.
type AGCParams struct {
	FastRise float64
	FastFall float64
	SlowRise float64
	SlowFall float64
	HangMax  float64
	DelayLen int
	MagLen   int
}

// AGC is an automatic gain control filter: an asymmetric-rate envelope
// follower (distinct attack/release time constants for a fast and a slow
// tracker) with a hang timer that holds the slow tracker's peak during a
// transient so a single loud burst doesn't immediately desensitize the
// channel.
type AGC struct {
	params AGCParams

	fastEnv float64
	slowEnv float64
	hang    float64

	delay    []complex64
	delayPos int
	mags     []float64
	magPos   int
}

// NewAGC allocates and initializes an AGC filter. The delay line and
// magnitude history are sized from params.DelayLen/MagLen.
func NewAGC(params AGCParams) (*AGC, error) {
	if params.DelayLen <= 0 || params.MagLen <= 0 {
		return nil, ErrInvalidParams
	}
	return &AGC{
		params:  params,
		fastEnv: 1,
		slowEnv: 1,
		delay:   make([]complex64, params.DelayLen),
		mags:    make([]float64, params.MagLen),
	}, nil
}

func track(env, target, rise, fall float64) float64 {
	if target > env {
		if rise <= 0 {
			return target
		}
		return env + (target-env)/rise
	}
	if fall <= 0 {
		return target
	}
	return env + (target-env)/fall
}

// Feed pushes one sample through the filter and returns the gain-normalized
// output, delayed by the filter's internal delay line so the gain applied
// to a sample reflects magnitude history that includes it.
func (a *AGC) Feed(x complex64) complex64 {
	mag := cmplx128abs(x)

	a.mags[a.magPos] = mag
	a.magPos = (a.magPos + 1) % len(a.mags)
	peak := 0.0
	for _, m := range a.mags {
		if m > peak {
			peak = m
		}
	}

	if peak > a.slowEnv {
		a.hang = a.params.HangMax
	} else if a.hang > 0 {
		a.hang--
		peak = a.slowEnv
	}

	a.fastEnv = track(a.fastEnv, peak, a.params.FastRise, a.params.FastFall)
	a.slowEnv = track(a.slowEnv, peak, a.params.SlowRise, a.params.SlowFall)

	gain := 1.0
	ref := a.fastEnv
	if a.slowEnv > ref {
		ref = a.slowEnv
	}
	if ref > 1e-12 {
		gain = 1.0 / ref
	}

	delayed := a.delay[a.delayPos]
	a.delay[a.delayPos] = x
	a.delayPos = (a.delayPos + 1) % len(a.delay)

	re := float64(real(delayed)) * gain
	im := float64(imag(delayed)) * gain
	return complex64(complex(re, im))
}

// Finalize releases the filter's internal buffers.
func (a *AGC) Finalize() {
	a.delay = nil
	a.mags = nil
}

func cmplx128abs(x complex64) float64 {
	re, im := float64(real(x)), float64(imag(x))
	return math.Hypot(re, im)
}
