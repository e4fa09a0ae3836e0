// Package inspector implements the per-channel DSP pipeline instance:
// construction from a channel and an upstream sample rate, the carrier/AGC/
// symbol-timing sample-feed loop, and the Created→Running→Halting→Halted
// lifecycle every control operation and worker dispatch observes.
package inspector

import (
	"math"
	"sync/atomic"

	"github.com/rf-tools/chanspector/dsp"
)

// AGC time constants, expressed as fractions of the symbol period tau.
const (
	agcFastRiseFrac = 0.39062
	agcFastFallFrac = 0.78124
	agcSlowRiseFrac = 3.9062
	agcSlowFallFrac = 7.8124
	agcHangMaxFrac  = 0.19531
	agcBufFrac      = 0.39072

	costasOrder    = 3
	costasGainMult = 1e-2
	smoothingAlpha = 1e-4
)

// tuning holds the carrier-recovery fields SetParams derives from Params:
// the symbol period and the static phase rotor. Both are read once per
// FeedBulk call by the worker and written by the analyzer goroutine, so,
// like Params itself, they are published via an atomic pointer swap rather
// than mutated in place. NCO frequency gets the same treatment inside the
// NCO type itself, since it is the third field SetParams derives.
type tuning struct {
	symPeriod float64
	phase     complex64
}

// TaskState is a worker's cursor into the shared sample ring. It is
// opaque to the inspector itself; the worker callback package populates
// Cursor with whatever the bound Consumer needs to resume where it left
// off.
type TaskState struct {
	Bound  bool
	Cursor any

	// EstimatorSeen counts input samples fed since the last estimator push
	// (worker-owned only, like Cursor; no synchronization needed).
	EstimatorSeen uint32
}

// Inspector is a per-channel DSP pipeline instance. Its DSP sub-state
// (detectors, NCO, AGC, Costas loops) is touched only by the single worker
// holding it at a time; its Params are published by the analyzer and read
// by that worker via an atomic pointer swap.
type Inspector struct {
	state stateBox

	facBaud *dsp.ChannelDetector
	nlnBaud *dsp.ChannelDetector
	lo      *dsp.NCO
	agc     *dsp.AGC
	costas2 *dsp.Costas
	costas4 *dsp.Costas

	params atomic.Pointer[Params]
	tune   atomic.Pointer[tuning]

	sampRate float64

	symPhase         float64
	symLastSample    complex64
	symSamplerOutput complex64
	symNewSample     bool

	Task TaskState
}

// New constructs an inspector for channel, tuned against an upstream source
// running at sourceSampRate: two baud detectors, a mixing NCO, an AGC sized
// off the channel's symbol period, and one Costas loop per PSK order. On
// any allocation/init failure it tears down whatever sub-objects it had
// already created and returns an error.
func New(sourceSampRate float64, channel dsp.Channel) (*Inspector, error) {
	const windowSize = 4096 // matches the upstream source's buffer size

	detParams := dsp.ChannelDetectorParams{
		SampRate:   sourceSampRate,
		WindowSize: windowSize,
		Alpha:      smoothingAlpha,
	}

	facParams := detParams
	facParams.Mode = dsp.BaudModeAutocorrelation
	fac, err := dsp.NewChannelDetector(facParams)
	if err != nil {
		return nil, err
	}

	nlnParams := detParams
	nlnParams.Mode = dsp.BaudModeNonlinearDiff
	nln, err := dsp.NewChannelDetector(nlnParams)
	if err != nil {
		fac.Destroy()
		return nil, err
	}

	lo := dsp.NewNCO(0)

	tau := sourceSampRate / channel.BandwidthHz
	bufLen := int(math.Round(tau * agcBufFrac))
	if bufLen < 1 {
		bufLen = 1
	}
	agc, err := dsp.NewAGC(dsp.AGCParams{
		FastRise: tau * agcFastRiseFrac,
		FastFall: tau * agcFastFallFrac,
		SlowRise: tau * agcSlowRiseFrac,
		SlowFall: tau * agcSlowFallFrac,
		HangMax:  tau * agcHangMaxFrac,
		DelayLen: bufLen,
		MagLen:   bufLen,
	})
	if err != nil {
		fac.Destroy()
		nln.Destroy()
		return nil, err
	}

	omega := dsp.Normalize(sourceSampRate, channel.BandwidthHz)
	loopGain := costasGainMult * omega

	costas2, err := dsp.NewCostas(dsp.CostasBPSK, 0, omega, costasOrder, loopGain)
	if err != nil {
		fac.Destroy()
		nln.Destroy()
		agc.Finalize()
		return nil, err
	}
	costas4, err := dsp.NewCostas(dsp.CostasQPSK, 0, omega, costasOrder, loopGain)
	if err != nil {
		fac.Destroy()
		nln.Destroy()
		agc.Finalize()
		costas2.Finalize()
		return nil, err
	}

	insp := &Inspector{
		facBaud:  fac,
		nlnBaud:  nln,
		lo:       lo,
		agc:      agc,
		costas2:  costas2,
		costas4:  costas4,
		sampRate: sourceSampRate,
	}
	insp.params.Store(&Params{})
	insp.tune.Store(&tuning{phase: 1})
	return insp, nil
}

// Destroy finalizes every sub-DSP object in reverse construction order. It
// is only legal to call Destroy when State() is Created or Halted.
func (i *Inspector) Destroy() {
	i.costas4.Finalize()
	i.costas2.Finalize()
	i.agc.Finalize()
	i.nlnBaud.Destroy()
	i.facBaud.Destroy()
}

// State returns the inspector's current lifecycle stage.
func (i *Inspector) State() State { return i.state.Load() }

// Advance moves the inspector's lifecycle state forward, refusing any
// transition that would not strictly increase it.
func (i *Inspector) Advance(next State) bool { return i.state.Advance(next) }

// Params returns the currently published parameter set. Never nil.
func (i *Inspector) Params() *Params { return i.params.Load() }

// SetParams publishes a new parameter set and recomputes the derived
// sampler/carrier state:
//
//	sym_period = 1 / normalize_baud(fs, baud)   if baud > 0, else 0
//	NCO frequency = normalize(fs, fc_off)
//	phase = exp(i * fc_phi)
func (i *Inspector) SetParams(p Params) {
	var symPeriod float64
	if p.Baud > 0 {
		symPeriod = i.sampRate / float64(p.Baud)
	}
	i.lo.SetFreq(dsp.Normalize(i.sampRate, float64(p.FCOffsetHz)))
	phase := complex64(complex(math.Cos(float64(p.FCPhase)), math.Sin(float64(p.FCPhase))))
	i.tune.Store(&tuning{symPeriod: symPeriod, phase: phase})
	i.params.Store(&p)
}

// symPeriodValue returns the currently published samples-per-symbol value, 0 when
// the sampler is disabled. Exposed for tests; FeedBulk reads it via the
// tuning snapshot it loads once per call.
func (i *Inspector) symPeriodValue() float64 { return i.tune.Load().symPeriod }

// FacBaud returns the autocorrelation-mode detector's current baud estimate.
func (i *Inspector) FacBaud() float64 { return i.facBaud.Baud() }

// NlnBaud returns the nonlinear-diff-mode detector's current baud estimate.
func (i *Inspector) NlnBaud() float64 { return i.nlnBaud.Baud() }

// SampRate returns the upstream sample rate this inspector was built for.
func (i *Inspector) SampRate() float64 { return i.sampRate }
