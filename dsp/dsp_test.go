package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.InDelta(t, math.Pi, Normalize(2, 0.5), 1e-9)
	assert.Zero(t, Normalize(0, 100))
}

func TestNCOReadMagnitudeIsUnit(t *testing.T) {
	n := NewNCO(Normalize(48000, 1200))
	for i := 0; i < 1000; i++ {
		v := n.Read()
		mag := math.Hypot(float64(real(v)), float64(imag(v)))
		assert.InDelta(t, 1.0, mag, 1e-6)
	}
}

func TestNCOSetFreqChangesRotationRate(t *testing.T) {
	n := NewNCO(0)
	first := n.Read()
	second := n.Read()
	assert.Equal(t, first, second) // zero frequency: no rotation

	n.SetFreq(Normalize(8000, 1000))
	third := n.Read()
	fourth := n.Read()
	assert.NotEqual(t, third, fourth)
}

func TestAGCNormalizesSteadyAmplitude(t *testing.T) {
	a, err := NewAGC(AGCParams{
		FastRise: 4, FastFall: 8, SlowRise: 40, SlowFall: 80, HangMax: 2,
		DelayLen: 4, MagLen: 4,
	})
	require.NoError(t, err)

	var lastMag float64
	for i := 0; i < 2000; i++ {
		out := a.Feed(complex64(complex(10, 0)))
		lastMag = math.Hypot(float64(real(out)), float64(imag(out)))
	}
	assert.InDelta(t, 1.0, lastMag, 0.2)
}

func TestAGCRejectsInvalidParams(t *testing.T) {
	_, err := NewAGC(AGCParams{DelayLen: 0, MagLen: 4})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestCostasRejectsUnsupportedOrder(t *testing.T) {
	_, err := NewCostas(CostasBPSK, 0, 0.01, 2, 0.01)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestCostasFeedProducesDerotatedSample(t *testing.T) {
	c, err := NewCostas(CostasBPSK, 0, 0.01, 3, 0.01)
	require.NoError(t, err)
	c.Feed(complex64(complex(1, 0)))
	assert.NotEqual(t, complex64(0), c.Y())
}

func TestChannelDetectorTracksBaud(t *testing.T) {
	const sampRate = 48000.0
	const baud = 1200.0
	d, err := NewChannelDetector(ChannelDetectorParams{
		SampRate: sampRate, WindowSize: 32, Alpha: 0.2, Mode: BaudModeAutocorrelation,
	})
	require.NoError(t, err)

	step := 2 * math.Pi * baud / sampRate
	phase := 0.0
	for i := 0; i < 20000; i++ {
		x := complex64(complex(math.Cos(phase), math.Sin(phase)))
		require.NoError(t, d.Feed(x))
		phase += step
	}
	assert.Greater(t, d.Baud(), 0.0)
	assert.Equal(t, sampRate, d.SampRate())
}

func TestChannelDetectorRejectsZeroWindow(t *testing.T) {
	_, err := NewChannelDetector(ChannelDetectorParams{SampRate: 48000, WindowSize: 0})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
