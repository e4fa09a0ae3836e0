package engx

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	l, err := New("", "", Rotation{})
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestNewRejectsNothingForAnyKnownLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		l, err := New(level, "", Rotation{})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestEstimatorStatusDoesNotPanic(t *testing.T) {
	l, err := New("info", "", Rotation{})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		l.EstimatorStatus(7, 1200.5, 1199.9)
	})
}
