package mocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

func TestGenerateProducesValidCandles(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 500

	series := gen.Generate(config)
	require.Equal(t, 500, series.Len())
	assert.Equal(t, "TEST.NS", series.Symbol)
	assert.Equal(t, types.Timeframe1Min, series.Timeframe)

	prevTime := int64(0)

	for i := 0; i < series.Len(); i++ {
		c := series.At(i)
		assert.Greater(t, c.Time, prevTime, "times must be strictly increasing")
		assert.GreaterOrEqual(t, c.High, c.Open)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.Greater(t, c.Low, 0.0)
		assert.GreaterOrEqual(t, c.Volume, 0.0)
		prevTime = c.Time
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	config := DefaultConfig()
	config.Count = 100

	first := NewDataGenerator(7).Generate(config)
	second := NewDataGenerator(7).Generate(config)

	require.Equal(t, first.Len(), second.Len())

	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.At(i).Close, second.At(i).Close)
	}
}

func TestGenerateRespectsTimeframeSpacing(t *testing.T) {
	config := DefaultConfig()
	config.Timeframe = types.Timeframe1Hour
	config.Count = 10

	series := NewDataGenerator(1).Generate(config)

	for i := 1; i < series.Len(); i++ {
		assert.Equal(t, int64(3600), series.At(i).Time-series.At(i-1).Time)
	}
}

func TestGenerate10K(t *testing.T) {
	series := Generate10K("RELIANCE.NS")
	assert.Equal(t, 10000, series.Len())
	assert.Equal(t, "RELIANCE.NS", series.Symbol)
}
