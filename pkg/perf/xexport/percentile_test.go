package xexport

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPercentileExporter_InvalidRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int64
		sig      int
	}{
		{"zero min", 0, 100, 3},
		{"max too small", 10, 20, 3},
		{"sig too low", 1, 100, 0},
		{"sig too high", 1, 100, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPercentileExporter(tt.min, tt.max, tt.sig)
			assert.ErrorIs(t, err, ErrInvalidHistogramRange)
		})
	}
}

func TestPercentileExporter_Quantiles(t *testing.T) {
	e := NewDefaultPercentileExporter()
	for i := 1; i <= 100; i++ {
		require.NoError(t, e.Export(Metric{Name: "Checkout", Kind: KindDuration, Value: float64(i)}))
	}

	p, ok := e.Percentiles("Checkout", KindDuration)
	require.True(t, ok)
	assert.Equal(t, int64(100), p.Count)
	assert.InDelta(t, 1.0, p.Min, 0.01)
	assert.InDelta(t, 100.0, p.Max, 0.1)
	assert.InDelta(t, 50.5, p.Mean, 0.1)
	assert.InDelta(t, 50.0, p.P50, 0.1)
	assert.InDelta(t, 90.0, p.P90, 0.1)
	assert.InDelta(t, 99.0, p.P99, 0.1)

	_, ok = e.Percentiles("Checkout", KindCPU)
	assert.False(t, ok)
	_, ok = e.Percentiles("Other", KindDuration)
	assert.False(t, ok)
}

func TestPercentileExporter_BytesAreNotScaled(t *testing.T) {
	e := NewDefaultPercentileExporter()
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindAllocation, Value: 4096}))

	p, ok := e.Percentiles("op", KindAllocation)
	require.True(t, ok)
	assert.InDelta(t, 4096.0, p.Max, 4096*0.001)
}

func TestPercentileExporter_Clamping(t *testing.T) {
	e, err := NewPercentileExporter(10, 1000, 2)
	require.NoError(t, err)

	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: 1}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: 1e9}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: 100}))
	assert.Equal(t, uint64(2), e.Clamped())

	e.Reset()
	assert.Zero(t, e.Clamped())
	_, ok := e.Percentiles("op", KindCustom)
	assert.False(t, ok)
}

func TestPercentileExporter_NonFiniteValues(t *testing.T) {
	e, err := NewPercentileExporter(10, 1000, 2)
	require.NoError(t, err)

	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: 10}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: math.Inf(1)}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: math.Inf(-1)}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindCustom, Value: math.NaN()}))

	p, ok := e.Percentiles("op", KindCustom)
	require.True(t, ok)
	assert.Equal(t, int64(3), p.Count)
	assert.InDelta(t, 1000.0, p.Max, 1000*0.01)
	assert.InDelta(t, 10.0, p.Min, 0.1)
	assert.Equal(t, uint64(3), e.Clamped())
}

func TestPercentileExporter_Concurrent(t *testing.T) {
	e := NewDefaultPercentileExporter()
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 500 {
				_ = e.Export(Metric{Name: "op", Kind: KindDuration, Value: 2})
			}
		})
	}
	wg.Wait()

	p, ok := e.Percentiles("op", KindDuration)
	require.True(t, ok)
	assert.Equal(t, int64(4000), p.Count)
}
