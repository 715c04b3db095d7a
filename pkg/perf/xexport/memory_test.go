package xexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryExporter_InvalidCapacity(t *testing.T) {
	_, err := NewMemoryExporter(0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = NewMemoryExporter(-1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestMemoryExporter_KeepsInsertionOrder(t *testing.T) {
	e, err := NewMemoryExporter(4)
	require.NoError(t, err)

	for i := range 3 {
		require.NoError(t, e.Export(Metric{Name: "op", Value: float64(i)}))
	}
	got := e.Metrics()
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, float64(i), m.Value)
	}
	assert.Zero(t, e.Dropped())
}

func TestMemoryExporter_OverwritesOldest(t *testing.T) {
	e, err := NewMemoryExporter(3)
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, e.Export(Metric{Value: float64(i)}))
	}
	assert.Equal(t, 3, e.Len())
	assert.Equal(t, uint64(2), e.Dropped())

	var values []float64
	for _, m := range e.Metrics() {
		values = append(values, m.Value)
	}
	assert.Equal(t, []float64{2, 3, 4}, values)
}

func TestMemoryExporter_Reset(t *testing.T) {
	e, err := NewMemoryExporter(2)
	require.NoError(t, err)
	for range 3 {
		require.NoError(t, e.Export(Metric{Value: 1}))
	}

	e.Reset()
	assert.Zero(t, e.Len())
	assert.Zero(t, e.Dropped())
	assert.Empty(t, e.Metrics())

	require.NoError(t, e.Export(Metric{Value: 7}))
	assert.Equal(t, 7.0, e.Metrics()[0].Value)
}
