package xexport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMeterProvider 创建用于测试的 MeterProvider
func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return mp, reader
}

func collectHistograms(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Histogram[float64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Histogram[float64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok {
				out[m.Name] = h
			}
		}
	}
	return out
}

func TestNewOTelExporter_NilProvider(t *testing.T) {
	_, err := NewOTelExporter(nil)
	assert.ErrorIs(t, err, ErrNilMeterProvider)
}

func TestOTelExporter_RecordsPerKind(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	e, err := NewOTelExporter(mp, WithInstrumentationName("norr-test"))
	require.NoError(t, err)

	f := NewFanOut([]Exporter{e})
	f.Export(testSample())
	f.Export(testSample())

	hists := collectHistograms(t, reader)
	require.Contains(t, hists, metricDuration)
	require.Contains(t, hists, metricCPU)
	require.Contains(t, hists, metricAlloc)

	dur := hists[metricDuration]
	require.Len(t, dur.DataPoints, 1)
	dp := dur.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 25.0, dp.Sum, 1e-9)

	op, ok := dp.Attributes.Value(attribute.Key(attrOperation))
	require.True(t, ok)
	assert.Equal(t, "Checkout", op.AsString())
	region, ok := dp.Attributes.Value("region")
	require.True(t, ok)
	assert.Equal(t, "eu", region.AsString())
}

func TestOTelExporter_CustomBounds(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	e, err := NewOTelExporter(mp, WithOTelBounds([]float64{1, 10}, []float64{1024}))
	require.NoError(t, err)
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindDuration, Value: 5}))
	require.NoError(t, e.Export(Metric{Name: "op", Kind: KindAllocation, Value: 10}))

	hists := collectHistograms(t, reader)
	assert.Equal(t, []float64{1, 10}, hists[metricDuration].DataPoints[0].Bounds)
	assert.Equal(t, []uint64{0, 1, 0}, hists[metricDuration].DataPoints[0].BucketCounts)
	assert.Equal(t, []float64{1024}, hists[metricAlloc].DataPoints[0].Bounds)
}

func TestOTelExporter_UnknownKindFallsBackToCustom(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	e, err := NewOTelExporter(mp)
	require.NoError(t, err)
	require.NoError(t, e.Export(Metric{Name: "op", Kind: Kind(99), Value: 3}))

	hists := collectHistograms(t, reader)
	require.Contains(t, hists, metricCustom)
	assert.Equal(t, uint64(1), hists[metricCustom].DataPoints[0].Count)
}
