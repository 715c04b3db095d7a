package xperf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkayhuz/norr/pkg/observability/xsampling"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xguard"
)

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Sampling.Probability = 1.5
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidProbability)

	cfg = testConfig()
	cfg.Alert.DurationMs = -1
	_, err = New(cfg)
	require.ErrorIs(t, err, xalert.ErrInvalidThreshold)

	cfg = testConfig()
	cfg.Guard.Bits = 10
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidGuard)
}

func TestNew_LRUGuard(t *testing.T) {
	cfg := testConfig()
	cfg.Guard.Kind = GuardLRU
	cfg.Guard.LRUSize = 8
	m := newTestMonitor(t, cfg)
	m.Begin(t.Context(), "A").Close()
	assert.Equal(t, uint64(1), m.Stats().ScopesRecorded)
}

func TestNew_DefaultLoggerCleanup(t *testing.T) {
	cfg := testConfig()
	cfg.Log = LogConfig{Level: "error", Format: "json"}
	m, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, m.Logger())
	require.NoError(t, m.Close(context.Background()))
}

func TestMonitor_SlowScopeRaisesOneAlertPerSink(t *testing.T) {
	cfg := testConfig()
	cfg.Alert.DurationMs = 1

	s1, ch1 := newChannelSink(t, 8)
	s2, ch2 := newChannelSink(t, 8)
	m, err := New(cfg, WithSinks(s1, s2), WithLogger(nil))
	require.NoError(t, err)

	scope := m.Begin(t.Context(), "Slow")
	time.Sleep(5 * time.Millisecond)
	scope.Close()

	require.NoError(t, m.Close(context.Background()))

	for _, ch := range []chan xalert.PerfAlert{ch1, ch2} {
		got := drain(ch)
		require.Len(t, got, 1)
		assert.Equal(t, "Slow", got[0].MetricName)
		assert.Equal(t, xalert.DimensionDuration, got[0].Dimension)
		assert.GreaterOrEqual(t, got[0].Value, 5.0)
		assert.Equal(t, 1.0, got[0].Threshold)
		assert.Equal(t, time.UTC, got[0].Timestamp.Location())
	}
	st := m.Stats()
	assert.Equal(t, uint64(1), st.AlertsBreached)
	assert.Equal(t, uint64(1), st.AlertsAccepted)
	assert.Equal(t, uint64(2), st.AlertsDelivered) // 按 sink 计数
}

func TestMonitor_CoolDownSuppressesRepeats(t *testing.T) {
	cfg := testConfig()
	cfg.Alert.DurationMs = 1
	cfg.Guard.CoolDown = time.Minute

	clk := newFakeClock()
	sink, ch := newChannelSink(t, 16)
	m := newTestMonitor(t, cfg, WithSinks(sink), WithSyncDispatch(),
		WithClock(clk.Now), WithProbe(&fakeProbe{}))

	for range 5 {
		s := m.Begin(t.Context(), "Slow")
		clk.Advance(10 * time.Millisecond)
		s.Close()
	}
	assert.Len(t, drain(ch), 1)
	assert.Equal(t, uint64(4), m.Stats().AlertsSuppressed)

	clk.Advance(2 * time.Minute)
	s := m.Begin(t.Context(), "Slow")
	clk.Advance(10 * time.Millisecond)
	s.Close()
	assert.Len(t, drain(ch), 1)
}

func TestMonitor_ProbabilityZeroProducesNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Sampling.Probability = 0
	cfg.Alert.DurationMs = 0.000001

	mem := newMemory(t)
	sink, ch := newChannelSink(t, 8)
	m := newTestMonitor(t, cfg, WithExporters(mem), WithSinks(sink), WithSyncDispatch())

	for range 500 {
		s := m.Begin(t.Context(), "Op")
		assert.False(t, s.Sampled())
		s.Close()
	}
	m.Observe(t.Context(), "QueueDepth", 3) // 自定义度量不经过采样

	assert.Empty(t, drain(ch))
	for _, metric := range mem.Metrics() {
		assert.Equal(t, xexport.KindCustom, metric.Kind)
	}
	_, ok := m.Snapshot("Op", xexport.KindDuration)
	assert.False(t, ok)

	st := m.Stats()
	assert.Equal(t, uint64(500), st.ScopesBegun)
	assert.Zero(t, st.ScopesSampled)
	assert.Zero(t, st.ScopesRecorded)
}

func TestMonitor_ProbabilityOneIsDeterministic(t *testing.T) {
	clk := newFakeClock()
	probe := &fakeProbe{cpuStep: time.Millisecond, allocStep: 256}
	mem := newMemory(t)
	m := newTestMonitor(t, testConfig(), WithExporters(mem), WithClock(clk.Now), WithProbe(probe))

	const n = 20
	for range n {
		s := m.Begin(t.Context(), "Op")
		require.True(t, s.Sampled())
		clk.Advance(3 * time.Millisecond)
		s.Close()
	}

	// 每个作用域产生耗时、CPU、分配三条 Metric
	metrics := mem.Metrics()
	require.Len(t, metrics, 3*n)
	assert.Equal(t, xexport.KindDuration, metrics[0].Kind)
	assert.InDelta(t, 3.0, metrics[0].Value, 1e-9)
	assert.Equal(t, xexport.KindCPU, metrics[1].Kind)
	assert.InDelta(t, 1.0, metrics[1].Value, 1e-9)
	assert.Equal(t, xexport.KindAllocation, metrics[2].Kind)
	assert.InDelta(t, 256.0, metrics[2].Value, 1e-9)

	state, ok := m.Snapshot("Op", xexport.KindDuration)
	require.True(t, ok)
	assert.Equal(t, uint64(n), state.Count)
	assert.InDelta(t, 3.0*n, state.Sum, 1e-9)
	assert.Equal(t, 3.0, state.Min)
	assert.Equal(t, 3.0, state.Max)

	st := m.Stats()
	assert.Equal(t, uint64(n), st.ScopesRecorded)
	assert.Equal(t, uint64(3*n), st.MetricsExported)
}

func TestMonitor_FailingExporterIsolated(t *testing.T) {
	failing := xexport.ExporterFunc(func(xexport.Metric) error { return errors.New("boom") })
	panicking := xexport.ExporterFunc(func(xexport.Metric) error { panic("exporter bug") })
	mem := newMemory(t)

	clk := newFakeClock()
	m := newTestMonitor(t, testConfig(),
		WithExporters(failing, panicking, mem),
		WithClock(clk.Now),
		WithProbe(&fakeProbe{cpuStep: time.Millisecond, allocStep: 1}))

	for range 10 {
		assert.NotPanics(t, func() {
			s := m.Begin(t.Context(), "Op")
			clk.Advance(time.Millisecond)
			s.Close()
		})
	}
	assert.Len(t, mem.Metrics(), 30)
	assert.Equal(t, uint64(60), m.Stats().ExportFailures)
}

func TestMonitor_FailingSinkIsolated(t *testing.T) {
	cfg := testConfig()
	cfg.Alert.DurationMs = 1

	bad := xalert.SinkFunc(func(context.Context, xalert.PerfAlert) error { panic("sink bug") })
	good, ch := newChannelSink(t, 4)
	clk := newFakeClock()
	m := newTestMonitor(t, cfg, WithSinks(bad, good), WithSyncDispatch(),
		WithClock(clk.Now), WithProbe(&fakeProbe{}))

	s := m.Begin(t.Context(), "Slow")
	clk.Advance(5 * time.Millisecond)
	assert.NotPanics(t, s.Close)

	assert.Len(t, drain(ch), 1)
	assert.Equal(t, uint64(1), m.Stats().SinkFailures)
}

func TestMonitor_NegativeDeltasClamped(t *testing.T) {
	clk := newFakeClock()
	probe := &fakeProbe{cpuStep: -time.Millisecond, allocStep: -64}
	probe.cpu.Store(int64(time.Second))
	probe.alloc.Store(1 << 20)

	cfg := testConfig()
	cfg.Alert.DurationMs = 1
	sink, ch := newChannelSink(t, 4)
	mem := newMemory(t)
	m := newTestMonitor(t, cfg, WithExporters(mem), WithSinks(sink), WithSyncDispatch(),
		WithClock(clk.Now), WithProbe(probe))

	s := m.Begin(t.Context(), "Skewed")
	clk.Advance(-time.Second)
	s.Close()

	for _, kind := range []xexport.Kind{xexport.KindDuration, xexport.KindCPU, xexport.KindAllocation} {
		state, ok := m.Snapshot("Skewed", kind)
		require.True(t, ok, kind.String())
		assert.Equal(t, uint64(1), state.Count)
		assert.Zero(t, state.Max, kind.String())
	}
	assert.Empty(t, mem.Metrics())
	assert.Empty(t, drain(ch))
}

func TestMonitor_DoubleCloseIsNoop(t *testing.T) {
	mem := newMemory(t)
	clk := newFakeClock()
	m := newTestMonitor(t, testConfig(), WithExporters(mem), WithClock(clk.Now))

	s := m.Begin(t.Context(), "Op")
	clk.Advance(time.Millisecond)
	s.Close()
	s.Close()
	s.Close()

	state, ok := m.Snapshot("Op", xexport.KindDuration)
	require.True(t, ok)
	assert.Equal(t, uint64(1), state.Count)
	st := m.Stats()
	assert.Equal(t, uint64(1), st.ScopesRecorded)
	assert.Equal(t, uint64(2), st.DoubleClosed)
}

func TestMonitor_Discard(t *testing.T) {
	mem := newMemory(t)
	m := newTestMonitor(t, testConfig(), WithExporters(mem))

	s := m.Begin(t.Context(), "Op")
	s.Discard()
	s.Close()
	s.Discard()

	assert.Empty(t, mem.Metrics())
	_, ok := m.Snapshot("Op", xexport.KindDuration)
	assert.False(t, ok)
	st := m.Stats()
	assert.Equal(t, uint64(1), st.ScopesDiscarded)
	assert.Equal(t, uint64(1), st.DoubleClosed)
}

func TestMonitor_Measure(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	require.ErrorIs(t, m.Measure(t.Context(), "Op", nil), ErrNilFunc)

	want := errors.New("handler failed")
	err := m.Measure(t.Context(), "Op", func(context.Context) error { return want })
	require.ErrorIs(t, err, want)

	state, ok := m.Snapshot("Op", xexport.KindDuration)
	require.True(t, ok)
	assert.Equal(t, uint64(1), state.Count)
}

func TestMonitor_MeasureClosesOnPanic(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	assert.PanicsWithValue(t, "handler panic", func() {
		_ = m.Measure(t.Context(), "Panicky", func(context.Context) error {
			panic("handler panic")
		})
	})

	state, ok := m.Snapshot("Panicky", xexport.KindDuration)
	require.True(t, ok)
	assert.Equal(t, uint64(1), state.Count)
}

func TestMonitor_TagsPassThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Alert.DurationMs = 1

	clk := newFakeClock()
	mem := newMemory(t)
	sink, ch := newChannelSink(t, 4)
	m := newTestMonitor(t, cfg, WithExporters(mem), WithSinks(sink), WithSyncDispatch(),
		WithClock(clk.Now), WithProbe(&fakeProbe{}))

	ctx := WithTags(t.Context(), xexport.Tag{Key: "topic", Value: "orders"})
	s := m.Begin(ctx, "Publish")
	s.SetTag("partition", "3")
	clk.Advance(5 * time.Millisecond)
	s.Close()
	s.SetTag("late", "ignored")

	want := []xexport.Tag{{Key: "topic", Value: "orders"}, {Key: "partition", Value: "3"}}
	metrics := mem.Metrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, want, metrics[0].Tags)

	alerts := drain(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, want, alerts[0].Tags)

	// SetTag 不得改写 ctx 中共享的标签
	assert.Equal(t, []xexport.Tag{{Key: "topic", Value: "orders"}}, TagsFrom(ctx))
}

func TestMonitor_Observe(t *testing.T) {
	mem := newMemory(t)
	m := newTestMonitor(t, testConfig(), WithExporters(mem))

	ctx := WithTags(t.Context(), xexport.Tag{Key: "queue", Value: "q1"})
	m.Observe(ctx, "QueueDepth", 7)
	m.Observe(ctx, "QueueDepth", 12)

	state, ok := m.Snapshot("QueueDepth", xexport.KindCustom)
	require.True(t, ok)
	assert.Equal(t, uint64(2), state.Count)
	assert.Equal(t, 12.0, state.Max)

	metrics := mem.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, xexport.KindCustom, metrics[0].Kind)
	assert.Equal(t, "1", metrics[0].Unit)
	assert.Equal(t, "q1", metrics[0].Tags[0].Value)
	assert.Equal(t, uint64(2), m.Stats().CustomObserved)
}

func TestMonitor_InjectedSamplerAndGuard(t *testing.T) {
	cfg := testConfig()
	cfg.Alert.DurationMs = 1

	sampler, err := xsampling.NewCountSampler(2)
	require.NoError(t, err)
	guard, err := xguard.NewLRUGuard(time.Hour, 16)
	require.NoError(t, err)

	clk := newFakeClock()
	sink, ch := newChannelSink(t, 8)
	m := newTestMonitor(t, cfg, WithSampler(sampler), WithGuard(guard), WithSinks(sink),
		WithSyncDispatch(), WithClock(clk.Now), WithProbe(&fakeProbe{}),
		WithAlertIDFunc(func() string { return "fixed" }))

	for range 4 {
		s := m.Begin(t.Context(), "Op")
		clk.Advance(2 * time.Millisecond)
		s.Close()
	}
	st := m.Stats()
	assert.Equal(t, uint64(2), st.ScopesSampled)
	assert.Equal(t, 1, guard.Len())

	alerts := drain(ch)
	require.Len(t, alerts, 1)
	assert.Equal(t, "fixed", alerts[0].ID)
}

func TestMonitor_ConcurrentScopes(t *testing.T) {
	m := newTestMonitor(t, testConfig(), WithProbe(&fakeProbe{cpuStep: time.Microsecond, allocStep: 8}))

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	for w := range workers {
		wg.Go(func() {
			name := "Even"
			if w%2 == 1 {
				name = "Odd"
			}
			for range perWorker {
				m.Begin(t.Context(), name).Close()
			}
		})
	}
	wg.Wait()

	var total uint64
	for _, name := range []string{"Even", "Odd"} {
		state, ok := m.Snapshot(name, xexport.KindDuration)
		require.True(t, ok)
		var buckets uint64
		for _, b := range state.Buckets {
			buckets += b
		}
		assert.Equal(t, state.Count, buckets)
		total += state.Count
	}
	assert.Equal(t, uint64(workers*perWorker), total)
	assert.Equal(t, uint64(workers*perWorker), m.Stats().ScopesRecorded)
}

func TestMonitor_Close(t *testing.T) {
	mem := newMemory(t)
	m, err := New(testConfig(), WithExporters(mem), WithLogger(nil))
	require.NoError(t, err)

	open := m.Begin(t.Context(), "InFlight")
	require.NoError(t, m.Close(context.Background()))
	require.NoError(t, m.Close(context.Background()))

	after := m.Begin(t.Context(), "Late")
	assert.False(t, after.Sampled())
	after.Close()
	m.Observe(t.Context(), "Late", 1)

	// Close 之前开始的作用域仍可结束
	open.Close()
	_, ok := m.Snapshot("InFlight", xexport.KindDuration)
	assert.True(t, ok)
	_, ok = m.Snapshot("Late", xexport.KindCustom)
	assert.False(t, ok)
}

func TestMonitor_SnapshotsSorted(t *testing.T) {
	m := newTestMonitor(t, testConfig())
	m.Begin(t.Context(), "B").Close()
	m.Begin(t.Context(), "A").Close()

	snaps := m.Snapshots()
	require.Len(t, snaps, 6)
	assert.Equal(t, "A", snaps[0].Key.Name)
	assert.Equal(t, "B", snaps[5].Key.Name)
	assert.Same(t, m.Registry(), m.Registry())
	assert.Equal(t, 6, m.Registry().Len())
}
