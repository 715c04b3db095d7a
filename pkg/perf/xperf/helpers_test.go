package xperf

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeProbe 每次读取前按步长推进，cpuStep/allocStep 可为负以模拟计数器回退。
type fakeProbe struct {
	cpu       atomic.Int64
	alloc     atomic.Uint64
	cpuStep   time.Duration
	allocStep int64
}

func (p *fakeProbe) CPUTime() time.Duration {
	return time.Duration(p.cpu.Add(int64(p.cpuStep)))
}

func (p *fakeProbe) AllocatedBytes() uint64 {
	if p.allocStep < 0 {
		return p.alloc.Add(^uint64(-p.allocStep - 1))
	}
	return p.alloc.Add(uint64(p.allocStep))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Dispatch.SendTimeout = time.Second
	return cfg
}

func newMemory(t *testing.T) *xexport.MemoryExporter {
	t.Helper()
	mem, err := xexport.NewMemoryExporter(1024)
	require.NoError(t, err)
	return mem
}

func newChannelSink(t *testing.T, size int) (*xalert.ChannelSink, chan xalert.PerfAlert) {
	t.Helper()
	ch := make(chan xalert.PerfAlert, size)
	s, err := xalert.NewChannelSink(ch)
	require.NoError(t, err)
	return s, ch
}

func newTestMonitor(t *testing.T, cfg Config, opts ...Option) *Monitor {
	t.Helper()
	opts = append([]Option{WithLogger(xlog.Discard())}, opts...)
	m, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func drain(ch chan xalert.PerfAlert) []xalert.PerfAlert {
	var out []xalert.PerfAlert
	for {
		select {
		case a := <-ch:
			out = append(out, a)
		default:
			return out
		}
	}
}
