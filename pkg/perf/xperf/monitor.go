package xperf

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/observability/xsampling"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xguard"
	"github.com/berkayhuz/norr/pkg/perf/xhist"
)

// Monitor 持有聚合、告警与导出组件，是作用域的工厂。并发安全。
type Monitor struct {
	cfg        Config
	logger     xlog.Logger
	sampler    xsampling.Sampler
	probe      Probe
	clock      func() time.Time
	registry   *xhist.Registry
	fanout     *xexport.FanOut
	dispatcher *xalert.Dispatcher
	evaluator  *xalert.Evaluator

	closed     atomic.Bool
	logCleanup func() error

	begun        atomic.Uint64
	sampled      atomic.Uint64
	recorded     atomic.Uint64
	discarded    atomic.Uint64
	doubleClosed atomic.Uint64
	custom       atomic.Uint64
}

// Stats Monitor 诊断计数。
type Stats struct {
	ScopesBegun     uint64
	ScopesSampled   uint64
	ScopesRecorded  uint64
	ScopesDiscarded uint64
	DoubleClosed    uint64
	CustomObserved  uint64

	// 按 (Metric, 导出器) 计数
	MetricsExported uint64
	ExportFailures  uint64

	AlertsBreached   uint64
	AlertsSuppressed uint64
	// 被丢弃后撤销冷却的告警
	AlertsReleased uint64
	AlertsAccepted uint64
	// 按 (告警, sink) 计数
	AlertsDelivered uint64
	SinkFailures    uint64
	AlertsDropped   uint64
}

// New 按配置构造 Monitor，配置错误立即返回。
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := monitorOptions{
		clock: time.Now,
		probe: SystemProbe{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m := &Monitor{cfg: cfg, probe: o.probe, clock: o.clock}

	m.logger = o.logger
	if m.logger == nil {
		logger, cleanup, err := xlog.New().
			SetOutput(os.Stderr).
			SetLevelString(orDefault(cfg.Log.Level, "warn")).
			SetFormat(cfg.Log.Format).
			Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLog, err)
		}
		m.logger, m.logCleanup = logger, cleanup
	}
	m.logger = m.logger.With(xlog.Component("xperf"))

	m.sampler = o.sampler
	if m.sampler == nil {
		s, err := xsampling.NewProbabilitySampler(cfg.Sampling.Probability)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProbability, err)
		}
		m.sampler = s
	}

	guard := o.guard
	if guard == nil {
		g, err := newGuard(cfg.Guard)
		if err != nil {
			return nil, err
		}
		guard = g
	}

	registry, err := newRegistry(cfg.Histogram)
	if err != nil {
		return nil, err
	}
	m.registry = registry

	m.fanout = xexport.NewFanOut(o.exporters, xexport.WithOnError(func(err error) {
		m.logger.Warn(context.Background(), "perf exporter failed", xlog.Err(err))
	}))

	dopts := []xalert.DispatcherOption{
		xalert.WithWorkers(cfg.Dispatch.Workers),
		xalert.WithQueueSize(cfg.Dispatch.QueueSize),
		xalert.WithSendTimeout(cfg.Dispatch.SendTimeout),
		xalert.WithOnError(func(err error) {
			m.logger.Warn(context.Background(), "perf alert delivery failed", xlog.Err(err))
		}),
	}
	if o.syncDispatch {
		dopts = append(dopts, xalert.WithSyncDispatch())
	}
	m.dispatcher, err = xalert.NewDispatcher(o.sinks, dopts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDispatch, err)
	}

	m.evaluator, err = xalert.NewEvaluator(cfg.Alert, guard, m.dispatcher,
		xalert.WithNow(m.clock), xalert.WithIDFunc(o.idFunc))
	if err != nil {
		_ = m.dispatcher.Close(context.Background()) //nolint:errcheck // 构造失败路径
		return nil, err
	}
	return m, nil
}

func newGuard(c GuardConfig) (xguard.Guard, error) {
	if c.Kind == GuardLRU {
		g, err := xguard.NewLRUGuard(c.CoolDown, c.LRUSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGuard, err)
		}
		return g, nil
	}
	g, err := xguard.NewBloomGuard(xguard.Options{CoolDown: c.CoolDown, Bits: c.Bits, Hashes: c.Hashes})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGuard, err)
	}
	return g, nil
}

func newRegistry(c HistogramConfig) (*xhist.Registry, error) {
	opts := make([]xhist.RegistryOption, 0, 3)
	if len(c.DurationBounds) > 0 {
		opts = append(opts, xhist.WithKindBounds(xexport.KindDuration.String(), c.DurationBounds))
	}
	if len(c.CPUBounds) > 0 {
		opts = append(opts, xhist.WithKindBounds(xexport.KindCPU.String(), c.CPUBounds))
	}
	alloc := c.AllocBounds
	if len(alloc) == 0 {
		alloc = xhist.BytesBounds
	}
	opts = append(opts, xhist.WithKindBounds(xexport.KindAllocation.String(), alloc))

	r, err := xhist.NewRegistry(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHistogram, err)
	}
	return r, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Begin 开始一个作用域。未采样或 Monitor 已关闭时返回共享的空作用域。
func (m *Monitor) Begin(ctx context.Context, name string) *Scope {
	m.begun.Add(1)
	if ctx == nil {
		ctx = context.Background()
	}
	if m.closed.Load() || !m.sampler.ShouldSample(ctx) {
		return unsampled
	}
	m.sampled.Add(1)

	ambient := TagsFrom(ctx)
	return &Scope{
		m:          m,
		ctx:        ctx,
		name:       name,
		tags:       ambient[:len(ambient):len(ambient)],
		start:      m.clock(),
		cpuStart:   m.probe.CPUTime(),
		allocStart: m.probe.AllocatedBytes(),
	}
}

// Measure 在作用域内执行 fn，任何退出路径（包括 panic）都会关闭作用域，panic 会继续向上传播。
func (m *Monitor) Measure(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFunc
	}
	s := m.Begin(ctx, name)
	defer s.Close()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx)
}

// Observe 记录一个 KindCustom 观测值（如队列深度），不经过采样与告警。
func (m *Monitor) Observe(ctx context.Context, name string, value float64) {
	if m.closed.Load() {
		return
	}
	m.custom.Add(1)
	m.registry.Observe(xhist.Key{Name: name, Kind: xexport.KindCustom.String()}, value)
	m.fanout.ExportMetric(xexport.Metric{
		Name:      name,
		Kind:      xexport.KindCustom,
		Value:     value,
		Unit:      xexport.KindCustom.Unit(),
		Timestamp: m.clock().UTC(),
		Tags:      TagsFrom(ctx),
	})
}

// record 把已结束作用域的增量交给聚合、告警与导出。
func (m *Monitor) record(s *Scope) {
	end := m.clock()
	cpu := m.probe.CPUTime() - s.cpuStart
	allocNow := m.probe.AllocatedBytes()

	sample := xexport.Sample{
		Name:       s.name,
		DurationMs: clampMs(end.Sub(s.start)),
		CPUMs:      clampMs(cpu),
		AllocBytes: allocDelta(s.allocStart, allocNow),
		Timestamp:  end.UTC(),
		Tags:       s.tags,
	}

	m.registry.Observe(xhist.Key{Name: s.name, Kind: xexport.KindDuration.String()}, sample.DurationMs)
	m.registry.Observe(xhist.Key{Name: s.name, Kind: xexport.KindCPU.String()}, sample.CPUMs)
	m.registry.Observe(xhist.Key{Name: s.name, Kind: xexport.KindAllocation.String()}, float64(sample.AllocBytes))

	m.evaluator.Evaluate(s.ctx, sample)
	m.fanout.Export(sample)
	m.recorded.Add(1)
}

func clampMs(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

func allocDelta(start, now uint64) int64 {
	if now <= start {
		return 0
	}
	d := now - start
	if d > uint64(1<<63-1) {
		return 1<<63 - 1
	}
	return int64(d)
}

// Snapshot 返回某操作某维度的直方图快照。
func (m *Monitor) Snapshot(name string, kind xexport.Kind) (xhist.State, bool) {
	return m.registry.Snapshot(xhist.Key{Name: name, Kind: kind.String()})
}

// Snapshots 返回全部直方图快照，按操作名、维度排序。
func (m *Monitor) Snapshots() []xhist.KeyedState {
	return m.registry.Snapshots()
}

// Registry 返回 Monitor 持有的直方图注册表，供 xreport 等只读使用。
func (m *Monitor) Registry() *xhist.Registry {
	return m.registry
}

// Config 返回构造时的配置。
func (m *Monitor) Config() Config {
	return m.cfg
}

// Logger 返回 Monitor 的诊断日志。
func (m *Monitor) Logger() xlog.Logger {
	return m.logger
}

// Stats 返回诊断计数。
func (m *Monitor) Stats() Stats {
	ds := m.dispatcher.Stats()
	es := m.evaluator.Stats()
	return Stats{
		ScopesBegun:      m.begun.Load(),
		ScopesSampled:    m.sampled.Load(),
		ScopesRecorded:   m.recorded.Load(),
		ScopesDiscarded:  m.discarded.Load(),
		DoubleClosed:     m.doubleClosed.Load(),
		CustomObserved:   m.custom.Load(),
		MetricsExported:  m.fanout.Exported(),
		ExportFailures:   m.fanout.Failures(),
		AlertsBreached:   es.Breaches,
		AlertsSuppressed: es.Suppressed,
		AlertsReleased:   es.Released,
		AlertsAccepted:   ds.Accepted,
		AlertsDelivered:  ds.Delivered,
		SinkFailures:     ds.Failures,
		AlertsDropped:    ds.Dropped,
	}
}

// Close 停止接收新作用域，排空异步告警队列并释放自建的 logger。重复调用返回 nil。
//
// Close 之前已开始的作用域仍可正常结束；其告警会因队列关闭被丢弃并计数。
func (m *Monitor) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := m.dispatcher.Close(ctx)
	if m.logCleanup != nil {
		if cerr := m.logCleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
