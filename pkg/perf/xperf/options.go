package xperf

import (
	"time"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/observability/xsampling"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xguard"
)

// Option 定义 Monitor 的配置选项。
type Option func(*monitorOptions)

type monitorOptions struct {
	exporters    []xexport.Exporter
	sinks        []xalert.Sink
	logger       xlog.Logger
	sampler      xsampling.Sampler
	guard        xguard.Guard
	clock        func() time.Time
	probe        Probe
	syncDispatch bool
	idFunc       func() string
}

// WithExporters 追加导出器，按注册顺序接收 Metric。
func WithExporters(exporters ...xexport.Exporter) Option {
	return func(o *monitorOptions) {
		o.exporters = append(o.exporters, exporters...)
	}
}

// WithSinks 追加告警 sink。
func WithSinks(sinks ...xalert.Sink) Option {
	return func(o *monitorOptions) {
		o.sinks = append(o.sinks, sinks...)
	}
}

// WithLogger 注入诊断日志，替代按 Config.Log 自建的 logger。
func WithLogger(logger xlog.Logger) Option {
	return func(o *monitorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSampler 替换按 Config.Sampling 构造的概率采样器。
func WithSampler(s xsampling.Sampler) Option {
	return func(o *monitorOptions) {
		if s != nil {
			o.sampler = s
		}
	}
}

// WithGuard 替换按 Config.Guard 构造的守卫。
func WithGuard(g xguard.Guard) Option {
	return func(o *monitorOptions) {
		if g != nil {
			o.guard = g
		}
	}
}

// WithClock 替换时钟，默认 time.Now。
// 耗时按 clock 两次读数之差计算，time.Now 的单调读数保证其不受系统时间跳变影响。
func WithClock(fn func() time.Time) Option {
	return func(o *monitorOptions) {
		if fn != nil {
			o.clock = fn
		}
	}
}

// WithProbe 替换 CPU/分配探针，默认 SystemProbe。
func WithProbe(p Probe) Option {
	return func(o *monitorOptions) {
		if p != nil {
			o.probe = p
		}
	}
}

// WithSyncDispatch 在 Close 所在 goroutine 中同步投递告警。
func WithSyncDispatch() Option {
	return func(o *monitorOptions) {
		o.syncDispatch = true
	}
}

// WithAlertIDFunc 替换告警 ID 生成函数。
func WithAlertIDFunc(fn func() string) Option {
	return func(o *monitorOptions) {
		o.idFunc = fn
	}
}
