package xexport

import (
	"fmt"
	"sync/atomic"
)

// Exporter 度量导出器。实现需并发安全，且应当廉价。
type Exporter interface {
	Export(m Metric) error
}

// ExporterFunc 函数适配器。
type ExporterFunc func(m Metric) error

// Export 实现 [Exporter]。
func (f ExporterFunc) Export(m Metric) error {
	return f(m)
}

// FanOutOption 定义 FanOut 的配置选项。
type FanOutOption func(*FanOut)

// WithOnError 设置导出失败回调。回调在导出路径上同步执行，应保持轻量。
func WithOnError(fn func(err error)) FanOutOption {
	return func(f *FanOut) {
		f.onError = fn
	}
}

// FanOut 将 Sample 扇出到所有导出器。导出器列表构造后只读。
type FanOut struct {
	exporters []Exporter
	onError   func(error)
	exported  atomic.Uint64
	failures  atomic.Uint64
}

// NewFanOut 创建扇出器，nil 导出器被忽略。
func NewFanOut(exporters []Exporter, opts ...FanOutOption) *FanOut {
	f := &FanOut{exporters: make([]Exporter, 0, len(exporters))}
	for _, e := range exporters {
		if e != nil {
			f.exporters = append(f.exporters, e)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Export 构造 Sample 的 Metric 并依次交给每个导出器，返回构造的 Metric 数量。
// 任何导出器失败都不会中断对其余导出器的投递。
func (f *FanOut) Export(s Sample) int {
	if len(f.exporters) == 0 {
		return 0
	}
	metrics := s.Metrics()
	for _, m := range metrics {
		f.ExportMetric(m)
	}
	return len(metrics)
}

// ExportMetric 把单条 Metric 交给每个导出器，用于 KindCustom 等不来自作用域的度量。
func (f *FanOut) ExportMetric(m Metric) {
	for _, e := range f.exporters {
		if err := safeExport(e, m); err != nil {
			f.failures.Add(1)
			f.report(err)
			continue
		}
		f.exported.Add(1)
	}
}

// Len 返回导出器数量。
func (f *FanOut) Len() int {
	return len(f.exporters)
}

// Exported 返回成功投递的 (Metric, 导出器) 次数。
func (f *FanOut) Exported() uint64 {
	return f.exported.Load()
}

// Failures 返回失败的 (Metric, 导出器) 次数。
func (f *FanOut) Failures() uint64 {
	return f.failures.Load()
}

func (f *FanOut) report(err error) {
	if f.onError == nil {
		return
	}
	defer func() {
		_ = recover() //nolint:errcheck // 回调 panic 不得扩散到度量路径
	}()
	f.onError(err)
}

// safeExport 调用导出器并把 panic 转换为错误。
func safeExport(e Exporter, m Metric) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T %s/%s: %v", ErrExporterPanic, e, m.Name, m.Kind, r)
		}
	}()
	if err := e.Export(m); err != nil {
		return fmt.Errorf("%w: %T %s/%s: %w", ErrExportFailed, e, m.Name, m.Kind, err)
	}
	return nil
}
