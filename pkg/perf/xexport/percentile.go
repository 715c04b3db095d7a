package xexport

import (
	"math"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// PercentileExporter 按 (操作名, 维度) 维护 HDR 直方图，提供精确到有效位数的分位数。
//
// HdrHistogram 的 RecordValue 非并发安全，因此以互斥锁保护；它是可选的分析型导出器，
// 不在聚合核心的无锁路径上。耗时/CPU 以微秒记录，其余维度按原值取整记录。
type PercentileExporter struct {
	mu      sync.Mutex
	hists   map[percentileKey]*hdrhistogram.Histogram
	min     int64
	max     int64
	sigFigs int
	clamped uint64
}

type percentileKey struct {
	name string
	kind Kind
}

// Percentiles 分位数结果，单位与 Metric 一致（毫秒或字节）。
type Percentiles struct {
	Count int64
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P90   float64
	P95   float64
	P99   float64
}

var _ Exporter = (*PercentileExporter)(nil)

// NewPercentileExporter 创建分位数导出器。
// minValue/maxValue 是可记录的整数范围（微秒或字节），sigFigs 取值 [1,5]。
// 超出范围的值会被截断并计入 Clamped。
func NewPercentileExporter(minValue, maxValue int64, sigFigs int) (*PercentileExporter, error) {
	if minValue < 1 || maxValue <= 2*minValue || sigFigs < 1 || sigFigs > 5 {
		return nil, ErrInvalidHistogramRange
	}
	return &PercentileExporter{
		hists:   make(map[percentileKey]*hdrhistogram.Histogram),
		min:     minValue,
		max:     maxValue,
		sigFigs: sigFigs,
	}, nil
}

// NewDefaultPercentileExporter 范围 1µs~1h（字节维度同样是 1~3.6e9），3 位有效数字。
func NewDefaultPercentileExporter() *PercentileExporter {
	e, _ := NewPercentileExporter(1, 3_600_000_000, 3) //nolint:errcheck // 常量参数合法
	return e
}

// Export 实现 [Exporter]。
//
// NaN 不记录，只计入 Clamped；±Inf 截断到范围边界，与 xhist 把 +Inf 归入溢出桶一致。
func (e *PercentileExporter) Export(m Metric) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if math.IsNaN(m.Value) {
		e.clamped++
		return nil
	}
	v := e.toRecordable(m)
	if v < e.min {
		v = e.min
		e.clamped++
	} else if v > e.max {
		v = e.max
		e.clamped++
	}
	key := percentileKey{name: m.Name, kind: m.Kind}
	h, ok := e.hists[key]
	if !ok {
		h = hdrhistogram.New(e.min, e.max, e.sigFigs)
		e.hists[key] = h
	}
	return h.RecordValue(v)
}

// Percentiles 返回指定操作与维度的分位数；没有数据时返回 false。
func (e *PercentileExporter) Percentiles(name string, kind Kind) (Percentiles, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.hists[percentileKey{name: name, kind: kind}]
	if !ok || h.TotalCount() == 0 {
		return Percentiles{}, false
	}
	scale := scaleOf(kind)
	return Percentiles{
		Count: h.TotalCount(),
		Min:   float64(h.Min()) / scale,
		Max:   float64(h.Max()) / scale,
		Mean:  h.Mean() / scale,
		P50:   float64(h.ValueAtQuantile(50)) / scale,
		P90:   float64(h.ValueAtQuantile(90)) / scale,
		P95:   float64(h.ValueAtQuantile(95)) / scale,
		P99:   float64(h.ValueAtQuantile(99)) / scale,
	}, true
}

// Clamped 返回被截断到范围边界的记录数。
func (e *PercentileExporter) Clamped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clamped
}

// Reset 清空所有直方图。
func (e *PercentileExporter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.hists)
	e.clamped = 0
}

// scaleOf 记录值与 Metric 值之间的倍数：毫秒维度以微秒记录。
func scaleOf(kind Kind) float64 {
	if kind == KindDuration || kind == KindCPU {
		return 1000
	}
	return 1
}

// toRecordable 在浮点域先行截断，超出 int64 的值（含 ±Inf）转换结果由实现定义。
func (e *PercentileExporter) toRecordable(m Metric) int64 {
	f := m.Value*scaleOf(m.Kind) + 0.5
	switch {
	case f >= float64(e.max)+1:
		return e.max + 1
	case f < float64(e.min):
		return e.min - 1
	}
	return int64(f)
}
