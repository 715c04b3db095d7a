package xexport

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/berkayhuz/norr/pkg/perf/xhist"
)

const (
	defaultInstrumentationName = "github.com/berkayhuz/norr/xexport"

	metricDuration = "norr.operation.duration"
	metricCPU      = "norr.operation.cpu"
	metricAlloc    = "norr.operation.alloc"
	metricCustom   = "norr.operation.custom"

	attrOperation = "operation"
)

// OTelExporter 将 Metric 记录到 OpenTelemetry Float64Histogram，每个维度一个 instrument。
// 操作名作为 "operation" 属性，Tags 作为附加属性。
type OTelExporter struct {
	hists map[Kind]metric.Float64Histogram
}

var _ Exporter = (*OTelExporter)(nil)

// OTelOption 定义 OTelExporter 的配置选项。
type OTelOption func(*otelConfig)

type otelConfig struct {
	instrumentationName string
	durationBounds      []float64
	allocBounds         []float64
}

// WithInstrumentationName 设置 Meter 名称。
func WithInstrumentationName(name string) OTelOption {
	return func(c *otelConfig) {
		if name != "" {
			c.instrumentationName = name
		}
	}
}

// WithOTelBounds 设置耗时/CPU 与分配直方图的显式桶边界。
func WithOTelBounds(duration, alloc []float64) OTelOption {
	return func(c *otelConfig) {
		if len(duration) > 0 {
			c.durationBounds = duration
		}
		if len(alloc) > 0 {
			c.allocBounds = alloc
		}
	}
}

// NewOTelExporter 使用 provider 创建 OTel 导出器。
func NewOTelExporter(provider metric.MeterProvider, opts ...OTelOption) (*OTelExporter, error) {
	if provider == nil {
		return nil, ErrNilMeterProvider
	}
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		durationBounds:      xhist.DefaultBounds,
		allocBounds:         xhist.BytesBounds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := provider.Meter(cfg.instrumentationName)
	specs := []struct {
		kind   Kind
		name   string
		desc   string
		bounds []float64
	}{
		{KindDuration, metricDuration, "operation wall-clock duration", cfg.durationBounds},
		{KindCPU, metricCPU, "operation process CPU time", cfg.durationBounds},
		{KindAllocation, metricAlloc, "operation allocated bytes", cfg.allocBounds},
		{KindCustom, metricCustom, "custom operation measurement", nil},
	}

	e := &OTelExporter{hists: make(map[Kind]metric.Float64Histogram, len(specs))}
	for _, s := range specs {
		hopts := []metric.Float64HistogramOption{
			metric.WithDescription(s.desc),
			metric.WithUnit(s.kind.Unit()),
		}
		if len(s.bounds) > 0 {
			hopts = append(hopts, metric.WithExplicitBucketBoundaries(s.bounds...))
		}
		h, err := meter.Float64Histogram(s.name, hopts...)
		if err != nil {
			return nil, fmt.Errorf("xexport: create histogram %s: %w", s.name, err)
		}
		e.hists[s.kind] = h
	}
	return e, nil
}

// Export 实现 [Exporter]。
func (e *OTelExporter) Export(m Metric) error {
	h, ok := e.hists[m.Kind]
	if !ok {
		h = e.hists[KindCustom]
	}
	attrs := make([]attribute.KeyValue, 0, 1+len(m.Tags))
	attrs = append(attrs, attribute.String(attrOperation, m.Name))
	for _, t := range m.Tags {
		attrs = append(attrs, attribute.String(t.Key, t.Value))
	}
	h.Record(context.Background(), m.Value, metric.WithAttributes(attrs...))
	return nil
}
