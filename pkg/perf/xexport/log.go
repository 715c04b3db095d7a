package xexport

import (
	"context"
	"log/slog"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
)

// LogExporter 以 Debug 级别把每条 Metric 写入 xlog.Logger。
type LogExporter struct {
	logger xlog.Logger
}

var _ Exporter = (*LogExporter)(nil)

// NewLogExporter 创建日志导出器。
func NewLogExporter(logger xlog.Logger) (*LogExporter, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &LogExporter{logger: logger.With(xlog.Component("xexport"))}, nil
}

// Export 实现 [Exporter]。
func (e *LogExporter) Export(m Metric) error {
	attrs := make([]slog.Attr, 0, 4+len(m.Tags))
	attrs = append(attrs,
		xlog.Operation(m.Name),
		xlog.Metric(m.Kind.String()),
		slog.Float64("value", m.Value),
		slog.String("unit", m.Unit),
	)
	for _, t := range m.Tags {
		attrs = append(attrs, slog.String(t.Key, t.Value))
	}
	e.logger.Debug(context.Background(), "perf metric", attrs...)
	return nil
}
