package xalert

import (
	"context"
	"log/slog"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
)

// LogSink 每条告警写一条 Warn 日志。
type LogSink struct {
	logger xlog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink 创建日志 sink。
func NewLogSink(logger xlog.Logger) (*LogSink, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &LogSink{logger: logger.With(xlog.Component("xalert"))}, nil
}

// Send 实现 [Sink]。
func (s *LogSink) Send(ctx context.Context, a PerfAlert) error {
	attrs := make([]slog.Attr, 0, 6+len(a.Tags))
	attrs = append(attrs,
		slog.String("alert_id", a.ID),
		xlog.Operation(a.MetricName),
		xlog.Metric(a.Dimension),
		slog.Float64("value", a.Value),
		slog.Float64("threshold", a.Threshold),
		slog.Time("at", a.Timestamp),
	)
	for _, t := range a.Tags {
		attrs = append(attrs, slog.String(t.Key, t.Value))
	}
	s.logger.Warn(ctx, "perf threshold exceeded", attrs...)
	return nil
}

// ChannelSink 非阻塞地把告警写入 channel，满时返回 ErrChannelFull。
type ChannelSink struct {
	ch chan<- PerfAlert
}

var _ Sink = (*ChannelSink)(nil)

// NewChannelSink 创建 channel sink。channel 由调用方拥有并负责关闭，
// 关闭前需先关闭 Dispatcher。
func NewChannelSink(ch chan<- PerfAlert) (*ChannelSink, error) {
	if ch == nil {
		return nil, ErrNilChannel
	}
	return &ChannelSink{ch: ch}, nil
}

// Send 实现 [Sink]。
func (s *ChannelSink) Send(ctx context.Context, a PerfAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.ch <- a:
		return nil
	default:
		return ErrChannelFull
	}
}
