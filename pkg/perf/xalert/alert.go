package xalert

import (
	"context"
	"time"

	"github.com/berkayhuz/norr/pkg/perf/xexport"
)

// 告警维度。
const (
	DimensionDuration = "duration"
	DimensionAlloc    = "alloc"
)

// PerfAlert 一次被 Guard 放行的阈值越界。sink 不得修改。
type PerfAlert struct {
	// ID 随机 UUID，供下游去重。
	ID         string        `json:"id"`
	MetricName string        `json:"metric_name"`
	Dimension  string        `json:"dimension"`
	Value      float64       `json:"value"`
	Threshold  float64       `json:"threshold"`
	Timestamp  time.Time     `json:"timestamp"` // UTC
	Tags       []xexport.Tag `json:"tags,omitempty"`
}

// Key 返回 Guard 去重键。
func (a PerfAlert) Key() string {
	return a.MetricName + ":" + a.Dimension
}

// Sink 告警接收方。实现需并发安全，并应尊重 ctx 的取消。
type Sink interface {
	Send(ctx context.Context, alert PerfAlert) error
}

// SinkFunc 函数适配器。
type SinkFunc func(ctx context.Context, alert PerfAlert) error

// Send 实现 [Sink]。
func (f SinkFunc) Send(ctx context.Context, alert PerfAlert) error {
	return f(ctx, alert)
}
