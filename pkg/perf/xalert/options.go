package xalert

import (
	"fmt"
	"math"
)

// Options 告警阈值。零值关闭对应维度。
type Options struct {
	// DurationMs 墙钟耗时阈值（毫秒）。
	DurationMs float64 `koanf:"duration_ms" json:"duration_ms"`
	// AllocBytes 分配字节阈值。
	AllocBytes int64 `koanf:"alloc_bytes" json:"alloc_bytes"`
}

// Validate 拒绝负数与非有限阈值。
func (o Options) Validate() error {
	if math.IsNaN(o.DurationMs) || math.IsInf(o.DurationMs, 0) || o.DurationMs < 0 {
		return fmt.Errorf("%w: duration_ms=%v", ErrInvalidThreshold, o.DurationMs)
	}
	if o.AllocBytes < 0 {
		return fmt.Errorf("%w: alloc_bytes=%d", ErrInvalidThreshold, o.AllocBytes)
	}
	return nil
}

// Enabled 至少一个维度启用时返回 true。
func (o Options) Enabled() bool {
	return o.DurationMs > 0 || o.AllocBytes > 0
}
