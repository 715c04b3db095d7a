package xguard

import "time"

// Guard 冷却守卫接口。
type Guard interface {
	// ShouldEmit 报告 key 在 now 时刻是否允许发出，允许时同时记录该 key。
	ShouldEmit(key string, now time.Time) bool
}

// Releaser 由能够撤销一次放行的 Guard 实现。
//
// 调用方在 ShouldEmit 返回 true 之后、告警未能交付（例如派发队列已满）时调用
// Release，使该 key 在同一冷却窗口内的下一次越界仍可放行。
type Releaser interface {
	Release(key string, now time.Time)
}

// 默认参数。
const (
	DefaultBits   = 1 << 16
	DefaultHashes = 4

	// releaseCapacity BloomGuard 最多记住的待重放 key 数。
	releaseCapacity = 1024

	minBits   = 64
	maxBits   = 1 << 32
	maxHashes = 16
)

// Options BloomGuard 配置。
type Options struct {
	// CoolDown 同一 key 两次告警之间的最小间隔，必须大于 0。
	CoolDown time.Duration

	// Bits 过滤器位数，向上取整到 64 的倍数。0 表示 DefaultBits。
	Bits uint64

	// Hashes 每个 key 的哈希位置数。0 表示 DefaultHashes。
	Hashes int
}

func (o *Options) normalize() error {
	if o.CoolDown <= 0 {
		return ErrInvalidCoolDown
	}
	if o.Bits == 0 {
		o.Bits = DefaultBits
	}
	if o.Bits < minBits || o.Bits > maxBits {
		return ErrInvalidBits
	}
	o.Bits = (o.Bits + 63) &^ 63
	if o.Hashes == 0 {
		o.Hashes = DefaultHashes
	}
	if o.Hashes < 1 || o.Hashes > maxHashes {
		return ErrInvalidHashes
	}
	return nil
}
