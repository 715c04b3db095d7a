package xguard

import "errors"

var (
	// ErrInvalidCoolDown 表示冷却时间必须大于 0。
	ErrInvalidCoolDown = errors.New("xguard: cooldown must be positive")

	// ErrInvalidBits 表示布隆过滤器位数不合法。
	ErrInvalidBits = errors.New("xguard: bits must be in [64, 1<<32]")

	// ErrInvalidHashes 表示哈希函数个数不合法。
	ErrInvalidHashes = errors.New("xguard: hashes must be in [1, 16]")

	// ErrInvalidSize 表示 LRUGuard 容量不合法。
	ErrInvalidSize = errors.New("xguard: lru size must be positive")
)
