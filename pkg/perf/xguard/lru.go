package xguard

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUGuard 精确的冷却守卫：按 key 记录上次放行时间，超过 CoolDown 后再次放行。
//
// 容量由 LRU 限制，最久未触发的 key 会被淘汰；被淘汰的 key 下次出现时直接放行。
// 检查与写入在同一把锁内完成，适用于 key 基数有限、需要精确冷却的场景。
type LRUGuard struct {
	cooldown time.Duration
	mu       sync.Mutex
	seen     *lru.Cache[string, int64]
}

var (
	_ Guard    = (*LRUGuard)(nil)
	_ Releaser = (*LRUGuard)(nil)
)

// NewLRUGuard 创建 LRUGuard。
func NewLRUGuard(cooldown time.Duration, size int) (*LRUGuard, error) {
	if cooldown <= 0 {
		return nil, ErrInvalidCoolDown
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	cache, err := lru.New[string, int64](size)
	if err != nil {
		return nil, err
	}
	return &LRUGuard{cooldown: cooldown, seen: cache}, nil
}

// ShouldEmit 实现 [Guard]。
func (g *LRUGuard) ShouldEmit(key string, now time.Time) bool {
	ts := now.UnixNano()

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.seen.Peek(key); ok && ts-last < int64(g.cooldown) {
		return false
	}
	g.seen.Add(key, ts)
	return true
}

// Release 实现 [Releaser]：仅当 key 最近一次放行恰好发生在 now 时删除该记录，
// 之后的放行不会被误撤销。
func (g *LRUGuard) Release(key string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.seen.Peek(key); ok && last == now.UnixNano() {
		g.seen.Remove(key)
	}
}

// Len 返回当前跟踪的 key 数量。
func (g *LRUGuard) Len() int {
	return g.seen.Len()
}
