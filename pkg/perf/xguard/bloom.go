package xguard

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// unsetEpoch 表示尚未开始第一个纪元。
const unsetEpoch = math.MinInt64

// generation 一个冷却纪元的过滤器。
type generation struct {
	start int64 // UnixNano
	words []atomic.Uint64
}

// BloomGuard 基于按纪元轮换的布隆过滤器的冷却守卫。
type BloomGuard struct {
	cooldown int64
	bits     uint64
	hashes   uint64
	gen      atomic.Pointer[generation]
	rotating atomic.Bool
	rotated  atomic.Uint64

	// released 记录被撤销放行的 key 及其所属纪元起点。位无法清除，
	// 因此撤销表示"本纪元内再放行一次"。pending 为零时热路径不触碰它。
	released *lru.Cache[string, int64]
	pending  atomic.Int64
}

var (
	_ Guard    = (*BloomGuard)(nil)
	_ Releaser = (*BloomGuard)(nil)
)

// NewBloomGuard 创建 BloomGuard。
func NewBloomGuard(opts Options) (*BloomGuard, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	g := &BloomGuard{
		cooldown: int64(opts.CoolDown),
		bits:     opts.Bits,
		hashes:   uint64(opts.Hashes),
	}
	released, err := lru.NewWithEvict(releaseCapacity, func(string, int64) {
		g.pending.Add(-1)
	})
	if err != nil {
		return nil, err
	}
	g.released = released
	g.gen.Store(g.newGeneration(unsetEpoch))
	return g, nil
}

func (g *BloomGuard) newGeneration(start int64) *generation {
	return &generation{
		start: start,
		words: make([]atomic.Uint64, g.bits/64),
	}
}

// ShouldEmit 实现 [Guard]。
func (g *BloomGuard) ShouldEmit(key string, now time.Time) bool {
	gen := g.current(now.UnixNano())

	// Kirsch-Mitzenmacher 双重哈希：pos_i = h1 + i*h2
	sum := xxhash.Sum64String(key)
	h1 := sum & 0xffffffff
	h2 := (sum >> 32) | 1

	fresh := false
	for i := range g.hashes {
		pos := (h1 + i*h2) % g.bits
		mask := uint64(1) << (pos & 63)
		if gen.words[pos>>6].Or(mask)&mask == 0 {
			fresh = true
		}
	}
	if fresh {
		return true
	}
	return g.readmit(key, gen.start)
}

// Release 实现 [Releaser]：key 在当前纪元内的下一次 ShouldEmit 返回 true。
// 纪元轮换后未消费的撤销自动失效。
func (g *BloomGuard) Release(key string, _ time.Time) {
	start := g.gen.Load().start
	if start == unsetEpoch {
		return
	}
	if prev, ok, _ := g.released.PeekOrAdd(key, start); !ok {
		g.pending.Add(1)
	} else if prev != start {
		g.released.Add(key, start)
	}
}

// readmit 消费一次撤销。Remove 的返回值保证并发调用者中只有一个成功。
func (g *BloomGuard) readmit(key string, start int64) bool {
	if g.pending.Load() == 0 {
		return false
	}
	at, ok := g.released.Peek(key)
	if !ok || !g.released.Remove(key) {
		return false
	}
	return at == start
}

// current 返回 now 所属纪元的过滤器，必要时轮换。
// 同一时刻只有一个调用者分配新纪元，其余调用者让出 CPU 后重读。
// now 早于纪元起点（时钟回拨）时视为仍在当前纪元内。
func (g *BloomGuard) current(now int64) *generation {
	for {
		gen := g.gen.Load()
		if g.within(gen, now) {
			return gen
		}
		if !g.rotating.CompareAndSwap(false, true) {
			runtime.Gosched()
			continue
		}
		// 取得轮换权后复查，其他调用者可能刚完成轮换
		if gen = g.gen.Load(); g.within(gen, now) {
			g.rotating.Store(false)
			return gen
		}
		next := g.newGeneration(now)
		g.gen.Store(next)
		if gen.start != unsetEpoch {
			g.rotated.Add(1)
		}
		g.rotating.Store(false)
		return next
	}
}

func (g *BloomGuard) within(gen *generation, now int64) bool {
	return gen.start != unsetEpoch && now-gen.start < g.cooldown
}

// Rotations 返回已发生的纪元轮换次数。
func (g *BloomGuard) Rotations() uint64 {
	return g.rotated.Load()
}

// EpochStart 返回当前纪元起点；尚未开始时返回零值。
func (g *BloomGuard) EpochStart() time.Time {
	start := g.gen.Load().start
	if start == unsetEpoch {
		return time.Time{}
	}
	return time.Unix(0, start)
}
