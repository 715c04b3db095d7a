package xhist

import (
	"math"
	"slices"
	"sync/atomic"
)

// Histogram 单个 key 的分桶直方图。
//
// 必须通过 [New] 创建。Observe 与 Snapshot 可在任意 goroutine 并发调用，
// 全程不持有锁。
type Histogram struct {
	bounds  []float64 // 构造后只读
	buckets []atomic.Uint64
	count   atomic.Uint64

	// 以 math.Float64bits 形式存放，CAS 更新
	sum atomic.Uint64
	min atomic.Uint64
	max atomic.Uint64
}

// New 使用给定边界创建直方图。边界会被复制，调用方后续修改不影响直方图。
func New(bounds []float64) (*Histogram, error) {
	if err := ValidateBounds(bounds); err != nil {
		return nil, err
	}
	h := &Histogram{
		bounds:  slices.Clone(bounds),
		buckets: make([]atomic.Uint64, len(bounds)+1),
	}
	h.min.Store(math.Float64bits(math.Inf(1)))
	h.max.Store(math.Float64bits(math.Inf(-1)))
	return h, nil
}

// Observe 记录一个观测值。NaN 被丢弃。
func (h *Histogram) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	h.buckets[h.bucketIndex(v)].Add(1)
	h.count.Add(1)
	addFloat(&h.sum, v)
	storeMin(&h.min, v)
	storeMax(&h.max, v)
}

// bucketIndex 线性扫描，返回第一个满足 v <= bounds[i] 的 i；
// 都不满足时返回 len(bounds)，即 +Inf 桶。
func (h *Histogram) bucketIndex(v float64) int {
	for i, b := range h.bounds {
		if v <= b {
			return i
		}
	}
	return len(h.bounds)
}

// Count 返回当前观测次数。
func (h *Histogram) Count() uint64 {
	return h.count.Load()
}

// Bounds 返回桶边界的副本。
func (h *Histogram) Bounds() []float64 {
	return slices.Clone(h.bounds)
}

// Snapshot 返回时间点快照，不阻塞并发的 Observe。
//
// 快照的 Count 由 sum(Buckets) 计算得出，因此 Count == sum(Buckets) 在快照中恒成立；
// Sum/Min/Max 与桶计数之间可能存在轻微偏斜（见包文档）。
func (h *Histogram) Snapshot() State {
	s := State{
		Bounds:  slices.Clone(h.bounds),
		Buckets: make([]uint64, len(h.buckets)),
	}
	for i := range h.buckets {
		n := h.buckets[i].Load()
		s.Buckets[i] = n
		s.Count += n
	}
	s.Sum = math.Float64frombits(h.sum.Load())
	s.Min = math.Float64frombits(h.min.Load())
	s.Max = math.Float64frombits(h.max.Load())
	return s
}

// addFloat CAS 重试累加。
func addFloat(a *atomic.Uint64, delta float64) {
	for {
		old := a.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.CompareAndSwap(old, next) {
			return
		}
	}
}

// storeMin 仅当 v 更小时尝试 CAS，否则直接返回以降低竞争。
func storeMin(a *atomic.Uint64, v float64) {
	for {
		old := a.Load()
		if v >= math.Float64frombits(old) {
			return
		}
		if a.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

// storeMax 仅当 v 更大时尝试 CAS。
func storeMax(a *atomic.Uint64, v float64) {
	for {
		old := a.Load()
		if v <= math.Float64frombits(old) {
			return
		}
		if a.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}
