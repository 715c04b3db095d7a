package xhist

import (
	"math"
	"slices"
)

// State 直方图的时间点快照（HistogramState）。
//
// State 是普通值，不与产生它的 Histogram 共享任何可变存储。
// 空直方图的 Min 为 +Inf、Max 为 -Inf。
type State struct {
	// Bounds 升序桶边界，不含隐式 +Inf。
	Bounds []float64
	// Buckets 桶计数，长度为 len(Bounds)+1，最后一个为 +Inf 桶。
	Buckets []uint64
	Count   uint64
	Sum     float64
	Min     float64
	Max     float64
}

// Clone 返回深拷贝。
func (s State) Clone() State {
	s.Bounds = slices.Clone(s.Bounds)
	s.Buckets = slices.Clone(s.Buckets)
	return s
}

// Empty 报告快照是否没有任何观测。
func (s State) Empty() bool {
	return s.Count == 0
}

// Mean 返回平均值，空快照返回 0。
func (s State) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Quantile 基于桶内线性插值估算 q 分位数（q 取值 [0,1]，越界会被截断）。
//
// 桶 i 的区间取 (Bounds[i-1], Bounds[i]]；首桶下界用 Min，+Inf 桶上界用 Max。
// 结果截断到 [Min, Max]。空快照返回 0。
func (s State) Quantile(q float64) float64 {
	if s.Count == 0 || len(s.Buckets) == 0 {
		return 0
	}
	// 并发偏斜下极值可能尚未写入
	if math.IsInf(s.Min, 1) || math.IsInf(s.Max, -1) {
		return 0
	}
	q = math.Max(0, math.Min(1, q))
	rank := q * float64(s.Count)

	var cum float64
	for i, n := range s.Buckets {
		if n == 0 {
			continue
		}
		prev := cum
		cum += float64(n)
		if cum < rank {
			continue
		}
		lower := s.Min
		if i > 0 && i-1 < len(s.Bounds) {
			lower = math.Max(lower, s.Bounds[i-1])
		}
		upper := s.Max
		if i < len(s.Bounds) {
			upper = math.Min(upper, s.Bounds[i])
		}
		v := lower + (upper-lower)*((rank-prev)/float64(n))
		return math.Max(s.Min, math.Min(s.Max, v))
	}
	return s.Max
}
