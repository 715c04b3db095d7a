// Package xhist 提供无锁的分桶直方图聚合器。
//
// # 核心类型
//
//   - [Histogram]: 单个 key 的直方图，Observe 全程无锁
//   - [State]: 直方图的时间点快照（HistogramState），之后的 Observe 不会影响它
//   - [Registry]: 按 [Key]（操作名 + 维度）持有 Histogram 的注册表
//
// # 分桶规则
//
// 上界包含（inclusive）：值 v 落入第一个满足 v <= Bounds[i] 的桶；
// 大于最后一个边界的值落入隐式 +Inf 桶。NaN 无法定位，直接丢弃不计数。
//
//	bounds: 1, 5, 10
//	v=1   -> bucket[0]
//	v=1.1 -> bucket[1]
//	v=10  -> bucket[2]
//	v=11  -> bucket[3] (+Inf)
//
// # 精度取舍
//
// 桶计数与 Count 使用原子加法，任意并发下精确。
// Sum/Min/Max 使用 CAS 重试循环更新，属于尽力而为：
// 并发写入时快照可能已反映 Count 的增量而尚未反映 Sum 的增量（轻微偏斜）。
// 所有写入者停止后，Min/Max 等于真实的最小/最大值。
//
// [Histogram.Snapshot] 以 sum(Buckets) 重新计算 State.Count，
// 保证每个快照中 Count == sum(Buckets) 恒成立。
package xhist
