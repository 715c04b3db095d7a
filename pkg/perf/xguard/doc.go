// Package xguard 提供告警去重/冷却守卫。
//
// [Guard.ShouldEmit] 回答"在冷却窗口内是否已为该 key 发出过告警"。
// 精确的 key->时间戳 映射在高基数下会无限增长，因此默认实现 [BloomGuard]
// 使用按冷却周期轮换的布隆过滤器，内存固定。
//
// # 轮换策略
//
// 过滤器只在一个冷却纪元（epoch）内有效：
//   - 纪元内首次出现的 key 返回 true 并写入过滤器，之后返回 false
//   - now 到达 epoch_start + CoolDown 时纪元轮换：换上空过滤器，epoch_start = now
//   - 首次调用时以该次 now 作为第一个纪元的起点
//
// 因此 key 被抑制的时长不超过 2×CoolDown；若纪元边界先于该 key 的首次放行到来，
// 同一 key 可能在不足 CoolDown 的间隔内被再次放行（已知的不精确）。
//
// 布隆过滤器可能误判（不同 key 命中相同位模式而被抑制），这对防告警风暴是可接受的。
// 纪元轮换瞬间并发写入旧过滤器的 key 可能在新纪元被重复放行。
//
// # 并发
//
// BloomGuard 的判定路径无锁：位写入使用 atomic Or，纪元由单个取得轮换权的调用者
// 分配并发布，其余调用者让出后重读，因此轮换时只分配一次过滤器。
//
// # 撤销
//
// 两种实现都满足 [Releaser]。放行后告警未能交付时，调用方应 Release 该 key，
// 否则这次越界会白白占用冷却窗口。BloomGuard 的位无法清除，撤销记录在容量有限的
// LRU 中，含义是"本纪元内再放行一次"。
// [LRUGuard] 是精确的替代实现，按 key 记录放行时间，容量受 LRU 限制，内部持有互斥锁。
package xguard
