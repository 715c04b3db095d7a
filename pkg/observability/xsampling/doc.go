// Package xsampling 决定一次度量作用域是否被完整测量。
//
// 未采样的作用域在结束时什么都不做，采样率因此直接换算为开销：
// 0.1 表示约 10% 的调用承担计时、探针读取与导出成本。
//
// # 策略
//
//   - Always(): 全采样
//   - Never(): 不采样
//   - NewProbabilitySampler(p): 独立伯努利试验，p ∈ [0, 1]
//   - NewCountSampler(n): 每 n 次采样 1 次，适合需要确定性节奏的压测
//   - NewKeyBasedSampler(p, keyFunc): 按上下文中的 key（如请求 ID）一致采样，
//     同一请求内嵌套的作用域要么全部采样要么全部跳过
//
// p = 0 与 p = 1 是确定性的：前者从不调用随机源，后者从不拒绝。
//
// # 并发安全
//
// 所有采样器都是并发安全的，热路径零分配。随机源为 math/rand/v2 的
// 运行时 ChaCha8 源，统计随机性对采样足够，无需 crypto/rand。
//
// KeyBasedSampler 使用 xxhash（github.com/cespare/xxhash/v2），
// 同一 key 在所有进程中得到相同的采样决策。
package xsampling
