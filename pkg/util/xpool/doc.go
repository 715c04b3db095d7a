// Package xpool 提供有界的泛型 worker pool，用于把慢操作移出度量路径。
//
// 典型用法是告警分发：作用域结束时在调用方 goroutine 上完成评估，
// 再把告警投递到 Pool，由固定数量的 worker 调用外部 sink。
//
// 特性：
//   - 泛型任务类型
//   - worker 数量 [1, 65536]，队列大小 [1, 16777216]，越界返回错误而非 panic
//   - Submit 永不阻塞，队列满返回 ErrQueueFull，已关闭返回 ErrPoolStopped
//   - Close 处理完队列中的任务后返回；Shutdown(ctx) 支持超时
//   - panic 恢复：单个任务失败不影响 pool，日志默认只记录任务类型
//
// # 关闭策略
//
// Close 等价于 Shutdown(context.Background())。Shutdown 在 ctx 到期后立即返回
// context 错误，残留 worker 继续消费剩余任务，调用方可通过 Done() 等待其结束。
// Close/Shutdown 不可在 handler 内调用，否则会死锁。
//
// 设计决策: 队列满直接拒绝而非阻塞。告警、度量这类任务可以丢弃，
// 但阻塞会把下游故障传导到业务调用方。
package xpool
