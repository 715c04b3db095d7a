// Package xalert 评估阈值并把告警投递到外部 sink。
//
// # 评估
//
// Evaluator 对每个已采样、已结束的作用域调用一次。对每个启用的维度
// （耗时 DurationMs、分配 AllocBytes），当观测值严格大于阈值时构造键
// "name:dimension" 查询 xguard.Guard；Guard 放行才生成 PerfAlert。
// 阈值为 0 表示该维度关闭，负数在构造时被拒绝。
//
// # 投递
//
// Dispatcher 默认异步：告警进入 xpool 有界队列，由 worker 依次调用每个 sink，
// 每次调用带独立超时。队列满时告警被丢弃并计数，度量路径永不阻塞。
// WithSyncDispatch 改为在调用方 goroutine 中同步投递，用于测试与 CLI。
//
// 每个 sink 的失败（错误或 panic）相互隔离，经 OnError 回调上报，不会返回给度量代码。
// sink 之间没有顺序保证。
//
// # Sink
//
//   - LogSink: 写一条 Warn 级别日志
//   - ChannelSink: 非阻塞写入调用方提供的 channel
//   - SinkFunc: 函数适配器
//   - WebhookSink: JSON POST，retry-go 指数退避重试，gobreaker 熔断
//   - RedisSink: LPUSH + LTRIM 维护有界告警日志，可选 PUBLISH 通知
//
// 重试只存在于 sink 内部；Dispatcher 本身从不重试。
package xalert
