// Package xperf 提供进程内性能度量的入口：Monitor 与 Scope。
//
// 调用方在代码段开始处 Begin，结束处 Close（通常配合 defer）：
//
//	scope := monitor.Begin(ctx, "Checkout")
//	defer scope.Close()
//
// Begin 先做采样决策。未采样的作用域是共享的空值，Close 不做任何事。
// 采样的作用域记录墙钟起点、进程 CPU 时间与累计分配字节；Close 计算三者增量
// （负增量截断为 0），随后依次：
//
//  1. 写入 xhist.Registry，键为 (操作名, 维度)
//  2. 交给 xalert.Evaluator 做阈值检查，越界且 Guard 放行时投递告警
//  3. 经 xexport.FanOut 构造 Metric 并交给每个导出器
//
// 导出器与 sink 的任何失败都被隔离并写入 Monitor 的日志，不会返回给被度量的代码。
// 告警默认异步投递，度量路径不会等待 sink。
//
// # 并发
//
// Monitor 并发安全。Scope 属于单个 goroutine，不应跨 goroutine 共享；
// 重复 Close 是安全的空操作，并计入 Stats().DoubleClosed。
//
// # 精度
//
// CPU 时间与分配字节是进程级计数，并发作用域之间会互相包含对方的消耗，
// 只能作为近似值；墙钟耗时是精确的。
//
// # 生命周期
//
// Monitor 持有自己的直方图注册表，没有进程级单例。Close(ctx) 排空异步告警队列，
// 之后 Begin 返回未采样的作用域。
package xperf
