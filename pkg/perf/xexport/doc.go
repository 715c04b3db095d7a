// Package xexport 将结束的度量作用域转换为 Metric 记录并扇出到所有导出器。
//
// 每个已采样且已结束的作用域产生一个 [Sample]；[FanOut.Export] 按非零维度
// （耗时、CPU、分配）构造 0~3 条 [Metric]，依次交给每个注册的 [Exporter]。
//
// # 失败隔离
//
// 导出器是同步调用的，应当廉价（缓冲、打印或转发）。某个导出器返回错误或 panic
// 不会阻止其余导出器收到同一条 Metric，也不会影响被度量的代码路径；
// 失败通过 OnError 回调上报到诊断通道。
//
// 本组件不提供持久化或缓冲保证，需要批量/持久化的导出器自行实现。
//
// # 内置导出器
//
//   - [MemoryExporter]: 有界内存缓冲
//   - [ConsoleExporter]: 彩色控制台输出（fatih/color）
//   - [LogExporter]: 写入 xlog
//   - [OTelExporter]: OpenTelemetry Float64Histogram
//   - [PercentileExporter]: 基于 HdrHistogram 的分位数统计
//   - [ExporterFunc]: 函数适配器
package xexport
