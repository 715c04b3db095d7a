// Package xlog 基于 log/slog 的结构化日志，作为度量引擎的诊断通道。
//
// 导出器、告警接收端、worker pool 的失败都通过 Logger 上报，
// 永远不会回抛到被度量的业务代码中。
//
// # 创建 Logger
//
// 使用 Builder（first-error-wins：遇到第一个配置错误后，Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelWarn).
//		SetFormat("json").
//		SetRotation("/var/log/app/perf.log", xlog.RotationOptions{MaxSizeMB: 50}).
//		Build()
//	defer cleanup()
//
// 测试或不需要诊断输出时使用 [Discard]。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，与 slog 一致。
// Level 实现 encoding.TextUnmarshaler，可直接从配置文件反序列化。
//
// # 便捷属性
//
// [Err]、[Component]、[Operation]、[Metric]、[Count]、[Duration]。
package xlog
