// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持 lumberjack 文件轮转
//   - xsampling: 采样策略（概率、计数、按 key 一致采样）
//
// 设计原则：
//   - 日志接口统一携带 context
//   - 支持动态级别控制
package observability
