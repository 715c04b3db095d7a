package xlog

import (
	"context"
	"log/slog"
)

// Logger 是 perf 各组件依赖的最小日志面：只接受 slog.Attr，且总是带 ctx。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 派生出带固定属性的 Logger，级别与父级联动。
	With(attrs ...slog.Attr) Logger
}

// Leveler 运行期调整级别，例如 CLI 的 --verbose。
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 由 Builder.Build 返回。
type LoggerWithLevel interface {
	Logger
	Leveler
}
