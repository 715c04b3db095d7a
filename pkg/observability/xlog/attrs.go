package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key。
const (
	KeyError     = "error"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyMetric    = "metric"
	KeyCount     = "count"
	KeyDuration  = "duration"
)

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Component 标识日志来源组件。
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 标识被度量的操作名。
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Metric 标识度量维度（duration/cpu/alloc）。
func Metric(kind string) slog.Attr {
	return slog.String(KeyMetric, kind)
}

// Count 创建计数属性。
func Count(n uint64) slog.Attr {
	return slog.Uint64(KeyCount, n)
}

// Duration 输出人类可读的耗时（如 "1.5s"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}
