package xperf

import "errors"

var (
	// ErrInvalidProbability 表示采样概率不在 [0, 1]。
	ErrInvalidProbability = errors.New("xperf: invalid sampling probability")

	// ErrInvalidGuard 表示守卫配置不合法。
	ErrInvalidGuard = errors.New("xperf: invalid guard config")

	// ErrInvalidHistogram 表示直方图边界不合法。
	ErrInvalidHistogram = errors.New("xperf: invalid histogram bounds")

	// ErrInvalidDispatch 表示告警投递配置不合法。
	ErrInvalidDispatch = errors.New("xperf: invalid dispatch config")

	// ErrInvalidLog 表示日志配置不合法。
	ErrInvalidLog = errors.New("xperf: invalid log config")

	// ErrNilFunc 表示 Measure 的函数为 nil。
	ErrNilFunc = errors.New("xperf: nil func")
)
