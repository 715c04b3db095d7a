package xreport

import "errors"

var (
	// ErrNilSource 表示快照来源为 nil。
	ErrNilSource = errors.New("xreport: nil snapshot source")

	// ErrNilLogger 表示 logger 为 nil。
	ErrNilLogger = errors.New("xreport: nil logger")

	// ErrInvalidSchedule 表示 cron 表达式无法解析。
	ErrInvalidSchedule = errors.New("xreport: invalid schedule")
)
