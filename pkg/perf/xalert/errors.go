package xalert

import "errors"

var (
	// ErrInvalidThreshold 表示阈值为负数或非有限值。
	ErrInvalidThreshold = errors.New("xalert: invalid threshold")

	// ErrNilGuard 表示 Evaluator 的 Guard 为 nil。
	ErrNilGuard = errors.New("xalert: nil guard")

	// ErrNilDispatcher 表示 Evaluator 的 Dispatcher 为 nil。
	ErrNilDispatcher = errors.New("xalert: nil dispatcher")

	// ErrSinkFailed 包装 sink 返回的错误。
	ErrSinkFailed = errors.New("xalert: sink failed")

	// ErrSinkPanic 表示 sink 发生 panic。
	ErrSinkPanic = errors.New("xalert: sink panicked")

	// ErrAlertDropped 表示异步队列已满或已关闭，告警被丢弃。
	ErrAlertDropped = errors.New("xalert: alert dropped")

	// ErrInvalidSendTimeout 表示 sink 调用超时不合法。
	ErrInvalidSendTimeout = errors.New("xalert: send timeout must be positive")

	// ErrNilChannel 表示 ChannelSink 的 channel 为 nil。
	ErrNilChannel = errors.New("xalert: nil channel")

	// ErrChannelFull 表示 ChannelSink 的 channel 已满。
	ErrChannelFull = errors.New("xalert: channel full")

	// ErrNilLogger 表示 LogSink 的 logger 为 nil。
	ErrNilLogger = errors.New("xalert: nil logger")

	// ErrEmptyURL 表示 WebhookSink 的 URL 为空。
	ErrEmptyURL = errors.New("xalert: empty webhook url")

	// ErrUnexpectedStatus 表示 webhook 返回非 2xx 状态码。
	ErrUnexpectedStatus = errors.New("xalert: unexpected webhook status")

	// ErrNilClient 表示 RedisSink 的客户端为 nil。
	ErrNilClient = errors.New("xalert: nil redis client")

	// ErrEmptyKey 表示 RedisSink 的列表键为空。
	ErrEmptyKey = errors.New("xalert: empty redis key")
)
