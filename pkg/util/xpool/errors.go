package xpool

import "errors"

var (
	// ErrNilHandler 表示 handler 为 nil。
	ErrNilHandler = errors.New("xpool: nil handler")

	// ErrPoolStopped 表示 pool 已关闭，Submit 被拒绝。
	ErrPoolStopped = errors.New("xpool: pool is stopped")

	// ErrQueueFull 表示队列已满，Submit 不阻塞而直接拒绝。
	ErrQueueFull = errors.New("xpool: queue is full")

	// ErrInvalidWorkers 表示 worker 数量超出 [1, 1<<16]。
	ErrInvalidWorkers = errors.New("xpool: invalid worker count")

	// ErrInvalidQueueSize 表示队列容量超出 [1, 1<<24]。
	ErrInvalidQueueSize = errors.New("xpool: invalid queue size")

	// ErrNilContext 表示 Shutdown 收到 nil context。
	ErrNilContext = errors.New("xpool: nil context")
)
