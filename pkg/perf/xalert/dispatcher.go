package xalert

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/berkayhuz/norr/pkg/util/xpool"
)

// 异步投递默认值。
const (
	DefaultWorkers     = 2
	DefaultQueueSize   = 1024
	DefaultSendTimeout = 5 * time.Second
)

// DispatcherOption 定义 Dispatcher 的配置选项。
type DispatcherOption func(*dispatcherConfig)

type dispatcherConfig struct {
	sync        bool
	workers     int
	queueSize   int
	sendTimeout time.Duration
	onError     func(error)
	poolOpts    []xpool.Option
}

// WithSyncDispatch 在调用方 goroutine 中同步投递。
func WithSyncDispatch() DispatcherOption {
	return func(c *dispatcherConfig) {
		c.sync = true
	}
}

// WithWorkers 设置异步 worker 数量。
func WithWorkers(n int) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.workers = n
	}
}

// WithQueueSize 设置异步队列容量。
func WithQueueSize(n int) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.queueSize = n
	}
}

// WithSendTimeout 设置单次 sink 调用的超时。
func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.sendTimeout = d
	}
}

// WithOnError 设置失败回调，接收 sink 错误、sink panic 与丢弃事件。
// 异步模式下回调在 worker goroutine 上执行。
func WithOnError(fn func(error)) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.onError = fn
	}
}

// WithPoolOptions 透传 xpool 选项（日志、名称）。
func WithPoolOptions(opts ...xpool.Option) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.poolOpts = append(c.poolOpts, opts...)
	}
}

type delivery struct {
	ctx   context.Context
	alert PerfAlert
}

// Dispatcher 把告警投递到所有 sink。sink 列表构造后只读。
type Dispatcher struct {
	sinks       []Sink
	sendTimeout time.Duration
	onError     func(error)
	pool        *xpool.Pool[delivery] // 同步模式为 nil

	accepted  atomic.Uint64
	delivered atomic.Uint64
	failures  atomic.Uint64
	dropped   atomic.Uint64
}

// DispatchStats Dispatcher 计数快照。
type DispatchStats struct {
	// Accepted 被接受投递的告警数。
	Accepted uint64
	// Delivered 成功的 (告警, sink) 次数。
	Delivered uint64
	// Failures 失败的 (告警, sink) 次数。
	Failures uint64
	// Dropped 因队列满或已关闭被丢弃的告警数。
	Dropped uint64
}

// NewDispatcher 创建投递器，nil sink 被忽略。
func NewDispatcher(sinks []Sink, opts ...DispatcherOption) (*Dispatcher, error) {
	cfg := dispatcherConfig{
		workers:     DefaultWorkers,
		queueSize:   DefaultQueueSize,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.sendTimeout <= 0 {
		return nil, ErrInvalidSendTimeout
	}

	d := &Dispatcher{
		sinks:       make([]Sink, 0, len(sinks)),
		sendTimeout: cfg.sendTimeout,
		onError:     cfg.onError,
	}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}

	if !cfg.sync && len(d.sinks) > 0 {
		pool, err := xpool.New(cfg.workers, cfg.queueSize, d.handle,
			append([]xpool.Option{xpool.WithName("xalert")}, cfg.poolOpts...)...)
		if err != nil {
			return nil, fmt.Errorf("xalert: create dispatch pool: %w", err)
		}
		d.pool = pool
	}
	return d, nil
}

// HasSinks 是否注册了至少一个 sink。
func (d *Dispatcher) HasSinks() bool {
	return len(d.sinks) > 0
}

// Dispatch 投递告警，返回是否被接受。永不阻塞于 sink。
//
// ctx 只用于传递值；它的取消不会影响已接受的投递，每次 sink 调用使用独立超时。
func (d *Dispatcher) Dispatch(ctx context.Context, alert PerfAlert) bool {
	if len(d.sinks) == 0 {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	if d.pool == nil {
		d.accepted.Add(1)
		d.deliver(ctx, alert)
		return true
	}
	if err := d.pool.Submit(delivery{ctx: ctx, alert: alert}); err != nil {
		d.dropped.Add(1)
		d.report(fmt.Errorf("%w: %s: %w", ErrAlertDropped, alert.Key(), err))
		return false
	}
	d.accepted.Add(1)
	return true
}

func (d *Dispatcher) handle(task delivery) {
	d.deliver(task.ctx, task.alert)
}

func (d *Dispatcher) deliver(ctx context.Context, alert PerfAlert) {
	for _, s := range d.sinks {
		if err := d.send(ctx, s, alert); err != nil {
			d.failures.Add(1)
			d.report(err)
			continue
		}
		d.delivered.Add(1)
	}
}

// send 以独立超时调用单个 sink，并把 panic 转换为错误。
func (d *Dispatcher) send(ctx context.Context, s Sink, alert PerfAlert) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T %s: %v", ErrSinkPanic, s, alert.Key(), r)
		}
	}()
	if err := s.Send(ctx, alert); err != nil {
		return fmt.Errorf("%w: %T %s: %w", ErrSinkFailed, s, alert.Key(), err)
	}
	return nil
}

func (d *Dispatcher) report(err error) {
	if d.onError == nil {
		return
	}
	defer func() {
		_ = recover() //nolint:errcheck // 回调 panic 不得扩散到 worker 或度量路径
	}()
	d.onError(err)
}

// Close 停止接收告警并等待队列中的告警投递完成或 ctx 结束。
func (d *Dispatcher) Close(ctx context.Context) error {
	if d.pool == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return d.pool.Shutdown(ctx)
}

// Stats 返回累计计数。
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Accepted:  d.accepted.Load(),
		Delivered: d.delivered.Load(),
		Failures:  d.failures.Load(),
		Dropped:   d.dropped.Load(),
	}
}
