package xalert

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xguard"
)

// EvaluatorOption 定义 Evaluator 的配置选项。
type EvaluatorOption func(*Evaluator)

// WithIDFunc 替换告警 ID 生成函数，默认 uuid.NewString。
func WithIDFunc(fn func() string) EvaluatorOption {
	return func(e *Evaluator) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithNow 设置 Sample 缺少时间戳时使用的时钟。
func WithNow(fn func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		if fn != nil {
			e.now = fn
		}
	}
}

// Evaluator 阈值评估器，并发安全。
type Evaluator struct {
	opts       Options
	guard      xguard.Guard
	dispatcher *Dispatcher
	newID      func() string
	now        func() time.Time

	breaches   atomic.Uint64
	suppressed atomic.Uint64
	released   atomic.Uint64
}

// EvaluatorStats Evaluator 计数快照。
type EvaluatorStats struct {
	// Breaches 越过阈值的次数（无论是否被放行）。
	Breaches uint64
	// Suppressed 被 Guard 抑制的次数。
	Suppressed uint64
	// Released 已放行但被 Dispatcher 拒绝、冷却随之撤销的次数。
	Released uint64
}

// NewEvaluator 创建评估器。
func NewEvaluator(opts Options, guard xguard.Guard, dispatcher *Dispatcher, options ...EvaluatorOption) (*Evaluator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if guard == nil {
		return nil, ErrNilGuard
	}
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	e := &Evaluator{
		opts:       opts,
		guard:      guard,
		dispatcher: dispatcher,
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Evaluate 对一个已结束的作用域做阈值检查，返回交给 Dispatcher 的告警数。
//
// 没有 sink 时不查询 Guard，避免空耗冷却窗口。
func (e *Evaluator) Evaluate(ctx context.Context, s xexport.Sample) int {
	if !e.opts.Enabled() || !e.dispatcher.HasSinks() {
		return 0
	}
	now := s.Timestamp
	if now.IsZero() {
		now = e.now().UTC()
	}

	n := 0
	if e.opts.DurationMs > 0 && s.DurationMs > e.opts.DurationMs {
		n += e.raise(ctx, s, DimensionDuration, s.DurationMs, e.opts.DurationMs, now)
	}
	if e.opts.AllocBytes > 0 && s.AllocBytes > e.opts.AllocBytes {
		n += e.raise(ctx, s, DimensionAlloc, float64(s.AllocBytes), float64(e.opts.AllocBytes), now)
	}
	return n
}

func (e *Evaluator) raise(ctx context.Context, s xexport.Sample, dim string, value, threshold float64, now time.Time) int {
	e.breaches.Add(1)
	alert := PerfAlert{
		MetricName: s.Name,
		Dimension:  dim,
		Value:      value,
		Threshold:  threshold,
		Timestamp:  now,
		Tags:       s.Tags,
	}
	if !e.guard.ShouldEmit(alert.Key(), now) {
		e.suppressed.Add(1)
		return 0
	}
	alert.ID = e.newID()
	if !e.dispatcher.Dispatch(ctx, alert) {
		// 被丢弃的告警不占用冷却窗口
		if r, ok := e.guard.(xguard.Releaser); ok {
			r.Release(alert.Key(), now)
			e.released.Add(1)
		}
		return 0
	}
	return 1
}

// Options 返回阈值配置。
func (e *Evaluator) Options() Options {
	return e.opts
}

// Stats 返回累计计数。
func (e *Evaluator) Stats() EvaluatorStats {
	return EvaluatorStats{
		Breaches:   e.breaches.Load(),
		Suppressed: e.suppressed.Load(),
		Released:   e.released.Load(),
	}
}
