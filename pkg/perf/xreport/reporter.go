package xreport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/perf/xhist"
)

// DefaultSchedule 默认报告周期。
const DefaultSchedule = "@every 30s"

// Source 提供快照，*xhist.Registry 与 *xperf.Monitor 都满足。
type Source interface {
	Snapshots() []xhist.KeyedState
}

// Option 定义 Reporter 的配置选项。
type Option func(*Reporter)

// WithSchedule 设置 cron 表达式，支持标准五段格式与 "@every 1m" 等描述符。
func WithSchedule(spec string) Option {
	return func(r *Reporter) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// WithIncludeEmpty 让没有观测值的键也输出一行。
func WithIncludeEmpty() Option {
	return func(r *Reporter) {
		r.includeEmpty = true
	}
}

// Reporter 定时快照报告器。
type Reporter struct {
	source       Source
	logger       xlog.Logger
	schedule     string
	includeEmpty bool

	cron      *cron.Cron
	startOnce sync.Once
	stopOnce  sync.Once
	runs      atomic.Uint64
}

// New 创建 Reporter。cron 表达式在此解析，错误立即返回。
func New(source Source, logger xlog.Logger, opts ...Option) (*Reporter, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	r := &Reporter{
		source:   source,
		logger:   logger.With(xlog.Component("xreport")),
		schedule: DefaultSchedule,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	r.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.ReportOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, r.schedule, err)
	}
	return r, nil
}

// Schedule 返回生效的 cron 表达式。
func (r *Reporter) Schedule() string {
	return r.schedule
}

// Runs 返回已完成的报告次数（含 ReportOnce 的直接调用）。
func (r *Reporter) Runs() uint64 {
	return r.runs.Load()
}

// Start 在后台开始调度，非阻塞。重复调用无效果。
func (r *Reporter) Start() {
	r.startOnce.Do(r.cron.Start)
}

// Stop 停止调度并等待正在进行的报告结束或 ctx 结束。重复调用是安全的。
func (r *Reporter) Stop(ctx context.Context) error {
	var done context.Context
	r.stopOnce.Do(func() {
		done = r.cron.Stop()
	})
	if done == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReportOnce 立即输出一次报告，返回输出的行数。
func (r *Reporter) ReportOnce(ctx context.Context) int {
	defer r.runs.Add(1)

	n := 0
	for _, ks := range r.source.Snapshots() {
		st := ks.State
		if st.Empty() && !r.includeEmpty {
			continue
		}
		attrs := []slog.Attr{
			xlog.Operation(ks.Key.Name),
			xlog.Metric(ks.Key.Kind),
			xlog.Count(st.Count),
		}
		if !st.Empty() {
			attrs = append(attrs,
				slog.Float64("mean", st.Mean()),
				slog.Float64("min", st.Min),
				slog.Float64("max", st.Max),
				slog.Float64("p50", st.Quantile(0.50)),
				slog.Float64("p99", st.Quantile(0.99)),
			)
		}
		r.logger.Info(ctx, "perf snapshot", attrs...)
		n++
	}
	return n
}
