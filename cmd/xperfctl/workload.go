package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/berkayhuz/norr/pkg/perf/xexport"
	"github.com/berkayhuz/norr/pkg/perf/xperf"
)

// inflightMetric 合成负载中并发执行的操作数，以 KindCustom 记录。
const inflightMetric = "workload.inflight"

type workloadOptions struct {
	duration   time.Duration
	workers    int
	ops        []string
	maxLatency time.Duration
	slowEvery  int
	allocKB    int
}

func (o workloadOptions) validate() error {
	switch {
	case o.duration <= 0:
		return errors.New("duration must be positive")
	case o.workers < 1 || o.workers > 1024:
		return fmt.Errorf("workers must be in [1, 1024], got %d", o.workers)
	case len(o.ops) == 0:
		return errors.New("at least one operation name is required")
	case o.maxLatency < 0:
		return errors.New("max-latency must not be negative")
	case o.slowEvery < 0:
		return errors.New("slow-every must not be negative")
	case o.allocKB < 0 || o.allocKB > 1<<20:
		return fmt.Errorf("alloc-kb must be in [0, %d]", 1<<20)
	}
	return nil
}

// runWorkload 启动 workers 个 goroutine，在 duration 内循环执行被度量的模拟操作，
// 返回完成的操作数。ctx 取消时提前结束，不视为错误。
func runWorkload(ctx context.Context, m *xperf.Monitor, o workloadOptions) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, o.duration)
	defer cancel()

	var done, inflight atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	seed := uint64(time.Now().UnixNano())
	for w := range o.workers {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(w)))
			wctx := xperf.WithTags(gctx, xexport.Tag{Key: "worker", Value: strconv.Itoa(w)})
			for i := 1; gctx.Err() == nil; i++ {
				name := o.ops[rng.IntN(len(o.ops))]
				latency := jitter(rng, o.maxLatency)
				if o.slowEvery > 0 && i%o.slowEvery == 0 {
					latency *= 4
				}

				m.Observe(wctx, inflightMetric, float64(inflight.Add(1)))
				err := m.Measure(wctx, name, func(ctx context.Context) error {
					return simulate(ctx, latency, o.allocKB)
				})
				inflight.Add(-1)
				if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("%s: %w", name, err)
				}
				if err == nil {
					done.Add(1)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return uint64(done.Load()), err
}

func jitter(rng *rand.Rand, maxLatency time.Duration) time.Duration {
	if maxLatency <= 0 {
		return 0
	}
	return time.Duration(rng.Int64N(int64(maxLatency) + 1))
}

// simulate 分配 allocKB KiB 后等待 latency，ctx 取消时提前返回。
func simulate(ctx context.Context, latency time.Duration, allocKB int) error {
	buf := make([]byte, allocKB<<10)
	for i := 0; i < len(buf); i += 4096 {
		buf[i] = byte(i)
	}
	defer runtime.KeepAlive(buf)

	if latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
