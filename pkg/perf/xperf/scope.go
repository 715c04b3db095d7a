package xperf

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/berkayhuz/norr/pkg/perf/xexport"
)

// Scope 一次度量区间。由 Monitor.Begin 创建，属于单个 goroutine。
type Scope struct {
	m          *Monitor // nil 表示未采样
	ctx        context.Context
	name       string
	tags       []xexport.Tag
	start      time.Time
	cpuStart   time.Duration
	allocStart uint64
	closed     atomic.Bool
}

// unsampled 所有未采样作用域共享的空值，只读。
var unsampled = &Scope{}

// Sampled 是否被采样。
func (s *Scope) Sampled() bool {
	return s.m != nil
}

// Name 返回操作名，未采样时为空。
func (s *Scope) Name() string {
	return s.name
}

// SetTag 追加一个只属于本作用域的标签。未采样或已结束时忽略。
func (s *Scope) SetTag(key, value string) {
	if s.m == nil || s.closed.Load() {
		return
	}
	s.tags = append(s.tags, xexport.Tag{Key: key, Value: value})
}

// Close 结束作用域并记录增量。重复调用是安全的空操作。
func (s *Scope) Close() {
	if s.m == nil {
		return
	}
	if !s.closed.CompareAndSwap(false, true) {
		s.m.doubleClosed.Add(1)
		return
	}
	s.m.record(s)
}

// Discard 放弃作用域，不记录任何数据。之后的 Close 是空操作。
func (s *Scope) Discard() {
	if s.m == nil {
		return
	}
	if s.closed.CompareAndSwap(false, true) {
		s.m.discarded.Add(1)
	}
}
