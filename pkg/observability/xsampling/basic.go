package xsampling

import (
	"context"
	"sync/atomic"
)

type alwaysSampler struct{}

var alwaysSamplerInstance = &alwaysSampler{}

// Always 返回全采样策略。
func Always() Sampler {
	return alwaysSamplerInstance
}

func (s *alwaysSampler) ShouldSample(context.Context) bool { return true }

func (s *alwaysSampler) Rate() float64 { return 1 }

type neverSampler struct{}

var neverSamplerInstance = &neverSampler{}

// Never 返回不采样策略。
func Never() Sampler {
	return neverSamplerInstance
}

func (s *neverSampler) ShouldSample(context.Context) bool { return false }

func (s *neverSampler) Rate() float64 { return 0 }

// ProbabilityOption 配置 ProbabilitySampler。
type ProbabilityOption func(*ProbabilitySampler)

// WithRand 替换随机源，测试中用于固定序列。nil 被忽略。
func WithRand(fn RandFunc) ProbabilityOption {
	return func(s *ProbabilitySampler) {
		if fn != nil {
			s.rand = fn
		}
	}
}

// ProbabilitySampler 每次调用独立地以概率 p 采样。
//
// 设计决策: 工厂函数返回具体类型而非 Sampler 接口，因为 Rate() 在配置回显与
// 诊断日志中有用。
type ProbabilitySampler struct {
	rate float64
	rand RandFunc
}

// NewProbabilitySampler 创建概率采样器，p 超出 [0, 1] 或为 NaN 时返回 ErrInvalidRate。
func NewProbabilitySampler(p float64, opts ...ProbabilityOption) (*ProbabilitySampler, error) {
	if err := validateRate(p); err != nil {
		return nil, err
	}
	s := &ProbabilitySampler{rate: p, rand: defaultRand}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ShouldSample 实现 [Sampler]。
func (s *ProbabilitySampler) ShouldSample(context.Context) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}
	return s.rand() < s.rate
}

// Rate 返回采样比率。
func (s *ProbabilitySampler) Rate() float64 {
	return s.rate
}

// CountSampler 每 n 次采样 1 次，第 1、n+1、2n+1... 次被采样。
//
// 内部使用 atomic.Uint64 计数器，自然溢出后通过无符号取模保持正确的采样周期。
type CountSampler struct {
	n       uint64
	counter atomic.Uint64
}

// NewCountSampler 创建计数采样器，n < 1 时返回 ErrInvalidCount。
func NewCountSampler(n int) (*CountSampler, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}
	return &CountSampler{n: uint64(n)}, nil
}

// ShouldSample 实现 [Sampler]。
func (s *CountSampler) ShouldSample(context.Context) bool {
	if s.n == 0 {
		// 零值实例按全采样处理，避免除零 panic
		return true
	}
	return (s.counter.Add(1)-1)%s.n == 0
}

// Rate 返回等效采样比率 1/n。
func (s *CountSampler) Rate() float64 {
	if s.n == 0 {
		return 1
	}
	return 1 / float64(s.n)
}

// Reset 重置计数器。
func (s *CountSampler) Reset() {
	s.counter.Store(0)
}

var (
	_ RateSampler = (*alwaysSampler)(nil)
	_ RateSampler = (*neverSampler)(nil)
	_ RateSampler = (*ProbabilitySampler)(nil)
	_ RateSampler = (*CountSampler)(nil)
)
