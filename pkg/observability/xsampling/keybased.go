package xsampling

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
)

// KeyFunc 从上下文中提取采样 key。
//
// 返回空字符串时 KeyBasedSampler 回退到随机采样，保持近似采样率但失去一致性。
type KeyFunc func(ctx context.Context) string

// KeyBasedOption 配置 KeyBasedSampler 的可选参数
type KeyBasedOption func(*KeyBasedSampler)

// WithOnEmptyKey 设置空 key 回调，用于发现上下文传播链路断裂。
// 回调在采样热路径上同步执行，应当轻量（如原子计数器递增）。nil 回调会被忽略。
func WithOnEmptyKey(fn func()) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		if fn != nil {
			s.onEmptyKey = fn
		}
	}
}

// WithKeyRand 替换空 key 回退时使用的随机源。
func WithKeyRand(fn RandFunc) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		if fn != nil {
			s.rand = fn
		}
	}
}

// KeyBasedSampler 基于 key 的一致性采样。
//
// 对于相同的 key，在相同的 rate 下总是产生相同的采样决策。典型 key 是请求 ID：
// 同一请求内的所有作用域被一起测量或一起跳过，使嵌套耗时可以相互对照。
type KeyBasedSampler struct {
	rate       float64
	keyFunc    KeyFunc
	rand       RandFunc
	onEmptyKey func()
}

// NewKeyBasedSampler 创建基于 key 的一致性采样器。
// rate 超出 [0, 1] 或为 NaN 时返回 ErrInvalidRate；keyFunc 为 nil 时返回 ErrNilKeyFunc。
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeyBasedSampler{rate: rate, keyFunc: keyFunc, rand: defaultRand}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ShouldSample 实现 [Sampler]。
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}

	var key string
	if ctx != nil {
		key = s.keyFunc(ctx)
	}
	if key == "" {
		if s.onEmptyKey != nil {
			s.onEmptyKey()
		}
		return s.rand() < s.rate
	}

	// hashValue == MaxUint64 时 normalized 可能为 1.0，rate < 1 时不会通过比较。
	normalized := float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率。
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

var _ RateSampler = (*KeyBasedSampler)(nil)
