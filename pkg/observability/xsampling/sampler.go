package xsampling

import (
	"context"
	"math"
)

// Sampler 采样策略接口
//
// 返回 true 表示本次作用域应被完整测量。
// ctx 可携带 KeyBasedSampler 所需的 key；ctx 不得为 nil，占位请使用 context.TODO()。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

// RateSampler 可自省采样比率的采样器。
type RateSampler interface {
	Sampler
	Rate() float64
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}
