package xperf

import (
	"context"
	"slices"

	"github.com/berkayhuz/norr/pkg/observability/xsampling"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
)

type tagsKey struct{}

// WithTags 返回携带附加标签的 ctx。标签原样透传给 Metric 与 PerfAlert，
// 不参与聚合键。已有标签保留，新标签追加在后。
func WithTags(ctx context.Context, tags ...xexport.Tag) context.Context {
	if len(tags) == 0 {
		return ctx
	}
	prev := TagsFrom(ctx)
	merged := make([]xexport.Tag, 0, len(prev)+len(tags))
	merged = append(merged, prev...)
	merged = append(merged, tags...)
	return context.WithValue(ctx, tagsKey{}, merged)
}

// TagsFrom 返回 ctx 携带的标签，调用方不得修改返回的切片。
func TagsFrom(ctx context.Context) []xexport.Tag {
	if ctx == nil {
		return nil
	}
	tags, _ := ctx.Value(tagsKey{}).([]xexport.Tag)
	return tags
}

// TagValue 返回 ctx 中最后一个键为 key 的标签值。
func TagValue(ctx context.Context, key string) (string, bool) {
	tags := TagsFrom(ctx)
	for _, t := range slices.Backward(tags) {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// SampleByTag 返回从 ctx 标签中取采样 key 的 xsampling.KeyFunc，
// 配合 xsampling.NewKeyBasedSampler 让同一请求的作用域一起被采样。
func SampleByTag(key string) xsampling.KeyFunc {
	return func(ctx context.Context) string {
		v, _ := TagValue(ctx, key)
		return v
	}
}
