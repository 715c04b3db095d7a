package xperf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkayhuz/norr/pkg/observability/xsampling"
	"github.com/berkayhuz/norr/pkg/perf/xexport"
)

func TestWithTags(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, TagsFrom(ctx))
	assert.Nil(t, TagsFrom(nil)) //nolint:staticcheck // nil ctx 需要被容忍
	assert.Equal(t, ctx, WithTags(ctx))

	ctx1 := WithTags(ctx, xexport.Tag{Key: "tenant", Value: "a"})
	ctx2 := WithTags(ctx1, xexport.Tag{Key: "tenant", Value: "b"}, xexport.Tag{Key: "topic", Value: "t"})

	assert.Len(t, TagsFrom(ctx1), 1)
	assert.Len(t, TagsFrom(ctx2), 3)

	v, ok := TagValue(ctx2, "tenant")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = TagValue(ctx1, "tenant")
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = TagValue(ctx1, "topic")
	assert.False(t, ok)
}

func TestSampleByTag(t *testing.T) {
	sampler, err := xsampling.NewKeyBasedSampler(0.5, SampleByTag("request_id"))
	require.NoError(t, err)

	ctx := WithTags(context.Background(), xexport.Tag{Key: "request_id", Value: "req-42"})
	first := sampler.ShouldSample(ctx)
	for range 20 {
		assert.Equal(t, first, sampler.ShouldSample(ctx))
	}
	assert.Empty(t, SampleByTag("request_id")(context.Background()))
}
