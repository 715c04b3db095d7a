package xalert

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr:         mr.Addr(),
		DialTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		PoolSize:     2,
		MaxRetries:   1,
	})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewRedisSink_Validation(t *testing.T) {
	client, _ := newTestRedis(t)
	_, err := NewRedisSink(nil, "k")
	assert.ErrorIs(t, err, ErrNilClient)
	_, err = NewRedisSink(client, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestRedisSink_CappedJournal(t *testing.T) {
	client, mr := newTestRedis(t)
	sink, err := NewRedisSink(client, "perf:alerts", WithMaxLen(2))
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, sink.Send(ctx, testAlert(name)))
	}

	list, err := mr.List("perf:alerts")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	recent, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].MetricName)
	assert.Equal(t, "b", recent[1].MetricName)
	assert.True(t, t0.Equal(recent[0].Timestamp))

	none, err := sink.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisSink_Publish(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "perf:alerts:live")
	defer sub.Close() //nolint:errcheck // 测试清理
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sink, err := NewRedisSink(client, "perf:alerts", WithPublish("perf:alerts:live"))
	require.NoError(t, err)
	require.NoError(t, sink.Send(ctx, testAlert("Checkout")))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"metric_name":"Checkout"`)
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisSink_ServerDown(t *testing.T) {
	client, mr := newTestRedis(t)
	sink, err := NewRedisSink(client, "perf:alerts")
	require.NoError(t, err)

	mr.SetError("LOADING dataset in memory")
	assert.Error(t, sink.Send(context.Background(), testAlert("x")))
}
