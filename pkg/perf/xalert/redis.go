package xalert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisMaxLen RedisSink 列表默认保留条数。
const DefaultRedisMaxLen = 1000

// RedisOption 定义 RedisSink 的配置选项。
type RedisOption func(*RedisSink)

// WithMaxLen 设置列表保留的最大条数。
func WithMaxLen(n int64) RedisOption {
	return func(s *RedisSink) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// WithPublish 在写入列表的同时 PUBLISH 到 channel。
func WithPublish(channel string) RedisOption {
	return func(s *RedisSink) {
		s.channel = channel
	}
}

// RedisSink 把告警以 JSON 写入 Redis 列表头部，并裁剪为最近 maxLen 条。
//
// LPUSH、LTRIM 与可选的 PUBLISH 在同一个 MULTI/EXEC 中执行。
type RedisSink struct {
	client  redis.Cmdable
	key     string
	channel string
	maxLen  int64
}

var _ Sink = (*RedisSink)(nil)

// NewRedisSink 创建 Redis sink。client 的生命周期由调用方管理。
func NewRedisSink(client redis.Cmdable, key string, opts ...RedisOption) (*RedisSink, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	s := &RedisSink{client: client, key: key, maxLen: DefaultRedisMaxLen}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Send 实现 [Sink]。
func (s *RedisSink) Send(ctx context.Context, a PerfAlert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("xalert: encode alert: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
		if s.channel != "" {
			pipe.Publish(ctx, s.channel, data)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("xalert: redis %s: %w", s.key, err)
	}
	return nil
}

// Recent 返回最近 n 条告警，最新的在前。
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]PerfAlert, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("xalert: redis %s: %w", s.key, err)
	}
	out := make([]PerfAlert, 0, len(raw))
	for _, r := range raw {
		var a PerfAlert
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			return nil, fmt.Errorf("xalert: decode alert: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
