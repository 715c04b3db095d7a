package xalert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"
)

// Webhook 默认值。
const (
	DefaultWebhookAttempts = 3
	DefaultWebhookDelay    = 100 * time.Millisecond
	DefaultWebhookMaxDelay = 2 * time.Second
	// 连续失败达到该次数后熔断。
	DefaultWebhookTripAfter = 5
	DefaultWebhookOpenFor   = 30 * time.Second
)

// WebhookOption 定义 WebhookSink 的配置选项。
type WebhookOption func(*WebhookSink)

// WithHTTPClient 设置 HTTP 客户端，默认 http.DefaultClient。
// 单次请求的超时由 Dispatcher 传入的 ctx 控制。
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookSink) {
		if c != nil {
			w.client = c
		}
	}
}

// WithHeader 添加请求头（如鉴权 token）。
func WithHeader(key, value string) WebhookOption {
	return func(w *WebhookSink) {
		w.headers.Set(key, value)
	}
}

// WithRetry 设置总尝试次数与初始退避间隔。attempts 为 0 时保持默认。
func WithRetry(attempts uint, delay time.Duration) WebhookOption {
	return func(w *WebhookSink) {
		if attempts > 0 {
			w.attempts = attempts
		}
		if delay > 0 {
			w.delay = delay
		}
	}
}

// WithBreaker 设置熔断阈值（连续失败次数）与打开时长。
func WithBreaker(tripAfter uint32, openFor time.Duration) WebhookOption {
	return func(w *WebhookSink) {
		if tripAfter > 0 {
			w.tripAfter = tripAfter
		}
		if openFor > 0 {
			w.openFor = openFor
		}
	}
}

// WebhookSink 以 JSON POST 投递告警。
//
// 5xx、429 与网络错误按指数退避重试；其余 4xx 视为不可恢复。
// 每次完整的重试序列计为熔断器的一次请求，熔断打开期间直接失败，
// 避免故障的接收端拖住 Dispatcher 的 worker。
type WebhookSink struct {
	url       string
	client    *http.Client
	headers   http.Header
	attempts  uint
	delay     time.Duration
	tripAfter uint32
	openFor   time.Duration
	cb        *gobreaker.CircuitBreaker[any]
}

var _ Sink = (*WebhookSink)(nil)

// NewWebhookSink 创建 webhook sink。
func NewWebhookSink(url string, opts ...WebhookOption) (*WebhookSink, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	w := &WebhookSink{
		url:       url,
		client:    http.DefaultClient,
		headers:   make(http.Header),
		attempts:  DefaultWebhookAttempts,
		delay:     DefaultWebhookDelay,
		tripAfter: DefaultWebhookTripAfter,
		openFor:   DefaultWebhookOpenFor,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.headers.Set("Content-Type", "application/json")

	tripAfter := w.tripAfter
	w.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "xalert-webhook",
		MaxRequests: 1,
		Timeout:     w.openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= tripAfter
		},
	})
	return w, nil
}

// Send 实现 [Sink]。
func (w *WebhookSink) Send(ctx context.Context, a PerfAlert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("xalert: encode alert: %w", err)
	}
	_, err = w.cb.Execute(func() (any, error) {
		return nil, retry.New(
			retry.Context(ctx),
			retry.Attempts(w.attempts),
			retry.Delay(w.delay),
			retry.MaxDelay(DefaultWebhookMaxDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
		).Do(func() error {
			return w.post(ctx, body)
		})
	})
	return err
}

// State 返回熔断器状态。
func (w *WebhookSink) State() gobreaker.State {
	return w.cb.State()
}

func (w *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header = w.headers.Clone()

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // 只读响应
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		return retry.Unrecoverable(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}
}
