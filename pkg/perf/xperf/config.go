package xperf

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/berkayhuz/norr/pkg/config/xconf"
	"github.com/berkayhuz/norr/pkg/observability/xlog"
	"github.com/berkayhuz/norr/pkg/perf/xalert"
	"github.com/berkayhuz/norr/pkg/perf/xhist"
)

// 守卫实现。
const (
	GuardBloom = "bloom"
	GuardLRU   = "lru"
)

// Config Monitor 配置，构造时读取，之后不可变。
type Config struct {
	Sampling  SamplingConfig  `koanf:"sampling"`
	Alert     xalert.Options  `koanf:"alert"`
	Guard     GuardConfig     `koanf:"guard"`
	Histogram HistogramConfig `koanf:"histogram"`
	Dispatch  DispatchConfig  `koanf:"dispatch"`
	Log       LogConfig       `koanf:"log"`
}

// SamplingConfig 采样配置。
type SamplingConfig struct {
	// Probability 被完整测量的作用域比例，[0, 1]。
	Probability float64 `koanf:"probability"`
}

// GuardConfig 告警去重配置。
type GuardConfig struct {
	CoolDown time.Duration `koanf:"cooldown"`
	// Kind 为 "bloom"（默认，内存有界、近似）或 "lru"（精确、按 key 计时）。
	Kind    string `koanf:"kind"`
	Bits    uint64 `koanf:"bits"`
	Hashes  int    `koanf:"hashes"`
	LRUSize int    `koanf:"lru_size"`
}

// HistogramConfig 各维度的桶边界，为空时使用默认值。
type HistogramConfig struct {
	DurationBounds []float64 `koanf:"duration_bounds"`
	CPUBounds      []float64 `koanf:"cpu_bounds"`
	AllocBounds    []float64 `koanf:"alloc_bounds"`
}

// DispatchConfig 异步告警投递配置。
type DispatchConfig struct {
	Workers     int           `koanf:"workers"`
	QueueSize   int           `koanf:"queue_size"`
	SendTimeout time.Duration `koanf:"send_timeout"`
}

// LogConfig Monitor 自建 logger 的配置（未通过 WithLogger 注入时生效）。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultConfig 返回默认配置：全采样，告警关闭，一分钟冷却。
func DefaultConfig() Config {
	return Config{
		Sampling: SamplingConfig{Probability: 1},
		Guard: GuardConfig{
			CoolDown: time.Minute,
			Kind:     GuardBloom,
			Bits:     1 << 16,
			Hashes:   4,
			LRUSize:  4096,
		},
		Histogram: HistogramConfig{
			DurationBounds: slices.Clone(xhist.DefaultBounds),
			CPUBounds:      slices.Clone(xhist.DefaultBounds),
			AllocBounds:    slices.Clone(xhist.BytesBounds),
		},
		Dispatch: DispatchConfig{
			Workers:     xalert.DefaultWorkers,
			QueueSize:   xalert.DefaultQueueSize,
			SendTimeout: xalert.DefaultSendTimeout,
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Validate 校验配置，返回第一个错误。
func (c Config) Validate() error {
	p := c.Sampling.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	if err := c.Alert.Validate(); err != nil {
		return err
	}
	if err := c.Guard.validate(); err != nil {
		return err
	}
	h := c.Histogram
	for _, nb := range []struct {
		name   string
		bounds []float64
	}{
		{"duration_bounds", h.DurationBounds},
		{"cpu_bounds", h.CPUBounds},
		{"alloc_bounds", h.AllocBounds},
	} {
		if len(nb.bounds) == 0 {
			continue
		}
		if err := xhist.ValidateBounds(nb.bounds); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidHistogram, nb.name, err)
		}
	}
	d := c.Dispatch
	if d.Workers <= 0 || d.QueueSize <= 0 || d.SendTimeout <= 0 {
		return fmt.Errorf("%w: workers=%d queue_size=%d send_timeout=%s",
			ErrInvalidDispatch, d.Workers, d.QueueSize, d.SendTimeout)
	}
	if c.Log.Level != "" {
		if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLog, err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLog, c.Log.Format)
	}
	return nil
}

func (g GuardConfig) validate() error {
	if g.CoolDown <= 0 {
		return fmt.Errorf("%w: cooldown must be positive, got %s", ErrInvalidGuard, g.CoolDown)
	}
	switch g.Kind {
	case "", GuardBloom:
	case GuardLRU:
		if g.LRUSize <= 0 {
			return fmt.Errorf("%w: lru_size must be positive", ErrInvalidGuard)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidGuard, g.Kind)
	}
	return nil
}

// LoadConfig 从 YAML/JSON 文件加载配置，文件中缺省的字段保留默认值。
func LoadConfig(path string, opts ...xconf.Option) (Config, error) {
	c, err := xconf.New(path, opts...)
	if err != nil {
		return Config{}, err
	}
	return decode(c)
}

// ParseConfig 从字节数据解析配置。
func ParseConfig(data []byte, format xconf.Format, opts ...xconf.Option) (Config, error) {
	c, err := xconf.NewFromBytes(data, format, opts...)
	if err != nil {
		return Config{}, err
	}
	return decode(c)
}

func decode(c xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	// 边界列表整体替换而非按下标合并
	if c.Client().Exists("histogram.duration_bounds") {
		cfg.Histogram.DurationBounds = nil
	}
	if c.Client().Exists("histogram.cpu_bounds") {
		cfg.Histogram.CPUBounds = nil
	}
	if c.Client().Exists("histogram.alloc_bounds") {
		cfg.Histogram.AllocBounds = nil
	}
	if err := c.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
