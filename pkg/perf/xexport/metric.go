package xexport

import (
	"strconv"
	"time"
)

// Kind 度量维度。
type Kind int

const (
	// KindDuration 墙钟耗时（毫秒）。
	KindDuration Kind = iota
	// KindCPU 进程 CPU 时间（毫秒）。
	KindCPU
	// KindAllocation 分配字节数。
	KindAllocation
	// KindCustom 调用方自定义。
	KindCustom
)

// String 返回维度名，同时用作聚合键的 Kind。
func (k Kind) String() string {
	switch k {
	case KindDuration:
		return "duration"
	case KindCPU:
		return "cpu"
	case KindAllocation:
		return "alloc"
	case KindCustom:
		return "custom"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Unit 返回维度单位（UCUM）。
func (k Kind) Unit() string {
	switch k {
	case KindDuration, KindCPU:
		return "ms"
	case KindAllocation:
		return "By"
	default:
		return "1"
	}
}

// Tag 随度量透传的键值对（如消息属性），不参与聚合键。
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metric 一次度量在某个维度上的不可变记录。
//
// Tags 在同一 Sample 产生的多条 Metric 之间共享，导出器不得修改。
type Metric struct {
	Name      string
	Kind      Kind
	Value     float64
	Unit      string
	Timestamp time.Time // UTC
	Tags      []Tag
}

// Sample 一个已采样、已结束的作用域的度量结果。
type Sample struct {
	Name       string
	DurationMs float64
	CPUMs      float64
	AllocBytes int64
	Timestamp  time.Time // UTC，作用域结束时刻
	Tags       []Tag
}

// Metrics 按耗时、CPU、分配的顺序构造非零维度的 Metric。
func (s Sample) Metrics() []Metric {
	out := make([]Metric, 0, 3)
	out = s.appendMetric(out, KindDuration, s.DurationMs)
	out = s.appendMetric(out, KindCPU, s.CPUMs)
	out = s.appendMetric(out, KindAllocation, float64(s.AllocBytes))
	return out
}

func (s Sample) appendMetric(out []Metric, kind Kind, v float64) []Metric {
	if v == 0 {
		return out
	}
	return append(out, Metric{
		Name:      s.Name,
		Kind:      kind,
		Value:     v,
		Unit:      kind.Unit(),
		Timestamp: s.Timestamp,
		Tags:      s.Tags,
	})
}
