package xsys

import (
	"runtime/metrics"
	"sync"
)

const allocsMetric = "/gc/heap/allocs:bytes"

// samplePool 复用 metrics.Sample 切片，避免每次读取分配。
var samplePool = sync.Pool{
	New: func() any {
		s := make([]metrics.Sample, 1)
		s[0].Name = allocsMetric
		return &s
	},
}

// AllocatedBytes 返回进程启动以来累计的堆分配字节数，单调不减。
// 运行时不支持该指标时返回 0。
func AllocatedBytes() uint64 {
	sp := samplePool.Get().(*[]metrics.Sample) //nolint:errcheck // New 保证类型
	defer samplePool.Put(sp)

	s := *sp
	metrics.Read(s)
	if s[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return s[0].Value.Uint64()
}
