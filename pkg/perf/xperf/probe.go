package xperf

import (
	"time"

	"github.com/berkayhuz/norr/pkg/util/xsys"
)

// Probe 读取进程级资源计数。两个方法都必须并发安全且廉价。
type Probe interface {
	// CPUTime 进程累计 CPU 时间；平台不支持时返回 0。
	CPUTime() time.Duration
	// AllocatedBytes 进程累计分配字节数，单调不减。
	AllocatedBytes() uint64
}

// SystemProbe 基于 xsys 的默认 Probe。
type SystemProbe struct{}

var _ Probe = SystemProbe{}

// CPUTime 实现 [Probe]。
func (SystemProbe) CPUTime() time.Duration {
	d, err := xsys.ProcessCPUTime()
	if err != nil {
		return 0
	}
	return d
}

// AllocatedBytes 实现 [Probe]。
func (SystemProbe) AllocatedBytes() uint64 {
	return xsys.AllocatedBytes()
}
