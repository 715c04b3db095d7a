//go:build unix

package xsys

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// 系统调用函数变量，支持测试中 mock 替换以覆盖错误路径。
// 注意：mock 测试不可使用 t.Parallel()，因为替换包级变量会引发竞态。
var getrusage = unix.Getrusage

// ProcessCPUTime 返回当前进程累计的用户态与内核态 CPU 时间之和。
// 并发安全：单次系统调用。
func ProcessCPUTime() (time.Duration, error) {
	var ru unix.Rusage
	if err := getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, fmt.Errorf("xsys: getrusage RUSAGE_SELF: %w", err)
	}
	return timevalDuration(ru.Utime) + timevalDuration(ru.Stime), nil
}

func timevalDuration(tv unix.Timeval) time.Duration {
	return time.Duration(tv.Nano())
}
