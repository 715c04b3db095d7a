//go:build !unix

package xsys

import "time"

// ProcessCPUTime 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func ProcessCPUTime() (time.Duration, error) {
	return 0, ErrUnsupportedPlatform
}
