package xsys

import "errors"

// ErrUnsupportedPlatform 表示当前平台无法读取进程 CPU 时间。
var ErrUnsupportedPlatform = errors.New("xsys: unsupported platform")
