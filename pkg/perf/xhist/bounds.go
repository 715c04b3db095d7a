package xhist

import "math"

// 预置桶边界。
var (
	// DefaultBounds 毫秒级耗时边界（同样适用于 CPU 时间），覆盖 1ms 到 5s。
	DefaultBounds = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

	// BytesBounds 分配字节数边界，覆盖 1KiB 到 1GiB。
	BytesBounds = []float64{
		1 << 10,  // 1KiB
		32 << 10, // 32KiB
		1 << 20,  // 1MiB
		32 << 20, // 32MiB
		128 << 20,
		512 << 20,
		1 << 30, // 1GiB
	}
)

// ValidateBounds 校验桶边界：非空、有限、严格递增。
func ValidateBounds(bounds []float64) error {
	if len(bounds) == 0 {
		return ErrInvalidBounds
	}
	for i, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return ErrInvalidBounds
		}
		if i > 0 && b <= bounds[i-1] {
			return ErrInvalidBounds
		}
	}
	return nil
}
