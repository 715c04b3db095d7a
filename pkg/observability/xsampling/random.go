package xsampling

import "math/rand/v2"

// RandFunc 返回 [0.0, 1.0) 的随机数。
type RandFunc func() float64

// defaultRand 使用 math/rand/v2 的全局源：并发安全，无锁，零分配。
var defaultRand RandFunc = rand.Float64
