package xhist

import "errors"

// ErrInvalidBounds 表示桶边界为空、非严格递增或包含非有限值。
var ErrInvalidBounds = errors.New("xhist: bounds must be non-empty, finite and strictly ascending")
