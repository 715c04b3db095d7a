package xexport

import "sync"

// DefaultMemoryCapacity MemoryExporter 默认容量。
const DefaultMemoryCapacity = 1024

// MemoryExporter 有界内存缓冲导出器，满后覆盖最旧的记录。
//
// 缓冲区由一把短临界区互斥锁保护（不在聚合核心的热路径上）。
type MemoryExporter struct {
	mu      sync.Mutex
	buf     []Metric
	head    int
	size    int
	dropped uint64
}

var _ Exporter = (*MemoryExporter)(nil)

// NewMemoryExporter 创建容量为 capacity 的缓冲导出器。
func NewMemoryExporter(capacity int) (*MemoryExporter, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &MemoryExporter{buf: make([]Metric, capacity)}, nil
}

// Export 实现 [Exporter]。
func (e *MemoryExporter) Export(m Metric) error {
	e.mu.Lock()
	e.buf[e.head] = m
	e.head = (e.head + 1) % len(e.buf)
	if e.size < len(e.buf) {
		e.size++
	} else {
		e.dropped++
	}
	e.mu.Unlock()
	return nil
}

// Metrics 按写入顺序返回缓冲区内容的副本。
func (e *MemoryExporter) Metrics() []Metric {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Metric, e.size)
	start := (e.head - e.size + len(e.buf)) % len(e.buf)
	for i := range e.size {
		out[i] = e.buf[(start+i)%len(e.buf)]
	}
	return out
}

// Len 返回缓冲的记录数。
func (e *MemoryExporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Dropped 返回因容量不足被覆盖的记录数。
func (e *MemoryExporter) Dropped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Reset 清空缓冲区。
func (e *MemoryExporter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.buf)
	e.head, e.size, e.dropped = 0, 0, 0
}
