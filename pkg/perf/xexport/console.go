package xexport

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ConsoleExporter 每条 Metric 输出一行：
//
//	15:04:05.000 perf Checkout duration=12.345ms region=eu
//
// 颜色在非终端输出时由 fatih/color 自动关闭，也可用 WithNoColor 强制关闭。
type ConsoleExporter struct {
	mu    sync.Mutex // 保证单行写入不交错
	w     io.Writer
	name  *color.Color
	kinds map[Kind]*color.Color
}

var _ Exporter = (*ConsoleExporter)(nil)

// ConsoleOption 定义 ConsoleExporter 的配置选项。
type ConsoleOption func(*ConsoleExporter)

// WithNoColor 关闭颜色输出。
func WithNoColor() ConsoleOption {
	return func(e *ConsoleExporter) {
		e.name.DisableColor()
		for _, c := range e.kinds {
			c.DisableColor()
		}
	}
}

// NewConsoleExporter 创建写入 w 的控制台导出器。
func NewConsoleExporter(w io.Writer, opts ...ConsoleOption) (*ConsoleExporter, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	e := &ConsoleExporter{
		w:    w,
		name: color.New(color.Bold),
		kinds: map[Kind]*color.Color{
			KindDuration:   color.New(color.FgCyan),
			KindCPU:        color.New(color.FgMagenta),
			KindAllocation: color.New(color.FgYellow),
			KindCustom:     color.New(color.FgWhite),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Export 实现 [Exporter]。
func (e *ConsoleExporter) Export(m Metric) error {
	var sb strings.Builder
	sb.WriteString(m.Timestamp.Format("15:04:05.000"))
	sb.WriteString(" perf ")
	sb.WriteString(e.name.Sprint(m.Name))
	sb.WriteByte(' ')
	sb.WriteString(e.kindColor(m.Kind).Sprintf("%s=%s", m.Kind, formatValue(m)))
	for _, t := range m.Tags {
		sb.WriteByte(' ')
		sb.WriteString(t.Key)
		sb.WriteByte('=')
		sb.WriteString(t.Value)
	}
	sb.WriteByte('\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *ConsoleExporter) kindColor(k Kind) *color.Color {
	if c, ok := e.kinds[k]; ok {
		return c
	}
	return e.kinds[KindCustom]
}

// formatValue 耗时按 time.Duration 风格输出，字节按二进制单位输出。
func formatValue(m Metric) string {
	switch m.Kind {
	case KindDuration, KindCPU:
		return time.Duration(m.Value * float64(time.Millisecond)).String()
	case KindAllocation:
		return FormatBytes(m.Value)
	default:
		return strconv.FormatFloat(m.Value, 'g', -1, 64)
	}
}

// FormatBytes 以 B/KiB/MiB/GiB 格式化字节数。
func FormatBytes(v float64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%.0fB", v)
	}
	div, exp := float64(unit), 0
	for n := v / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", v/div, "KMG"[exp])
}
