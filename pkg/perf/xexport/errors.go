package xexport

import "errors"

var (
	// ErrExportFailed 包装导出器返回的错误。
	ErrExportFailed = errors.New("xexport: export failed")

	// ErrExporterPanic 表示导出器发生 panic。
	ErrExporterPanic = errors.New("xexport: exporter panicked")

	// ErrInvalidCapacity 表示 MemoryExporter 容量不合法。
	ErrInvalidCapacity = errors.New("xexport: capacity must be positive")

	// ErrNilWriter 表示 ConsoleExporter 的输出为 nil。
	ErrNilWriter = errors.New("xexport: nil writer")

	// ErrNilLogger 表示 LogExporter 的 logger 为 nil。
	ErrNilLogger = errors.New("xexport: nil logger")

	// ErrNilMeterProvider 表示 OTelExporter 的 MeterProvider 为 nil。
	ErrNilMeterProvider = errors.New("xexport: nil meter provider")

	// ErrInvalidHistogramRange 表示 PercentileExporter 的取值范围不合法。
	ErrInvalidHistogramRange = errors.New("xexport: invalid histogram range")
)
