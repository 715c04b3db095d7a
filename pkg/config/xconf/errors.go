package xconf

import "errors"

var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示扩展名或格式既不是 YAML 也不是 JSON。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示读取配置文件失败。
	ErrLoadFailed = errors.New("xconf: load config")

	// ErrParseFailed 表示配置内容无法解析。
	ErrParseFailed = errors.New("xconf: parse config")

	// ErrUnmarshalFailed 表示解码到目标结构体失败，严格模式下包括未知键。
	ErrUnmarshalFailed = errors.New("xconf: unmarshal config")
)
