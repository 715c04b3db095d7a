package xconf

import "github.com/knadh/koanf/v2"

// Format 是配置文件编码，由扩展名推断或显式指定。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 是加载完成后的只读视图。xperf.ParseConfig 以空 path 解码整棵树。
type Config interface {
	// Client 暴露底层 koanf，用于 Get/Exists 等零散读取。
	Client() *koanf.Koanf

	// Unmarshal 把 path 下的子树解码到 target；path 为空表示整棵树。
	// 启用 WithStrict 时，未识别的键会导致解码失败。
	Unmarshal(path string, target any) error

	// Path 是来源文件；从字节创建时为空。
	Path() string

	Format() Format
}
