// Package xconf 加载性能监控的配置文件，基于 koanf 实现。
//
// xconf 只负责读取与反序列化：文件或字节数据经 koanf 解析后，
// 通过 Unmarshal 映射到带 koanf 标签的结构体。默认值与取值校验由使用方
// （xperf.Config）负责。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # Unmarshal
//
// 反序列化使用 mapstructure，允许弱类型转换（字符串 "8080" 可转为 int），
// 并把 "30s"、"1m" 之类的字符串解码为 time.Duration。
// WithStrict 开启后，配置中出现目标结构体没有的键会返回 ErrUnmarshalFailed，
// 用于 CLI 的 validate 命令捕捉拼写错误。
//
// 设计决策: 不提供热重载。监控引擎在构造时读取配置，运行期配置不可变，
// 变更通过重建 Monitor 生效。
package xconf
