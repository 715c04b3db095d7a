package xhist

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Key 直方图注册表的键：操作名 + 维度。
type Key struct {
	Name string
	Kind string
}

// String 返回 "name|kind" 形式。
func (k Key) String() string {
	return k.Name + "|" + k.Kind
}

// KeyedState 带键的快照。
type KeyedState struct {
	Key   Key
	State State
}

// RegistryOption 定义 Registry 的配置选项。
type RegistryOption func(*registryOptions)

type registryOptions struct {
	defaultBounds []float64
	kindBounds    map[string][]float64
}

// WithDefaultBounds 设置未单独配置维度时使用的边界。默认为 [DefaultBounds]。
func WithDefaultBounds(bounds []float64) RegistryOption {
	return func(o *registryOptions) {
		o.defaultBounds = bounds
	}
}

// WithKindBounds 为指定维度设置边界。
func WithKindBounds(kind string, bounds []float64) RegistryOption {
	return func(o *registryOptions) {
		o.kindBounds[kind] = bounds
	}
}

// Registry 按 Key 持有 Histogram。
//
// 由所属的 Monitor 构造并持有，不存在进程级单例。
// 已存在 key 的查找走 sync.Map 的无锁读路径；首次出现的 key 通过 LoadOrStore 创建，
// 并发创建时仅有一个实例胜出。
type Registry struct {
	hists         sync.Map // Key -> *Histogram
	size          atomic.Int64
	defaultBounds []float64
	kindBounds    map[string][]float64
}

// NewRegistry 创建注册表。所有边界在构造时校验（fail-fast）。
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	o := &registryOptions{
		defaultBounds: DefaultBounds,
		kindBounds:    make(map[string][]float64),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := ValidateBounds(o.defaultBounds); err != nil {
		return nil, err
	}
	kindBounds := make(map[string][]float64, len(o.kindBounds))
	for kind, b := range o.kindBounds {
		if err := ValidateBounds(b); err != nil {
			return nil, err
		}
		kindBounds[kind] = slices.Clone(b)
	}
	return &Registry{
		defaultBounds: slices.Clone(o.defaultBounds),
		kindBounds:    kindBounds,
	}, nil
}

// Observe 向 key 对应的直方图记录观测值，必要时创建直方图。
func (r *Registry) Observe(key Key, v float64) {
	r.Histogram(key).Observe(v)
}

// Histogram 返回 key 对应的直方图，不存在时创建。
func (r *Registry) Histogram(key Key) *Histogram {
	if h, ok := r.hists.Load(key); ok {
		return h.(*Histogram) //nolint:errcheck,forcetypeassert // 仅存放 *Histogram
	}
	// 边界已在 NewRegistry 中校验，New 不会失败
	h, _ := New(r.boundsFor(key.Kind)) //nolint:errcheck // 见上
	actual, loaded := r.hists.LoadOrStore(key, h)
	if !loaded {
		r.size.Add(1)
	}
	return actual.(*Histogram) //nolint:errcheck,forcetypeassert // 仅存放 *Histogram
}

func (r *Registry) boundsFor(kind string) []float64 {
	if b, ok := r.kindBounds[kind]; ok {
		return b
	}
	return r.defaultBounds
}

// Snapshot 返回 key 的快照；key 从未被观测过时返回 false。
func (r *Registry) Snapshot(key Key) (State, bool) {
	h, ok := r.hists.Load(key)
	if !ok {
		return State{}, false
	}
	return h.(*Histogram).Snapshot(), true //nolint:errcheck,forcetypeassert // 仅存放 *Histogram
}

// Snapshots 返回所有 key 的快照，按 Name、Kind 排序。
func (r *Registry) Snapshots() []KeyedState {
	out := make([]KeyedState, 0, r.Len())
	r.hists.Range(func(k, v any) bool {
		out = append(out, KeyedState{
			Key:   k.(Key),                   //nolint:errcheck,forcetypeassert // 仅存放 Key
			State: v.(*Histogram).Snapshot(), //nolint:errcheck,forcetypeassert // 仅存放 *Histogram
		})
		return true
	})
	slices.SortFunc(out, func(a, b KeyedState) int {
		return cmp.Or(cmp.Compare(a.Key.Name, b.Key.Name), cmp.Compare(a.Key.Kind, b.Key.Kind))
	})
	return out
}

// Len 返回已创建的直方图数量。
func (r *Registry) Len() int {
	return int(r.size.Load())
}
