// Package resolver 提供 formatter.Resolver 的实现：
// 组装期注册表 Registry、带缓存的组合解析器 CompositeResolver，
// 以及包含全部标准格式化器的 Standard。
package resolver

import (
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

var _ formatter.DynamicResolver = (*Registry)(nil)

type entry struct {
	typed  any
	erased formatter.ErasedFormatter
}

// Registry 是在组装期构建的类型到格式化器的映射。
// 首次查找后注册表即被冻结，之后的注册会返回 ErrFormatterRegistryFrozen，
// 因此查找结果在整个生命周期内保持一致。
type Registry struct {
	log.Binder

	mu      sync.RWMutex
	entries map[reflect.Type]entry
	frozen  atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]entry),
	}
}

// Register 为 T 注册格式化器。重复注册时后者覆盖前者，并输出警告日志。
func Register[T any](reg *Registry, f formatter.Formatter[T]) error {
	typ := formatter.TypeOf[T]()
	if f == nil {
		return merr.WrapErrParameterInvalidMsg("nil formatter for %s", typ)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.frozen.Load() {
		return merr.WrapErrFormatterRegistryFrozen(typ.String())
	}

	if _, ok := reg.entries[typ]; ok {
		reg.Logger().Warn("formatter overridden", zap.Stringer("type", typ))
	} else {
		reg.Logger().Debug("formatter registered", zap.Stringer("type", typ))
	}
	reg.entries[typ] = entry{typed: f, erased: formatter.Erase(f)}
	return nil
}

// MustRegister 与 Register 相同，失败时 panic，适用于包初始化阶段。
func MustRegister[T any](reg *Registry, f formatter.Formatter[T]) {
	if err := Register(reg, f); err != nil {
		panic(err)
	}
}

func (reg *Registry) lookup(typ reflect.Type) (entry, bool) {
	if !reg.frozen.Load() {
		reg.mu.Lock()
		reg.frozen.Store(true)
		reg.mu.Unlock()
	}
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	e, ok := reg.entries[typ]
	return e, ok
}

func (reg *Registry) GetFormatter(typ reflect.Type) any {
	e, ok := reg.lookup(typ)
	if !ok {
		return nil
	}
	return e.typed
}

func (reg *Registry) GetErasedFormatter(typ reflect.Type) formatter.ErasedFormatter {
	e, ok := reg.lookup(typ)
	if !ok {
		return nil
	}
	return e.erased
}

// Frozen 返回注册表是否已冻结。
func (reg *Registry) Frozen() bool {
	return reg.frozen.Load()
}

// Len 返回已注册的类型数量。
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.entries)
}
