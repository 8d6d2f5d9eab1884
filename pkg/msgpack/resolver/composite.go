package resolver

import (
	"reflect"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/typeutil"
)

var _ formatter.DynamicResolver = (*CompositeResolver)(nil)

// CompositeResolver 按顺序询问一组解析器，第一个命中的结果生效并被缓存。
// 未命中不缓存。
type CompositeResolver struct {
	resolvers []formatter.Resolver

	typed  *typeutil.ConcurrentMap[reflect.Type, any]
	erased *typeutil.ConcurrentMap[reflect.Type, formatter.ErasedFormatter]
}

func NewCompositeResolver(resolvers ...formatter.Resolver) *CompositeResolver {
	return &CompositeResolver{
		resolvers: resolvers,
		typed:     typeutil.NewConcurrentMap[reflect.Type, any](),
		erased:    typeutil.NewConcurrentMap[reflect.Type, formatter.ErasedFormatter](),
	}
}

func (c *CompositeResolver) GetFormatter(typ reflect.Type) any {
	if f, ok := c.typed.Get(typ); ok {
		return f
	}
	for _, r := range c.resolvers {
		if f := r.GetFormatter(typ); f != nil {
			actual, _ := c.typed.GetOrInsert(typ, f)
			return actual
		}
	}
	return nil
}

// GetErasedFormatter 只会询问实现了 formatter.DynamicResolver 的成员。
func (c *CompositeResolver) GetErasedFormatter(typ reflect.Type) formatter.ErasedFormatter {
	if f, ok := c.erased.Get(typ); ok {
		return f
	}
	for _, r := range c.resolvers {
		dr, ok := r.(formatter.DynamicResolver)
		if !ok {
			continue
		}
		if f := dr.GetErasedFormatter(typ); f != nil {
			actual, _ := c.erased.GetOrInsert(typ, f)
			return actual
		}
	}
	return nil
}

// Cached 返回当前已缓存的类型数量。
func (c *CompositeResolver) Cached() int {
	return c.typed.Len()
}
