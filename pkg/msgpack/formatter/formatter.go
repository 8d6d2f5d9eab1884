// Package formatter 定义类型格式化器（Formatter）与解析器（Resolver）协议，
// 并提供标准值类型的格式化器目录。
//
// 所有格式化器均为零大小、无状态的值，可在任意 goroutine 间共享。
// 读写位置由调用方通过 offset 显式传入，格式化器只返回本次写入或读取的字节数。
package formatter

import (
	"reflect"

	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

// Formatter 是类型 T 的编解码器。
type Formatter[T any] interface {
	// Serialize 从 offset 处写入 v，返回写入的字节数。
	Serialize(buf *[]byte, offset int, v T, r Resolver) (int, error)
	// Deserialize 从 offset 处读取一个 T，返回值与读取的字节数。
	Deserialize(b []byte, offset int, r Resolver) (T, int, error)
}

// Resolver 按类型查找格式化器。
// GetFormatter 返回 Formatter[T]（T 与 typ 一致），未注册时返回 nil。
// 同一类型必须始终返回行为一致的格式化器，且实现需支持并发查找。
type Resolver interface {
	GetFormatter(typ reflect.Type) any
}

// ErasedFormatter 是擦除了类型参数的格式化器，供只持有 any 的调用方使用。
type ErasedFormatter interface {
	Type() reflect.Type
	SerializeAny(buf *[]byte, offset int, v any, r Resolver) (int, error)
	DeserializeAny(b []byte, offset int, r Resolver) (any, int, error)
}

// DynamicResolver 在 Resolver 的基础上额外提供擦除后的格式化器。
type DynamicResolver interface {
	Resolver
	GetErasedFormatter(typ reflect.Type) ErasedFormatter
}

// TypeOf 返回 T 的 reflect.Type，对接口类型同样有效。
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typeName[T any]() string {
	return TypeOf[T]().String()
}

// Get 从 r 中取出 T 的格式化器，未注册时返回 nil。
func Get[T any](r Resolver) Formatter[T] {
	if r == nil {
		return nil
	}
	f, _ := r.GetFormatter(TypeOf[T]()).(Formatter[T])
	return f
}

// GetWithVerify 与 Get 相同，但在未注册时返回 ErrFormatterNotRegistered。
func GetWithVerify[T any](r Resolver) (Formatter[T], error) {
	f := Get[T](r)
	if f == nil {
		return nil, merr.WrapErrFormatterNotRegistered(typeName[T]())
	}
	return f, nil
}

type erased[T any] struct {
	inner Formatter[T]
}

// Erase 将 Formatter[T] 包装为 ErasedFormatter。
func Erase[T any](f Formatter[T]) ErasedFormatter {
	return erased[T]{inner: f}
}

func (e erased[T]) Type() reflect.Type {
	return TypeOf[T]()
}

func (e erased[T]) SerializeAny(buf *[]byte, offset int, v any, r Resolver) (int, error) {
	var value T
	if v != nil {
		typed, ok := v.(T)
		if !ok {
			return 0, merr.WrapErrTypeMismatch(typeName[T](), reflect.TypeOf(v).String())
		}
		value = typed
	}
	return e.inner.Serialize(buf, offset, value, r)
}

func (e erased[T]) DeserializeAny(b []byte, offset int, r Resolver) (any, int, error) {
	v, n, err := e.inner.Deserialize(b, offset, r)
	if err != nil {
		return nil, 0, err
	}
	return v, n, nil
}
