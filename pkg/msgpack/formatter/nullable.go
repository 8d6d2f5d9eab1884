package formatter

import (
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
)

// NullableFormatter 为值类型 T 提供 *T 的编码：nil 写入 nil 标记，
// 否则使用从 Resolver 取得的 T 的格式化器。
type NullableFormatter[T any] struct{}

func (NullableFormatter[T]) Serialize(buf *[]byte, offset int, v *T, r Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	f, err := GetWithVerify[T](r)
	if err != nil {
		return 0, err
	}
	return f.Serialize(buf, offset, *v, r)
}

func (NullableFormatter[T]) Deserialize(b []byte, offset int, r Resolver) (*T, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	f, err := GetWithVerify[T](r)
	if err != nil {
		return nil, 0, err
	}
	v, n, err := f.Deserialize(b, offset, r)
	if err != nil {
		return nil, 0, err
	}
	return &v, n, nil
}

// StaticNullableFormatter 与 NullableFormatter 相同，但内部格式化器在构造时固定，
// 不经过 Resolver 查找。
type StaticNullableFormatter[T any] struct {
	inner Formatter[T]
}

func NewStaticNullable[T any](inner Formatter[T]) StaticNullableFormatter[T] {
	return StaticNullableFormatter[T]{inner: inner}
}

func (f StaticNullableFormatter[T]) Serialize(buf *[]byte, offset int, v *T, r Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return f.inner.Serialize(buf, offset, *v, r)
}

func (f StaticNullableFormatter[T]) Deserialize(b []byte, offset int, r Resolver) (*T, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	v, n, err := f.inner.Deserialize(b, offset, r)
	if err != nil {
		return nil, 0, err
	}
	return &v, n, nil
}
