// Package msgpack 是格式化器目录的入口：按类型编解码、动态 Serializer、
// 压缩信封、流式读取以及调试用的 JSON 输出。
package msgpack

import (
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
)

// Serialize 使用解析器中 T 的格式化器编码 v。
func Serialize[T any](v T, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	f, err := formatter.GetWithVerify[T](o.resolver)
	if err != nil {
		return nil, err
	}
	return o.encode(formatter.TypeOf[T]().String(), func(buf *[]byte) (int, error) {
		return f.Serialize(buf, 0, v, o.resolver)
	})
}

// Deserialize 从 data 的起始处解码一个 T，data 中多余的字节被忽略。
func Deserialize[T any](data []byte, opts ...Option) (T, error) {
	var result T
	o := newOptions(opts...)
	f, err := formatter.GetWithVerify[T](o.resolver)
	if err != nil {
		return result, err
	}
	err = o.decode(formatter.TypeOf[T]().String(), data, func(payload []byte) (int, error) {
		v, n, err := f.Deserialize(payload, 0, o.resolver)
		if err != nil {
			return 0, err
		}
		result = v
		return n, nil
	})
	return result, err
}
