package msgpack

import (
	"sync"

	"github.com/samber/lo"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/conc"
)

var (
	batchPoolOnce sync.Once
	batchPool     *conc.Pool[[]byte]
)

func getBatchPool() *conc.Pool[[]byte] {
	batchPoolOnce.Do(func() {
		batchPool = conc.NewPool[[]byte](0, conc.WithPreAlloc(false))
	})
	return batchPool
}

// SerializeBatch 在共享协程池中并发编码 values，结果与输入一一对应。
// 任一元素编码失败时返回第一个错误。
func SerializeBatch[T any](values []T, opts ...Option) ([][]byte, error) {
	if len(values) == 0 {
		return [][]byte{}, nil
	}
	o := newOptions(opts...)
	f, err := formatter.GetWithVerify[T](o.resolver)
	if err != nil {
		return nil, err
	}
	typeName := formatter.TypeOf[T]().String()

	pool := getBatchPool()
	futures := lo.Map(values, func(v T, _ int) *conc.Future[[]byte] {
		return pool.Submit(func() ([]byte, error) {
			return o.encode(typeName, func(buf *[]byte) (int, error) {
				return f.Serialize(buf, 0, v, o.resolver)
			})
		})
	})
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	return lo.Map(futures, func(future *conc.Future[[]byte], _ int) []byte {
		return future.Value()
	}), nil
}

// DeserializeBatch 并发解码 items，任一元素解码失败时返回第一个错误。
func DeserializeBatch[T any](items [][]byte, opts ...Option) ([]T, error) {
	result := make([]T, len(items))
	if len(items) == 0 {
		return result, nil
	}
	pool := getBatchPool()
	futures := lo.Map(items, func(data []byte, i int) *conc.Future[[]byte] {
		return pool.Submit(func() ([]byte, error) {
			v, err := Deserialize[T](data, opts...)
			if err != nil {
				return nil, err
			}
			result[i] = v
			return nil, nil
		})
	})
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	return result, nil
}
