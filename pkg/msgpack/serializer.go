package msgpack

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/typeutil"
)

// Serializer 抽象了“对象 <-> 字节流”的序列化能力，供只持有 any 的调用方使用。
type Serializer interface {
	// Marshal 将任意已注册类型的值编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象，v 必须是非 nil 指针。
	Unmarshal(data []byte, v any) error
}

// DynamicSerializer 通过 formatter.DynamicResolver 在运行时按值的类型查找格式化器。
type DynamicSerializer struct {
	log.Binder

	opts     *options
	resolver formatter.DynamicResolver
	// missing 记录已告警过的未注册类型，每个类型只告警一次。
	missing *typeutil.ConcurrentSet[reflect.Type]
}

// 编译期断言：确保 DynamicSerializer 实现了 Serializer 接口。
var _ Serializer = (*DynamicSerializer)(nil)

// NewSerializer 创建一个 DynamicSerializer，解析器必须实现 formatter.DynamicResolver。
func NewSerializer(opts ...Option) (*DynamicSerializer, error) {
	o := newOptions(opts...)
	dr, ok := o.resolver.(formatter.DynamicResolver)
	if !ok {
		return nil, merr.WrapErrParameterInvalidMsg("resolver %T does not provide erased formatters", o.resolver)
	}
	return &DynamicSerializer{
		opts:     o,
		resolver: dr,
		missing:  typeutil.NewConcurrentSet[reflect.Type](),
	}, nil
}

func (s *DynamicSerializer) formatterOf(typ reflect.Type) (formatter.ErasedFormatter, error) {
	ef := s.resolver.GetErasedFormatter(typ)
	if ef == nil {
		if s.missing.Insert(typ) {
			s.Logger().Warn("no formatter registered for type", zap.Stringer("type", typ))
		}
		return nil, merr.WrapErrFormatterNotRegistered(typ.String())
	}
	return ef, nil
}

// Marshal 编码 v；v 为 nil 时输出单个 nil 标记。
func (s *DynamicSerializer) Marshal(v any) ([]byte, error) {
	if v == nil {
		return []byte{primitive.NilCode}, nil
	}
	typ := reflect.TypeOf(v)
	ef, err := s.formatterOf(typ)
	if err != nil {
		return nil, err
	}
	return s.opts.encode(typ.String(), func(buf *[]byte) (int, error) {
		return ef.SerializeAny(buf, 0, v, s.resolver)
	})
}

func (s *DynamicSerializer) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return merr.WrapErrParameterInvalidMsg("unmarshal target must be a non-nil pointer, got %T", v)
	}
	typ := rv.Type().Elem()
	ef, err := s.formatterOf(typ)
	if err != nil {
		return err
	}
	return s.opts.decode(typ.String(), data, func(payload []byte) (int, error) {
		value, n, err := ef.DeserializeAny(payload, 0, s.resolver)
		if err != nil {
			return 0, err
		}
		if value == nil {
			rv.Elem().Set(reflect.Zero(typ))
		} else {
			rv.Elem().Set(reflect.ValueOf(value))
		}
		return n, nil
	})
}
