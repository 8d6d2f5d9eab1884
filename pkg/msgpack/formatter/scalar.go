package formatter

import (
	"math"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

// 标量格式化器，主要作为键值对等组合类型的子格式化器。
var (
	Bool    Formatter[bool]    = BoolFormatter{}
	Int     Formatter[int]     = IntFormatter{}
	Int32   Formatter[int32]   = Int32Formatter{}
	Int64   Formatter[int64]   = Int64Formatter{}
	Uint64  Formatter[uint64]  = Uint64Formatter{}
	Float32 Formatter[float32] = Float32Formatter{}
	Float64 Formatter[float64] = Float64Formatter{}
)

type BoolFormatter struct{}

func (BoolFormatter) Serialize(buf *[]byte, offset int, v bool, _ Resolver) (int, error) {
	return primitive.WriteBool(buf, offset, v), nil
}

func (BoolFormatter) Deserialize(b []byte, offset int, _ Resolver) (bool, int, error) {
	return primitive.ReadBool(b, offset)
}

type IntFormatter struct{}

func (IntFormatter) Serialize(buf *[]byte, offset int, v int, _ Resolver) (int, error) {
	return primitive.WriteInt64(buf, offset, int64(v)), nil
}

func (IntFormatter) Deserialize(b []byte, offset int, _ Resolver) (int, int, error) {
	v, n, err := primitive.ReadInt64(b, offset)
	if err != nil {
		return 0, 0, err
	}
	if v < math.MinInt || v > math.MaxInt {
		return 0, 0, merr.WrapErrValueOutOfRange[int64]("int", v, math.MinInt, math.MaxInt)
	}
	return int(v), n, nil
}

type Int32Formatter struct{}

func (Int32Formatter) Serialize(buf *[]byte, offset int, v int32, _ Resolver) (int, error) {
	return primitive.WriteInt64(buf, offset, int64(v)), nil
}

func (Int32Formatter) Deserialize(b []byte, offset int, _ Resolver) (int32, int, error) {
	v, n, err := primitive.ReadInt64(b, offset)
	if err != nil {
		return 0, 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, 0, merr.WrapErrValueOutOfRange[int64]("int32", v, math.MinInt32, math.MaxInt32)
	}
	return int32(v), n, nil
}

type Int64Formatter struct{}

func (Int64Formatter) Serialize(buf *[]byte, offset int, v int64, _ Resolver) (int, error) {
	return primitive.WriteInt64(buf, offset, v), nil
}

func (Int64Formatter) Deserialize(b []byte, offset int, _ Resolver) (int64, int, error) {
	return primitive.ReadInt64(b, offset)
}

type Uint64Formatter struct{}

func (Uint64Formatter) Serialize(buf *[]byte, offset int, v uint64, _ Resolver) (int, error) {
	return primitive.WriteUint64(buf, offset, v), nil
}

func (Uint64Formatter) Deserialize(b []byte, offset int, _ Resolver) (uint64, int, error) {
	return primitive.ReadUint64(b, offset)
}

type Float32Formatter struct{}

func (Float32Formatter) Serialize(buf *[]byte, offset int, v float32, _ Resolver) (int, error) {
	return primitive.WriteFloat32(buf, offset, v), nil
}

func (Float32Formatter) Deserialize(b []byte, offset int, _ Resolver) (float32, int, error) {
	return primitive.ReadFloat32(b, offset)
}

type Float64Formatter struct{}

func (Float64Formatter) Serialize(buf *[]byte, offset int, v float64, _ Resolver) (int, error) {
	return primitive.WriteFloat64(buf, offset, v), nil
}

func (Float64Formatter) Deserialize(b []byte, offset int, _ Resolver) (float64, int, error) {
	return primitive.ReadFloat64(b, offset)
}
