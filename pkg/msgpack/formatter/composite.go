package formatter

import (
	"math"
	"time"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

const (
	// TicksPerSecond 为每秒的 tick 数，1 tick = 100ns。
	TicksPerSecond int64 = 10_000_000

	tickDuration = 100 * time.Nanosecond

	// 时区偏移的取值范围为 ±14 小时。
	maxOffsetTicks = 14 * 3600 * TicksPerSecond

	pairArity = 2
)

var (
	TimeSpan       Formatter[time.Duration] = TimeSpanFormatter{}
	DateTimeOffset Formatter[time.Time]     = DateTimeOffsetFormatter{}
	Timestamp      Formatter[time.Time]     = TimestampFormatter{}
	Complex128     Formatter[complex128]    = Complex128Formatter{}
	Complex64      Formatter[complex64]     = Complex64Formatter{}
)

// readArity 读取数组头并校验元素个数。
func readArity[T any](b []byte, offset int, expected int) (int, error) {
	count, n, err := primitive.ReadArrayHeader(b, offset)
	if err != nil {
		return 0, err
	}
	if count != expected {
		return 0, merr.WrapErrArityMismatch(typeName[T](), expected, count)
	}
	return n, nil
}

// TimeSpanFormatter 将 time.Duration 编码为单个 int64 tick 计数（不加数组头），
// 始终使用 9 字节的 int64 块。不足 100ns 的部分被截断。
type TimeSpanFormatter struct{}

func (TimeSpanFormatter) Serialize(buf *[]byte, offset int, v time.Duration, _ Resolver) (int, error) {
	return primitive.WriteInt64ForceInt64Block(buf, offset, int64(v/tickDuration)), nil
}

func (TimeSpanFormatter) Deserialize(b []byte, offset int, _ Resolver) (time.Duration, int, error) {
	ticks, n, err := primitive.ReadInt64(b, offset)
	if err != nil {
		return 0, 0, err
	}
	const lower, upper = math.MinInt64 / int64(tickDuration), math.MaxInt64 / int64(tickDuration)
	if ticks < lower || ticks > upper {
		return 0, 0, merr.WrapErrValueOutOfRange(typeName[time.Duration](), ticks, lower, upper)
	}
	return time.Duration(ticks) * tickDuration, n, nil
}

// DateTimeOffsetFormatter 将 time.Time 编码为 [UTC 时间戳, 时区偏移 tick]。
// 解码结果位于固定偏移的时区，时区名称不保留；偏移为 0 时返回 UTC。
type DateTimeOffsetFormatter struct{}

func (DateTimeOffsetFormatter) Serialize(buf *[]byte, offset int, v time.Time, _ Resolver) (int, error) {
	_, zoneOffset := v.Zone()
	offsetTicks := int64(zoneOffset) * TicksPerSecond
	if offsetTicks < -maxOffsetTicks || offsetTicks > maxOffsetTicks {
		return 0, merr.WrapErrValueOutOfRange("time.Time offset", offsetTicks, -maxOffsetTicks, maxOffsetTicks)
	}
	n := primitive.WriteArrayHeader(buf, offset, pairArity)
	n += primitive.WriteTime(buf, offset+n, v)
	n += primitive.WriteInt64ForceInt64Block(buf, offset+n, offsetTicks)
	return n, nil
}

func (DateTimeOffsetFormatter) Deserialize(b []byte, offset int, _ Resolver) (time.Time, int, error) {
	n, err := readArity[time.Time](b, offset, pairArity)
	if err != nil {
		return time.Time{}, 0, err
	}
	instant, read, err := primitive.ReadTime(b, offset+n)
	if err != nil {
		return time.Time{}, 0, err
	}
	n += read
	offsetTicks, read, err := primitive.ReadInt64(b, offset+n)
	if err != nil {
		return time.Time{}, 0, err
	}
	n += read
	if offsetTicks < -maxOffsetTicks || offsetTicks > maxOffsetTicks {
		return time.Time{}, 0, merr.WrapErrValueOutOfRange("time.Time offset", offsetTicks, -maxOffsetTicks, maxOffsetTicks)
	}
	if offsetTicks == 0 {
		return instant, n, nil
	}
	return instant.In(time.FixedZone("", int(offsetTicks/TicksPerSecond))), n, nil
}

// TimestampFormatter 直接使用时间戳扩展编码 UTC 时刻，不保留时区。
type TimestampFormatter struct{}

func (TimestampFormatter) Serialize(buf *[]byte, offset int, v time.Time, _ Resolver) (int, error) {
	return primitive.WriteTime(buf, offset, v), nil
}

func (TimestampFormatter) Deserialize(b []byte, offset int, _ Resolver) (time.Time, int, error) {
	return primitive.ReadTime(b, offset)
}

// Complex128Formatter 编码为 [实部, 虚部]，均为 float64。
type Complex128Formatter struct{}

func (Complex128Formatter) Serialize(buf *[]byte, offset int, v complex128, _ Resolver) (int, error) {
	n := primitive.WriteArrayHeader(buf, offset, pairArity)
	n += primitive.WriteFloat64(buf, offset+n, real(v))
	n += primitive.WriteFloat64(buf, offset+n, imag(v))
	return n, nil
}

func (Complex128Formatter) Deserialize(b []byte, offset int, _ Resolver) (complex128, int, error) {
	n, err := readArity[complex128](b, offset, pairArity)
	if err != nil {
		return 0, 0, err
	}
	re, read, err := primitive.ReadFloat64(b, offset+n)
	if err != nil {
		return 0, 0, err
	}
	n += read
	im, read, err := primitive.ReadFloat64(b, offset+n)
	if err != nil {
		return 0, 0, err
	}
	n += read
	return complex(re, im), n, nil
}

type Complex64Formatter struct{}

func (Complex64Formatter) Serialize(buf *[]byte, offset int, v complex64, _ Resolver) (int, error) {
	n := primitive.WriteArrayHeader(buf, offset, pairArity)
	n += primitive.WriteFloat32(buf, offset+n, real(v))
	n += primitive.WriteFloat32(buf, offset+n, imag(v))
	return n, nil
}

func (Complex64Formatter) Deserialize(b []byte, offset int, _ Resolver) (complex64, int, error) {
	n, err := readArity[complex64](b, offset, pairArity)
	if err != nil {
		return 0, 0, err
	}
	re, read, err := primitive.ReadFloat32(b, offset+n)
	if err != nil {
		return 0, 0, err
	}
	n += read
	im, read, err := primitive.ReadFloat32(b, offset+n)
	if err != nil {
		return 0, 0, err
	}
	n += read
	return complex(re, im), n, nil
}

// KeyValuePair 是一个键值对，编码为 [key, value]。
type KeyValuePair[K, V any] struct {
	Key   K
	Value V
}

// KeyValuePairFormatter 通过 Resolver 递归获取 K 与 V 的格式化器。
type KeyValuePairFormatter[K, V any] struct{}

func (KeyValuePairFormatter[K, V]) Serialize(buf *[]byte, offset int, v KeyValuePair[K, V], r Resolver) (int, error) {
	kf, err := GetWithVerify[K](r)
	if err != nil {
		return 0, err
	}
	vf, err := GetWithVerify[V](r)
	if err != nil {
		return 0, err
	}

	n := primitive.WriteArrayHeader(buf, offset, pairArity)
	written, err := kf.Serialize(buf, offset+n, v.Key, r)
	if err != nil {
		return 0, err
	}
	n += written
	written, err = vf.Serialize(buf, offset+n, v.Value, r)
	if err != nil {
		return 0, err
	}
	n += written
	return n, nil
}

func (KeyValuePairFormatter[K, V]) Deserialize(b []byte, offset int, r Resolver) (KeyValuePair[K, V], int, error) {
	var pair KeyValuePair[K, V]
	n, err := readArity[KeyValuePair[K, V]](b, offset, pairArity)
	if err != nil {
		return pair, 0, err
	}
	kf, err := GetWithVerify[K](r)
	if err != nil {
		return pair, 0, err
	}
	vf, err := GetWithVerify[V](r)
	if err != nil {
		return pair, 0, err
	}

	key, read, err := kf.Deserialize(b, offset+n, r)
	if err != nil {
		return pair, 0, err
	}
	n += read
	value, read, err := vf.Deserialize(b, offset+n, r)
	if err != nil {
		return pair, 0, err
	}
	n += read

	pair.Key, pair.Value = key, value
	return pair, n, nil
}
