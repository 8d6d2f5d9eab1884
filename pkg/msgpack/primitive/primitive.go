// Package primitive 提供 MessagePack 基础单元的按偏移量读写能力。
//
// 约定：
//   - 写操作形如 WriteX(buf, offset, v) int：从 offset 处开始写入，返回写入的字节数；
//     buf 会按需扩容，offset 之后原有的内容会被截断。
//   - 读操作形如 ReadX(b, offset) (v, readSize, error)：从 offset 处开始读取，
//     返回值以及本次消费的字节数。
//   - 底层编解码委托给 github.com/tinylib/msgp/msgp，错误原样返回，不做二次包装。
package primitive

import (
	"encoding/binary"
	"math"

	"github.com/tinylib/msgp/msgp"

	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

const (
	// NilCode 为 MessagePack 中表示“值不存在”的单字节标记。
	NilCode byte = 0xc0

	// NilSize 为 nil 标记占用的字节数。
	NilSize = 1

	mint64 byte = 0xd3
)

// prepare 返回一个长度恰好为 offset 的切片，后续 append 即从 offset 处写入。
func prepare(buf *[]byte, offset int) []byte {
	b := *buf
	if offset > len(b) {
		b = append(b, make([]byte, offset-len(b))...)
	}
	return b[:offset]
}

// commit 回写扩容后的切片，并返回从 offset 起新写入的字节数。
func commit(buf *[]byte, offset int, b []byte) int {
	*buf = b
	return len(b) - offset
}

// tail 返回 offset 之后待读取的数据。
func tail(b []byte, offset int) ([]byte, error) {
	if offset < 0 || offset > len(b) {
		return nil, msgp.ErrShortBytes
	}
	return b[offset:], nil
}

func consumed(in, rest []byte) int {
	return len(in) - len(rest)
}

// WriteNil 在 offset 处写入 nil 标记。
func WriteNil(buf *[]byte, offset int) int {
	return commit(buf, offset, msgp.AppendNil(prepare(buf, offset)))
}

// IsNil 判断 offset 处是否为 nil 标记；越界时返回 false。
func IsNil(b []byte, offset int) bool {
	if offset < 0 || offset >= len(b) {
		return false
	}
	return msgp.IsNil(b[offset:])
}

// ReadNil 消费 offset 处的 nil 标记。
func ReadNil(b []byte, offset int) (int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, err
	}
	rest, err := msgp.ReadNilBytes(in)
	if err != nil {
		return 0, err
	}
	return consumed(in, rest), nil
}

// MaxArrayLen 为数组头能够表示的最大元素个数（array32）。
const MaxArrayLen = math.MaxUint32

// CheckArrayLen 校验 n 能否写入数组头，超出 array32 时返回 ErrValueOutOfRange。
func CheckArrayLen(n uint64) error {
	if n > MaxArrayLen {
		return merr.WrapErrValueOutOfRange("array length", n, uint64(0), uint64(MaxArrayLen))
	}
	return nil
}

// WriteArrayHeader 写入长度为 n 的数组头。
// n 必须位于 [0, MaxArrayLen]，调用方应先用 CheckArrayLen 校验来自外部的长度。
func WriteArrayHeader(buf *[]byte, offset int, n int) int {
	return commit(buf, offset, msgp.AppendArrayHeader(prepare(buf, offset), uint32(n)))
}

// ReadArrayHeader 读取数组头，返回其声明的元素个数。
func ReadArrayHeader(b []byte, offset int) (int, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, 0, err
	}
	sz, rest, err := msgp.ReadArrayHeaderBytes(in)
	if err != nil {
		return 0, 0, err
	}
	return int(sz), consumed(in, rest), nil
}

func WriteBool(buf *[]byte, offset int, v bool) int {
	return commit(buf, offset, msgp.AppendBool(prepare(buf, offset), v))
}

func ReadBool(b []byte, offset int) (bool, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return false, 0, err
	}
	v, rest, err := msgp.ReadBoolBytes(in)
	if err != nil {
		return false, 0, err
	}
	return v, consumed(in, rest), nil
}

// WriteInt64 以最紧凑的整数形式写入 v。
func WriteInt64(buf *[]byte, offset int, v int64) int {
	return commit(buf, offset, msgp.AppendInt64(prepare(buf, offset), v))
}

// WriteInt64ForceInt64Block 始终以 int64 块（0xd3 + 8 字节大端）写入 v，
// 用于需要固定宽度的字段（例如 tick 计数）。
func WriteInt64ForceInt64Block(buf *[]byte, offset int, v int64) int {
	b := append(prepare(buf, offset), mint64)
	b = binary.BigEndian.AppendUint64(b, uint64(v))
	return commit(buf, offset, b)
}

// ReadInt64 读取任意宽度的有符号整数。
func ReadInt64(b []byte, offset int) (int64, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, 0, err
	}
	v, rest, err := msgp.ReadInt64Bytes(in)
	if err != nil {
		return 0, 0, err
	}
	return v, consumed(in, rest), nil
}

func WriteUint64(buf *[]byte, offset int, v uint64) int {
	return commit(buf, offset, msgp.AppendUint64(prepare(buf, offset), v))
}

func ReadUint64(b []byte, offset int) (uint64, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, 0, err
	}
	v, rest, err := msgp.ReadUint64Bytes(in)
	if err != nil {
		return 0, 0, err
	}
	return v, consumed(in, rest), nil
}

func WriteFloat64(buf *[]byte, offset int, v float64) int {
	return commit(buf, offset, msgp.AppendFloat64(prepare(buf, offset), v))
}

func ReadFloat64(b []byte, offset int) (float64, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, 0, err
	}
	v, rest, err := msgp.ReadFloat64Bytes(in)
	if err != nil {
		return 0, 0, err
	}
	return v, consumed(in, rest), nil
}

func WriteFloat32(buf *[]byte, offset int, v float32) int {
	return commit(buf, offset, msgp.AppendFloat32(prepare(buf, offset), v))
}

func ReadFloat32(b []byte, offset int) (float32, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return 0, 0, err
	}
	v, rest, err := msgp.ReadFloat32Bytes(in)
	if err != nil {
		return 0, 0, err
	}
	return v, consumed(in, rest), nil
}

// WriteBytes 以 bin 格式写入原始字节。
func WriteBytes(buf *[]byte, offset int, v []byte) int {
	return commit(buf, offset, msgp.AppendBytes(prepare(buf, offset), v))
}

// ReadBytes 读取 bin 格式的原始字节，返回值为独立拷贝，不与 b 共享底层数组。
func ReadBytes(b []byte, offset int) ([]byte, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return nil, 0, err
	}
	v, rest, err := msgp.ReadBytesBytes(in, nil)
	if err != nil {
		return nil, 0, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, consumed(in, rest), nil
}

// WriteString 以 str 格式写入 UTF-8 文本。
func WriteString(buf *[]byte, offset int, v string) int {
	return commit(buf, offset, msgp.AppendString(prepare(buf, offset), v))
}

func ReadString(b []byte, offset int) (string, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return "", 0, err
	}
	v, rest, err := msgp.ReadStringBytes(in)
	if err != nil {
		return "", 0, err
	}
	return v, consumed(in, rest), nil
}
