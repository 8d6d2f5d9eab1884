package primitive

import (
	"fmt"
	"time"

	"github.com/tinylib/msgp/msgp"
)

// TimestampExtensionType 为 MessagePack 规范保留的时间戳扩展类型。
const TimestampExtensionType int8 = msgp.MsgTimeExtension

const (
	fixext1  byte = 0xd4
	fixext2  byte = 0xd5
	fixext4  byte = 0xd6
	fixext8  byte = 0xd7
	fixext16 byte = 0xd8
	ext8     byte = 0xc7
	ext16    byte = 0xc8
	ext32    byte = 0xc9
)

// WriteTime 以时间戳扩展（type -1）写入 t 对应的 UTC 时刻，
// 按 timestamp32/64/96 中最短的布局编码。
func WriteTime(buf *[]byte, offset int, t time.Time) int {
	return commit(buf, offset, msgp.AppendTimeExt(prepare(buf, offset), t))
}

// ReadTime 读取时间戳扩展，返回 UTC 时刻。其它类型的扩展返回 msgp.ExtensionTypeError。
func ReadTime(b []byte, offset int) (time.Time, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return time.Time{}, 0, err
	}
	if typ, ok := PeekExtensionType(in, 0); ok && typ != TimestampExtensionType {
		return time.Time{}, 0, msgp.ExtensionTypeError{Got: typ, Want: TimestampExtensionType}
	}
	t, rest, err := msgp.ReadTimeUTCBytes(in)
	if err != nil {
		return time.Time{}, 0, err
	}
	return t, consumed(in, rest), nil
}

// WriteExtension 写入一个类型为 typ 的原始扩展单元。
func WriteExtension(buf *[]byte, offset int, typ int8, data []byte) (int, error) {
	b, err := msgp.AppendExtension(prepare(buf, offset), &msgp.RawExtension{Type: typ, Data: data})
	if err != nil {
		return 0, err
	}
	return commit(buf, offset, b), nil
}

// ReadExtension 读取类型为 typ 的原始扩展单元，返回其数据段的拷贝。
func ReadExtension(b []byte, offset int, typ int8) ([]byte, int, error) {
	in, err := tail(b, offset)
	if err != nil {
		return nil, 0, err
	}
	raw := msgp.RawExtension{Type: typ}
	rest, err := msgp.ReadExtensionBytes(in, &raw)
	if err != nil {
		return nil, 0, err
	}
	if raw.Type != typ {
		return nil, 0, fmt.Errorf("primitive: extension type %d, expected %d", raw.Type, typ)
	}
	return raw.Data, consumed(in, rest), nil
}

// PeekExtensionType 在不消费数据的前提下查看 offset 处扩展单元的类型。
// 若 offset 处不是扩展单元（或数据不完整），返回 false。
func PeekExtensionType(b []byte, offset int) (int8, bool) {
	if offset < 0 || offset >= len(b) {
		return 0, false
	}
	in := b[offset:]
	var pos int
	switch in[0] {
	case fixext1, fixext2, fixext4, fixext8, fixext16:
		pos = 1
	case ext8:
		pos = 2
	case ext16:
		pos = 3
	case ext32:
		pos = 5
	default:
		return 0, false
	}
	if len(in) <= pos {
		return 0, false
	}
	return int8(in[pos]), true
}
