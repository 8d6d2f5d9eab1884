package formatter

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/tinylib/msgp/msgp"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
)

var BitSet Formatter[*bitset.BitSet] = BitSetFormatter{}

// BitSetFormatter 将长度为 N 的位向量编码为 array(N) 加 N 个 bool，每一位一个单元。
type BitSetFormatter struct{}

func (BitSetFormatter) Serialize(buf *[]byte, offset int, v *bitset.BitSet, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	length := v.Len()
	if err := primitive.CheckArrayLen(uint64(length)); err != nil {
		return 0, err
	}
	pos := offset
	pos += primitive.WriteArrayHeader(buf, pos, int(length))
	for i := uint(0); i < length; i++ {
		pos += primitive.WriteBool(buf, pos, v.Test(i))
	}
	return pos - offset, nil
}

func (BitSetFormatter) Deserialize(b []byte, offset int, _ Resolver) (*bitset.BitSet, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	length, n, err := primitive.ReadArrayHeader(b, offset)
	if err != nil {
		return nil, 0, err
	}
	pos := offset + n
	// 每个 bool 至少占 1 字节，声明的长度超出剩余数据时不分配。
	if length > len(b)-pos {
		return nil, 0, msgp.ErrShortBytes
	}
	set := bitset.New(uint(length))
	for i := 0; i < length; i++ {
		bit, read, err := primitive.ReadBool(b, pos)
		if err != nil {
			return nil, 0, err
		}
		pos += read
		if bit {
			set.Set(uint(i))
		}
	}
	return set, pos - offset, nil
}
