package formatter

import (
	"math/big"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
)

var BigInt Formatter[*big.Int] = BigIntFormatter{}

var bigOne = big.NewInt(1)

// BigIntFormatter 将 *big.Int 编码为最短的大端补码字节序列（bin）。
// 该类型没有缺省状态：nil 与 0 一样编码为 0x00。
type BigIntFormatter struct{}

func (BigIntFormatter) Serialize(buf *[]byte, offset int, v *big.Int, _ Resolver) (int, error) {
	return primitive.WriteBytes(buf, offset, twosComplementBytes(v)), nil
}

func (BigIntFormatter) Deserialize(b []byte, offset int, _ Resolver) (*big.Int, int, error) {
	raw, n, err := primitive.ReadBytes(b, offset)
	if err != nil {
		return nil, 0, err
	}
	return fromTwosComplementBytes(raw), n, nil
}

func twosComplementBytes(x *big.Int) []byte {
	if x == nil {
		return []byte{0}
	}
	switch x.Sign() {
	case 0:
		return []byte{0}
	case 1:
		raw := x.Bytes()
		if raw[0]&0x80 != 0 {
			raw = append([]byte{0}, raw...)
		}
		return raw
	default:
		// -x-1 按位取反即为 x 的补码。
		m := new(big.Int).Neg(x)
		m.Sub(m, bigOne)
		raw := m.Bytes()
		for i := range raw {
			raw[i] = ^raw[i]
		}
		if len(raw) == 0 || raw[0]&0x80 == 0 {
			raw = append([]byte{0xff}, raw...)
		}
		return raw
	}
}

func fromTwosComplementBytes(raw []byte) *big.Int {
	if len(raw) == 0 {
		return new(big.Int)
	}
	if raw[0]&0x80 == 0 {
		return new(big.Int).SetBytes(raw)
	}
	inverted := make([]byte, len(raw))
	for i := range raw {
		inverted[i] = ^raw[i]
	}
	m := new(big.Int).SetBytes(inverted)
	m.Add(m, bigOne)
	return m.Neg(m)
}
