package formatter

import (
	"strings"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
)

var (
	ByteSlice      Formatter[[]byte]           = ByteSliceFormatter{}
	NullableString Formatter[*string]          = NullableStringFormatter{}
	StringBuilder  Formatter[*strings.Builder] = StringBuilderFormatter{}
	String         Formatter[string]           = StringFormatter{}
)

// ByteSliceFormatter 将 []byte 编码为 bin，nil 切片编码为 nil 标记。
// 空切片与 nil 切片在线上是不同的。
type ByteSliceFormatter struct{}

func (ByteSliceFormatter) Serialize(buf *[]byte, offset int, v []byte, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return primitive.WriteBytes(buf, offset, v), nil
}

func (ByteSliceFormatter) Deserialize(b []byte, offset int, _ Resolver) ([]byte, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	return primitive.ReadBytes(b, offset)
}

type NullableStringFormatter struct{}

func (NullableStringFormatter) Serialize(buf *[]byte, offset int, v *string, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return primitive.WriteString(buf, offset, *v), nil
}

func (NullableStringFormatter) Deserialize(b []byte, offset int, _ Resolver) (*string, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	s, n, err := primitive.ReadString(b, offset)
	if err != nil {
		return nil, 0, err
	}
	return &s, n, nil
}

// StringBuilderFormatter 写入 builder 当前的内容，解码时返回一个新的 builder。
type StringBuilderFormatter struct{}

func (StringBuilderFormatter) Serialize(buf *[]byte, offset int, v *strings.Builder, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return primitive.WriteString(buf, offset, v.String()), nil
}

func (StringBuilderFormatter) Deserialize(b []byte, offset int, _ Resolver) (*strings.Builder, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	s, n, err := primitive.ReadString(b, offset)
	if err != nil {
		return nil, 0, err
	}
	sb := &strings.Builder{}
	sb.Grow(len(s))
	sb.WriteString(s)
	return sb, n, nil
}

// StringFormatter 处理不可为空的 string；读到 nil 标记时返回空串。
type StringFormatter struct{}

func (StringFormatter) Serialize(buf *[]byte, offset int, v string, _ Resolver) (int, error) {
	return primitive.WriteString(buf, offset, v), nil
}

func (StringFormatter) Deserialize(b []byte, offset int, _ Resolver) (string, int, error) {
	if primitive.IsNil(b, offset) {
		return "", primitive.NilSize, nil
	}
	return primitive.ReadString(b, offset)
}
