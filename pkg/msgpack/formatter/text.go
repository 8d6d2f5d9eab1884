package formatter

import (
	"net/url"

	"github.com/blang/semver/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

// 以下类型没有原生的定长线上形态，统一以规范文本（与区域设置无关）编码为 str。
// 文本解析失败返回 ErrTextParse，不做任何宽松转换。
var (
	Decimal Formatter[decimal.Decimal] = DecimalFormatter{}
	UUID    Formatter[uuid.UUID]       = UUIDFormatter{}
	URI     Formatter[*url.URL]        = URIFormatter{}
	Version Formatter[*semver.Version] = VersionFormatter{}
)

// parseText 读取 offset 处的字符串并交给 parse 解析。
func parseText[T any](b []byte, offset int, parse func(string) (T, error)) (T, int, error) {
	var zero T
	text, n, err := primitive.ReadString(b, offset)
	if err != nil {
		return zero, 0, err
	}
	v, err := parse(text)
	if err != nil {
		return zero, 0, merr.WrapErrTextParse(typeName[T](), text, err)
	}
	return v, n, nil
}

// DecimalFormatter 使用 decimal.Decimal 的规范文本，小数点固定为 '.'。
type DecimalFormatter struct{}

func (DecimalFormatter) Serialize(buf *[]byte, offset int, v decimal.Decimal, _ Resolver) (int, error) {
	return primitive.WriteString(buf, offset, v.String()), nil
}

func (DecimalFormatter) Deserialize(b []byte, offset int, _ Resolver) (decimal.Decimal, int, error) {
	return parseText(b, offset, decimal.NewFromString)
}

// UUIDFormatter 使用小写 8-4-4-4-12 文本。
type UUIDFormatter struct{}

func (UUIDFormatter) Serialize(buf *[]byte, offset int, v uuid.UUID, _ Resolver) (int, error) {
	return primitive.WriteString(buf, offset, v.String()), nil
}

func (UUIDFormatter) Deserialize(b []byte, offset int, _ Resolver) (uuid.UUID, int, error) {
	return parseText(b, offset, uuid.Parse)
}

type URIFormatter struct{}

func (URIFormatter) Serialize(buf *[]byte, offset int, v *url.URL, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return primitive.WriteString(buf, offset, v.String()), nil
}

func (URIFormatter) Deserialize(b []byte, offset int, _ Resolver) (*url.URL, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	return parseText(b, offset, url.Parse)
}

// VersionFormatter 按严格的语义化版本语法解析。
type VersionFormatter struct{}

func (VersionFormatter) Serialize(buf *[]byte, offset int, v *semver.Version, _ Resolver) (int, error) {
	if v == nil {
		return primitive.WriteNil(buf, offset), nil
	}
	return primitive.WriteString(buf, offset, v.String()), nil
}

func (VersionFormatter) Deserialize(b []byte, offset int, _ Resolver) (*semver.Version, int, error) {
	if primitive.IsNil(b, offset) {
		return nil, primitive.NilSize, nil
	}
	return parseText(b, offset, func(text string) (*semver.Version, error) {
		v, err := semver.Parse(text)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
}
