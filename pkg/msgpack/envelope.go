package msgpack

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/compressor"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

// CompressedExtensionType 为压缩信封使用的扩展类型。
// 信封数据段为：原始长度（整数）+ 压缩后的字节。
const CompressedExtensionType int8 = 99

// IsCompressed 判断 data 是否为压缩信封。
func IsCompressed(data []byte) bool {
	typ, ok := primitive.PeekExtensionType(data, 0)
	return ok && typ == CompressedExtensionType
}

func seal(payload []byte, c compressor.Compressor) ([]byte, error) {
	var body []byte
	n := primitive.WriteInt64(&body, 0, int64(len(payload)))
	packet, err := c.Compress(nil, payload)
	if err != nil {
		return nil, merr.WrapErrCompressionFailed("compress", err)
	}
	body = append(body[:n], packet...)

	var out []byte
	if _, err := primitive.WriteExtension(&out, 0, CompressedExtensionType, body); err != nil {
		return nil, err
	}
	return out, nil
}

// open 返回信封中解压后的数据；data 不是压缩信封时原样返回。
func open(data []byte, c compressor.Compressor) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}
	if c == nil {
		return nil, merr.WrapErrCompressionFailed("decompress", errors.New("payload is compressed but no compressor is configured"))
	}
	body, _, err := primitive.ReadExtension(data, 0, CompressedExtensionType)
	if err != nil {
		return nil, err
	}
	length, n, err := primitive.ReadInt64(body, 0)
	if err != nil {
		return nil, err
	}
	if length < 0 || length > compressor.DefaultMaxDecodedSize {
		return nil, merr.WrapErrCompressionFailed("decompress", errors.Newf("invalid uncompressed length %d", length))
	}
	plain, err := c.Decompress(make([]byte, 0, length), body[n:])
	if err != nil {
		return nil, merr.WrapErrCompressionFailed("decompress", err)
	}
	if int64(len(plain)) != length {
		return nil, merr.WrapErrCompressionFailed("decompress", errors.Newf("uncompressed length %d, expected %d", len(plain), length))
	}
	return plain, nil
}
