package msgpack

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/tinylib/msgp/msgp"
	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

const defaultReadChunk = 4096

// StreamReader 从 io.Reader 中逐条切分首尾相接的 MessagePack 值。
// 不是并发安全的。
type StreamReader struct {
	r     io.Reader
	buf   *bytebufferpool.ByteBuffer
	start int
	eof   bool
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		r:   r,
		buf: bytebufferpool.Get(),
	}
}

// ReadRaw 返回下一条完整值的原始字节，切片在下一次调用前有效。
// 流正好在值边界结束时返回 io.EOF，结束在值中间时返回 io.ErrUnexpectedEOF。
func (sr *StreamReader) ReadRaw() ([]byte, error) {
	if sr.buf == nil {
		return nil, merr.WrapErrParameterInvalidMsg("stream reader already released")
	}
	for {
		pending := sr.buf.B[sr.start:]
		if len(pending) > 0 {
			rest, err := msgp.Skip(pending)
			if err == nil {
				n := len(pending) - len(rest)
				sr.start += n
				return pending[:n:n], nil
			}
			if !errors.Is(err, msgp.ErrShortBytes) {
				return nil, err
			}
		}
		if sr.eof {
			if len(pending) == 0 {
				return nil, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		}
		if err := sr.fill(); err != nil {
			return nil, err
		}
	}
}

func (sr *StreamReader) fill() error {
	b := sr.buf.B
	if sr.start > 0 {
		n := copy(b, b[sr.start:])
		b = b[:n]
		sr.start = 0
	}
	if cap(b)-len(b) < defaultReadChunk {
		grown := make([]byte, len(b), 2*cap(b)+defaultReadChunk)
		copy(grown, b)
		b = grown
	}
	n, err := sr.r.Read(b[len(b):cap(b)])
	sr.buf.B = b[:len(b)+n]
	if err == io.EOF {
		sr.eof = true
		return nil
	}
	return err
}

// Release 将内部缓冲区归还到池中，之后不能再使用该 StreamReader。
func (sr *StreamReader) Release() {
	if sr.buf != nil {
		bytebufferpool.Put(sr.buf)
		sr.buf = nil
	}
}

// ReadNext 从 sr 中读取下一条值并解码为 T。
func ReadNext[T any](sr *StreamReader, opts ...Option) (T, error) {
	raw, err := sr.ReadRaw()
	if err != nil {
		var zero T
		return zero, err
	}
	return Deserialize[T](raw, opts...)
}
