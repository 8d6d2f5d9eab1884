package msgpack

import (
	"context"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/compressor"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/resolver"
)

// DefaultCompressThreshold 为触发压缩的默认最小字节数。
const DefaultCompressThreshold = 64

type options struct {
	ctx               context.Context
	resolver          formatter.Resolver
	compressor        compressor.Compressor
	compressThreshold int
}

// Option 用于配置 Serialize/Deserialize 以及 Serializer 的行为。
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{
		ctx:               context.Background(),
		resolver:          resolver.Standard(),
		compressThreshold: DefaultCompressThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithResolver 指定查找格式化器使用的解析器，默认为 resolver.Standard()。
func WithResolver(r formatter.Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithCompressor 开启压缩信封。
// 编码结果不小于阈值时会被压缩；解码压缩信封同样需要该选项。
func WithCompressor(c compressor.Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// WithCompressThreshold 设置触发压缩的最小字节数，n < 0 时按 0 处理。
func WithCompressThreshold(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.compressThreshold = n
	}
}

// WithContext 指定日志上下文，解码失败的告警经由 log.Ctx(ctx) 输出。
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}
