package msgpack

import (
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/metrics"
)

const decodeRateGroup = "msgpack.decode"

// encode 在池化缓冲区中完成编码，按需封装为压缩信封，并返回独立的结果切片。
func (o *options) encode(typeName string, write func(buf *[]byte) (int, error)) ([]byte, error) {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	n, err := write(&bb.B)
	if err != nil {
		metrics.CodecErrors.WithLabelValues(typeName, metrics.SerializeLabel).Inc()
		return nil, err
	}
	payload := bb.B[:n]

	var out []byte
	if o.compressor != nil && n >= o.compressThreshold {
		out, err = seal(payload, o.compressor)
		if err != nil {
			metrics.CodecErrors.WithLabelValues(typeName, metrics.CompressLabel).Inc()
			return nil, err
		}
		metrics.CompressedPayloads.WithLabelValues(metrics.CompressLabel).Inc()
	} else {
		out = make([]byte, n)
		copy(out, payload)
	}
	metrics.SerializedBytes.WithLabelValues(typeName, metrics.SerializeLabel).Observe(float64(len(out)))
	return out, nil
}

// decode 解开可能存在的压缩信封后交给 read 解码。
func (o *options) decode(typeName string, data []byte, read func(payload []byte) (int, error)) error {
	compressed := IsCompressed(data)
	payload, err := open(data, o.compressor)
	if err != nil {
		metrics.CodecErrors.WithLabelValues(typeName, metrics.DecompressLabel).Inc()
		o.warnDecodeFailure(typeName, len(data), err)
		return err
	}
	if compressed {
		metrics.CompressedPayloads.WithLabelValues(metrics.DecompressLabel).Inc()
	}

	if _, err := read(payload); err != nil {
		metrics.CodecErrors.WithLabelValues(typeName, metrics.DeserializeLabel).Inc()
		o.warnDecodeFailure(typeName, len(data), err)
		return err
	}
	metrics.SerializedBytes.WithLabelValues(typeName, metrics.DeserializeLabel).Observe(float64(len(data)))
	return nil
}

// warnDecodeFailure 通过 ctx 中的 Logger 输出限流告警，ctx 上附加的字段（如请求 ID）随日志一起输出。
func (o *options) warnDecodeFailure(typeName string, size int, err error) {
	log.Ctx(log.WithModule(o.ctx, "msgpack")).
		WithRateGroup(decodeRateGroup, 1, 60).
		RatedWarn(1, "failed to decode payload",
			zap.String("type", typeName),
			zap.Int("size", size),
			zap.Error(err))
}
