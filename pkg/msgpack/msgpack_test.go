package msgpack

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/lk2023060901/danmu-msgpack/internal/json"
	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/metrics"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/compressor"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/primitive"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/resolver"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

type MsgpackSuite struct {
	suite.Suite
	zstd *compressor.ZstdCompressor
}

func (s *MsgpackSuite) SetupSuite() {
	logger, props, err := log.InitTestLogger(s.T(), &log.Config{Level: "debug"})
	s.Require().NoError(err)
	log.ReplaceGlobals(logger, props)

	s.zstd, err = compressor.NewZstdCompressor()
	s.Require().NoError(err)
}

func (s *MsgpackSuite) TearDownSuite() {
	s.zstd.Close()
}

func (s *MsgpackSuite) TestSerializeRoundTrip() {
	data, err := Serialize[int64](42)
	s.NoError(err)
	s.Equal([]byte{0x2a}, data)

	v, err := Deserialize[int64](data)
	s.NoError(err)
	s.Equal(int64(42), v)

	id := uuid.New()
	data, err = Serialize(id)
	s.NoError(err)
	got, err := Deserialize[uuid.UUID](data)
	s.NoError(err)
	s.Equal(id, got)

	d := 90 * time.Second
	data, err = Serialize(d)
	s.NoError(err)
	s.Len(data, 9)
	gotD, err := Deserialize[time.Duration](data)
	s.NoError(err)
	s.Equal(d, gotD)
}

func (s *MsgpackSuite) TestNotRegistered() {
	_, err := Serialize[int8](1)
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)

	_, err = Deserialize[int8]([]byte{0x01})
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)
}

func (s *MsgpackSuite) TestCustomResolver() {
	reg := resolver.NewRegistry()
	resolver.MustRegister(reg, formatter.Timestamp)
	c := resolver.NewCompositeResolver(reg, resolver.Standard())

	now := time.Unix(1700000000, 0).UTC()
	data, err := Serialize(now, WithResolver(c))
	s.NoError(err)
	typ, ok := primitive.PeekExtensionType(data, 0)
	s.True(ok)
	s.Equal(primitive.TimestampExtensionType, typ)

	got, err := Deserialize[time.Time](data, WithResolver(c))
	s.NoError(err)
	s.True(now.Equal(got))
}

func (s *MsgpackSuite) TestDeserializeEngineError() {
	_, err := Deserialize[string]([]byte{0x2a})
	s.Error(err)

	before := testutil.ToFloat64(metrics.CodecErrors.WithLabelValues("bool", metrics.DeserializeLabel))
	_, err = Deserialize[bool]([]byte{})
	s.Error(err)
	after := testutil.ToFloat64(metrics.CodecErrors.WithLabelValues("bool", metrics.DeserializeLabel))
	s.Equal(before+1, after)
}

func (s *MsgpackSuite) TestDecodeWarningCarriesContext() {
	buf := &zaptest.Buffer{}
	logger, _, err := log.InitLoggerWithWriteSyncer(&log.Config{Level: "debug", Format: "json"}, buf)
	s.Require().NoError(err)

	ctx := context.WithValue(context.Background(), log.CtxLogKey, &log.MLogger{Logger: logger})
	ctx = log.WithFields(ctx, zap.String("reqID", "req-7"))
	_, err = Deserialize[bool]([]byte{0xa1, 'x'}, WithContext(ctx))
	s.Error(err)

	lines := buf.Lines()
	s.Require().Len(lines, 1)
	s.Contains(lines[0], `"reqID":"req-7"`)
	s.Contains(lines[0], `"module":"msgpack"`)
	s.Contains(lines[0], `"type":"bool"`)
}

func (s *MsgpackSuite) TestCompressedEnvelope() {
	long := strings.Repeat("danmu", 100)
	opts := []Option{WithCompressor(s.zstd), WithCompressThreshold(32)}

	before := testutil.ToFloat64(metrics.CompressedPayloads.WithLabelValues(metrics.CompressLabel))
	data, err := Serialize(long, opts...)
	s.NoError(err)
	s.True(IsCompressed(data))
	s.Less(len(data), len(long))
	s.Equal(before+1, testutil.ToFloat64(metrics.CompressedPayloads.WithLabelValues(metrics.CompressLabel)))

	got, err := Deserialize[string](data, opts...)
	s.NoError(err)
	s.Equal(long, got)

	// 未配置压缩器时无法解开信封。
	_, err = Deserialize[string](data)
	s.ErrorIs(err, merr.ErrCompressionFailed)

	// 低于阈值时输出与未压缩一致。
	short, err := Serialize("short", opts...)
	s.NoError(err)
	plain, err := Serialize("short")
	s.NoError(err)
	s.Equal(plain, short)
	s.False(IsCompressed(short))

	// 未压缩的数据在配置了压缩器时同样可以解码。
	got, err = Deserialize[string](plain, opts...)
	s.NoError(err)
	s.Equal("short", got)
}

func (s *MsgpackSuite) TestEnvelopeLengthMismatch() {
	payload := []byte(strings.Repeat("x", 128))
	packet, err := s.zstd.Compress(nil, payload)
	s.Require().NoError(err)

	var body []byte
	n := primitive.WriteInt64(&body, 0, int64(len(payload)+1))
	body = append(body[:n], packet...)
	var data []byte
	_, err = primitive.WriteExtension(&data, 0, CompressedExtensionType, body)
	s.Require().NoError(err)

	_, err = open(data, s.zstd)
	s.ErrorIs(err, merr.ErrCompressionFailed)

	body = body[:0]
	n = primitive.WriteInt64(&body, 0, compressor.DefaultMaxDecodedSize+1)
	body = append(body[:n], packet...)
	data = data[:0]
	_, err = primitive.WriteExtension(&data, 0, CompressedExtensionType, body)
	s.Require().NoError(err)
	_, err = open(data, s.zstd)
	s.ErrorIs(err, merr.ErrCompressionFailed)
}

func (s *MsgpackSuite) TestDynamicSerializer() {
	ser, err := NewSerializer()
	s.Require().NoError(err)

	u, err := url.Parse("https://example.com/live?room=1")
	s.Require().NoError(err)
	data, err := ser.Marshal(u)
	s.NoError(err)
	var gotURL *url.URL
	s.NoError(ser.Unmarshal(data, &gotURL))
	s.Equal(u.String(), gotURL.String())

	data, err = ser.Marshal(nil)
	s.NoError(err)
	s.Equal([]byte{primitive.NilCode}, data)

	var p *string
	s.NoError(ser.Unmarshal(data, &p))
	s.Nil(p)

	var n *big.Int
	bigData, err := ser.Marshal(big.NewInt(-129))
	s.NoError(err)
	s.NoError(ser.Unmarshal(bigData, &n))
	s.Equal(int64(-129), n.Int64())

	_, err = ser.Marshal(int8(1))
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)
	// 同一类型只告警一次，错误每次都返回。
	_, err = ser.Marshal(int8(2))
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)
	s.True(ser.missing.Contain(formatter.TypeOf[int8]()))

	var notPtr string
	s.ErrorIs(ser.Unmarshal(data, notPtr), merr.ErrParameterInvalid)
	s.ErrorIs(ser.Unmarshal(data, (*string)(nil)), merr.ErrParameterInvalid)
}

type staticResolver struct{}

func (staticResolver) GetFormatter(reflect.Type) any { return nil }

func (s *MsgpackSuite) TestNewSerializerRequiresDynamicResolver() {
	_, err := NewSerializer(WithResolver(staticResolver{}))
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *MsgpackSuite) TestBatch() {
	values := make([]int64, 100)
	for i := range values {
		values[i] = int64(i * 1000)
	}
	items, err := SerializeBatch(values)
	s.NoError(err)
	s.Len(items, len(values))
	for i, item := range items {
		single, err := Serialize(values[i])
		s.NoError(err)
		s.Equal(single, item)
	}

	got, err := DeserializeBatch[int64](items)
	s.NoError(err)
	s.Equal(values, got)

	items[10] = []byte{0xc1}
	_, err = DeserializeBatch[int64](items)
	s.Error(err)

	empty, err := SerializeBatch[int64](nil)
	s.NoError(err)
	s.Empty(empty)

	_, err = SerializeBatch([]int8{1})
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)
}

// oneByteReader 每次只返回一个字节，用于覆盖跨读取边界的切分。
type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func (s *MsgpackSuite) TestStreamReader() {
	var stream bytes.Buffer
	words := []string{"a", strings.Repeat("b", 5000), "弹幕"}
	for _, w := range words {
		data, err := Serialize(w)
		s.Require().NoError(err)
		stream.Write(data)
	}
	data, err := Serialize[int64](-7)
	s.Require().NoError(err)
	stream.Write(data)

	sr := NewStreamReader(oneByteReader{r: bytes.NewReader(stream.Bytes())})
	defer sr.Release()
	for _, w := range words {
		got, err := ReadNext[string](sr)
		s.Require().NoError(err)
		s.Equal(w, got)
	}
	num, err := ReadNext[int64](sr)
	s.NoError(err)
	s.Equal(int64(-7), num)

	_, err = sr.ReadRaw()
	s.ErrorIs(err, io.EOF)
}

func (s *MsgpackSuite) TestStreamReaderTruncated() {
	data, err := Serialize("truncated payload")
	s.Require().NoError(err)

	sr := NewStreamReader(bytes.NewReader(data[:len(data)-3]))
	_, err = sr.ReadRaw()
	s.ErrorIs(err, io.ErrUnexpectedEOF)
	sr.Release()

	_, err = sr.ReadRaw()
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *MsgpackSuite) TestToJSON() {
	pair := formatter.KeyValuePair[string, int]{Key: "room", Value: 7}
	data, err := Serialize(pair)
	s.NoError(err)
	out, err := ToJSON(data)
	s.NoError(err)
	s.JSONEq(`["room",7]`, string(out))

	long := strings.Repeat("z", 256)
	data, err = Serialize(long, WithCompressor(s.zstd))
	s.NoError(err)
	s.True(IsCompressed(data))
	out, err = ToJSON(data, WithCompressor(s.zstd))
	s.NoError(err)
	var decoded string
	s.NoError(json.Unmarshal(out, &decoded))
	s.Equal(long, decoded)

	// 非字符串键的 map。
	m := []byte{0x81, 0x01, 0xa1, 'x'}
	out, err = ToJSON(m)
	s.NoError(err)
	s.JSONEq(`{"1":"x"}`, string(out))
}

func (s *MsgpackSuite) TestLoadConfig() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
compression:
  enable: true
  min-size: 128
  concurrency: 2
log:
  level: debug
  format: json
`
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	s.Require().NoError(err)
	s.True(cfg.Compression.Enable)
	s.Equal(128, cfg.Compression.MinSize)
	s.Equal(2, cfg.Compression.Concurrency)
	s.Equal("debug", cfg.Log.Level)
	s.Equal("json", cfg.Log.Format)
	s.True(cfg.Log.Stdout)

	opts, release, err := cfg.Options()
	s.Require().NoError(err)
	defer release()
	o := newOptions(opts...)
	s.NotNil(o.compressor)
	s.Equal(128, o.compressThreshold)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	s.Error(err)
}

func (s *MsgpackSuite) TestDefaultConfigOptions() {
	opts, release, err := DefaultConfig().Options()
	s.NoError(err)
	s.Empty(opts)
	release()
}

func TestMsgpack(t *testing.T) {
	suite.Run(t, new(MsgpackSuite))
}
