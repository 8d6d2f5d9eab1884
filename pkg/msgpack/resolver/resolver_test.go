package resolver

import (
	"math/big"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/merr"
)

type ResolverSuite struct {
	suite.Suite
}

func (s *ResolverSuite) SetupSuite() {
	logger, props, err := log.InitTestLogger(s.T(), &log.Config{Level: "debug"})
	s.Require().NoError(err)
	log.ReplaceGlobals(logger, props)
}

func (s *ResolverSuite) TestRegisterAndGet() {
	reg := NewRegistry()
	s.NoError(Register(reg, formatter.Int64))
	s.NoError(Register(reg, formatter.String))
	s.Equal(2, reg.Len())
	s.False(reg.Frozen())

	f := formatter.Get[int64](reg)
	s.NotNil(f)
	s.True(reg.Frozen())

	s.Nil(formatter.Get[int32](reg))
	_, err := formatter.GetWithVerify[int32](reg)
	s.ErrorIs(err, merr.ErrFormatterNotRegistered)
	s.Contains(err.Error(), "int32")
}

func (s *ResolverSuite) TestFrozenAfterLookup() {
	reg := NewRegistry()
	MustRegister(reg, formatter.Bool)
	_ = reg.GetFormatter(formatter.TypeOf[bool]())

	err := Register(reg, formatter.Float64)
	s.ErrorIs(err, merr.ErrFormatterRegistryFrozen)
	s.Panics(func() { MustRegister(reg, formatter.Float32) })
}

func (s *ResolverSuite) TestOverride() {
	reg := NewRegistry()
	MustRegister(reg, formatter.DateTimeOffset)
	MustRegister(reg, formatter.Timestamp)
	s.Equal(1, reg.Len())

	f := formatter.Get[time.Time](reg)
	s.Equal(formatter.Timestamp, f)
}

func (s *ResolverSuite) TestRegisterNil() {
	reg := NewRegistry()
	err := Register[int](reg, nil)
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *ResolverSuite) TestErased() {
	reg := NewRegistry()
	MustRegister(reg, formatter.UUID)

	ef := reg.GetErasedFormatter(reflect.TypeOf(uuid.UUID{}))
	s.Require().NotNil(ef)
	s.Equal(reflect.TypeOf(uuid.UUID{}), ef.Type())

	id := uuid.New()
	var buf []byte
	n, err := ef.SerializeAny(&buf, 0, id, reg)
	s.NoError(err)

	v, read, err := ef.DeserializeAny(buf, 0, reg)
	s.NoError(err)
	s.Equal(n, read)
	s.Equal(id, v)

	_, err = ef.SerializeAny(&buf, 0, "not a uuid", reg)
	s.ErrorIs(err, merr.ErrTypeMismatch)

	s.Nil(reg.GetErasedFormatter(reflect.TypeOf(0)))
}

func (s *ResolverSuite) TestStandard() {
	std := Standard()
	s.Same(std, Standard())
	s.True(std.Frozen())

	s.NotNil(formatter.Get[*big.Int](std))
	s.NotNil(formatter.Get[time.Duration](std))
	s.Equal(formatter.DateTimeOffset, formatter.Get[time.Time](std))
	s.NotNil(formatter.Get[formatter.KeyValuePair[string, int]](std))
	s.NotNil(formatter.Get[*uuid.UUID](std))
	s.Nil(formatter.Get[int8](std))

	s.ErrorIs(Register(std, formatter.Int), merr.ErrFormatterRegistryFrozen)
}

func (s *ResolverSuite) TestComposite() {
	custom := NewRegistry()
	MustRegister(custom, formatter.Timestamp)
	MustRegister[formatter.KeyValuePair[int64, float64]](custom, formatter.KeyValuePairFormatter[int64, float64]{})

	c := NewCompositeResolver(custom, Standard())

	// 先注册的解析器优先。
	s.Equal(formatter.Timestamp, formatter.Get[time.Time](c))
	s.Equal(formatter.String, formatter.Get[string](c))
	s.Equal(2, c.Cached())

	s.Nil(formatter.Get[int8](c))
	s.Equal(2, c.Cached())

	// 组合类型的子格式化器经由组合解析器递归查找。
	kvf, err := formatter.GetWithVerify[formatter.KeyValuePair[int64, float64]](c)
	s.Require().NoError(err)
	var buf []byte
	n, err := kvf.Serialize(&buf, 0, formatter.KeyValuePair[int64, float64]{Key: 7, Value: 0.5}, c)
	s.NoError(err)
	pair, read, err := kvf.Deserialize(buf, 0, c)
	s.NoError(err)
	s.Equal(n, read)
	s.Equal(int64(7), pair.Key)
	s.Equal(0.5, pair.Value)

	ef := c.GetErasedFormatter(formatter.TypeOf[*big.Int]())
	s.NotNil(ef)
	s.Equal(ef, c.GetErasedFormatter(formatter.TypeOf[*big.Int]()))
}

func (s *ResolverSuite) TestConcurrentLookup() {
	c := NewCompositeResolver(Standard())
	var wg sync.WaitGroup
	results := make([]formatter.Formatter[complex128], 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = formatter.Get[complex128](c)
		}(i)
	}
	wg.Wait()
	for _, f := range results {
		s.Equal(formatter.Complex128, f)
	}
}

func TestResolver(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}
