package resolver

import (
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/blang/semver/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/formatter"
)

var (
	standardOnce sync.Once
	standard     *Registry
)

// Standard 返回包含全部标准格式化器的全局注册表，首次调用时构建。
// 返回的注册表已冻结，不可再注册。
//
// 泛型格式化器（键值对、可空值）需要按具体实例注册，这里只预置常用组合，
// 其它组合请新建 Registry 注册后与 Standard 组合成 CompositeResolver。
func Standard() *Registry {
	standardOnce.Do(func() {
		reg := NewRegistry()
		RegisterStandard(reg)
		// 触发冻结。
		reg.GetFormatter(formatter.TypeOf[string]())
		standard = reg
	})
	return standard
}

// RegisterStandard 将标准格式化器注册到 reg 中。
func RegisterStandard(reg *Registry) {
	// 标量
	MustRegister(reg, formatter.Bool)
	MustRegister(reg, formatter.Int)
	MustRegister(reg, formatter.Int32)
	MustRegister(reg, formatter.Int64)
	MustRegister(reg, formatter.Uint64)
	MustRegister(reg, formatter.Float32)
	MustRegister(reg, formatter.Float64)
	MustRegister(reg, formatter.String)

	// 可空标量
	MustRegister(reg, formatter.ByteSlice)
	MustRegister(reg, formatter.NullableString)
	MustRegister(reg, formatter.StringBuilder)

	// 文本投影
	MustRegister(reg, formatter.Decimal)
	MustRegister(reg, formatter.UUID)
	MustRegister(reg, formatter.URI)
	MustRegister(reg, formatter.Version)

	// 组合类型；time.Time 使用带时区偏移的编码。
	MustRegister(reg, formatter.TimeSpan)
	MustRegister(reg, formatter.DateTimeOffset)
	MustRegister(reg, formatter.Complex128)
	MustRegister(reg, formatter.Complex64)

	MustRegister[*big.Int](reg, formatter.BigInt)
	MustRegister[*bitset.BitSet](reg, formatter.BitSet)

	MustRegister[*uuid.UUID](reg, formatter.NullableFormatter[uuid.UUID]{})
	MustRegister[*decimal.Decimal](reg, formatter.NullableFormatter[decimal.Decimal]{})
	MustRegister[*time.Duration](reg, formatter.NullableFormatter[time.Duration]{})
	MustRegister[*time.Time](reg, formatter.NullableFormatter[time.Time]{})
	MustRegister[*int64](reg, formatter.NullableFormatter[int64]{})
	MustRegister[*float64](reg, formatter.NullableFormatter[float64]{})
	MustRegister[*bool](reg, formatter.NullableFormatter[bool]{})
	MustRegister[*complex128](reg, formatter.NullableFormatter[complex128]{})

	MustRegister[formatter.KeyValuePair[string, string]](reg, formatter.KeyValuePairFormatter[string, string]{})
	MustRegister[formatter.KeyValuePair[string, int]](reg, formatter.KeyValuePairFormatter[string, int]{})
	MustRegister[formatter.KeyValuePair[string, int64]](reg, formatter.KeyValuePairFormatter[string, int64]{})
	MustRegister[formatter.KeyValuePair[int, string]](reg, formatter.KeyValuePairFormatter[int, string]{})
	MustRegister[formatter.KeyValuePair[uuid.UUID, string]](reg, formatter.KeyValuePairFormatter[uuid.UUID, string]{})
	MustRegister[formatter.KeyValuePair[string, *url.URL]](reg, formatter.KeyValuePairFormatter[string, *url.URL]{})
	MustRegister[formatter.KeyValuePair[string, *strings.Builder]](reg, formatter.KeyValuePairFormatter[string, *strings.Builder]{})
	MustRegister[formatter.KeyValuePair[string, *semver.Version]](reg, formatter.KeyValuePairFormatter[string, *semver.Version]{})
}
