package msgpack

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack/compressor"
	"github.com/lk2023060901/danmu-msgpack/pkg/util/viper"
)

// CompressionConfig 为压缩信封相关配置。
type CompressionConfig struct {
	// Enable 表示是否启用压缩信封。
	Enable bool `mapstructure:"enable"`
	// MinSize 为触发压缩的最小字节数。
	MinSize int `mapstructure:"min-size"`
	// Concurrency 为 zstd 编解码器的并发度，<= 0 时使用 GOMAXPROCS。
	Concurrency int `mapstructure:"concurrency"`
}

// Config 为编解码层的完整配置。
type Config struct {
	Compression CompressionConfig `mapstructure:"compression"`
	Log         log.Config        `mapstructure:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Compression: CompressionConfig{
			MinSize: DefaultCompressThreshold,
		},
		Log: log.Config{
			Level:  "info",
			Stdout: true,
		},
	}
}

// LoadConfig 从 YAML/JSON 文件加载配置，未出现的字段保留默认值。
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	if err := v.LoadFile(path); err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config file %q", path)
	}
	return cfg, nil
}

// Options 根据配置生成选项，返回的 release 用于释放压缩器持有的资源。
func (c *Config) Options() ([]Option, func(), error) {
	if !c.Compression.Enable {
		return nil, func() {}, nil
	}
	zc, err := compressor.NewZstdCompressorWithConcurrency(c.Compression.Concurrency)
	if err != nil {
		return nil, nil, err
	}
	opts := []Option{
		WithCompressor(zc),
		WithCompressThreshold(c.Compression.MinSize),
	}
	return opts, zc.Close, nil
}
