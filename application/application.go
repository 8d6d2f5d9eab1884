package application

import (
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	zlog "github.com/lk2023060901/danmu-msgpack/pkg/log"
	"github.com/lk2023060901/danmu-msgpack/pkg/metrics"
	"github.com/lk2023060901/danmu-msgpack/pkg/msgpack"
	zviper "github.com/lk2023060901/danmu-msgpack/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"
	configPathEnv     = "DANMU_MSGPACK_CONFIG_FILE_PATH"
)

var registerMetricsOnce sync.Once

// Application 是编解码层的运行时容器，持有配置、日志以及配置好的 Serializer。
type Application struct {
	cfg        *msgpack.Config
	loggers    map[string]*zlog.MLogger
	serializer *msgpack.DynamicSerializer
	opts       []msgpack.Option
	release    func()
}

func New() *Application {
	return &Application{}
}

// Run 解析命令行参数（os.Args）并加载配置文件，配置路径优先级：
//  1. 默认：./config.yaml
//  2. 环境变量：DANMU_MSGPACK_CONFIG_FILE_PATH
//  3. 命令行：--config <path> 或 --config=<path>
//
// 配置文件不存在时使用默认配置。
func (a *Application) Run() error {
	return a.RunWithArgs(os.Args[1:])
}

func (a *Application) RunWithArgs(args []string) error {
	path, explicit, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	cfg := msgpack.DefaultConfig()
	var raw *zviper.Config
	if _, statErr := os.Stat(path); statErr == nil || explicit {
		raw = zviper.New()
		if err := raw.LoadFile(path); err != nil {
			return errors.Wrapf(err, "failed to load config file %q", path)
		}
		if err := raw.Unmarshal(cfg); err != nil {
			return errors.Wrapf(err, "failed to decode config file %q", path)
		}
	}
	a.cfg = cfg

	if err := a.initLogging(raw); err != nil {
		return err
	}

	opts, release, err := cfg.Options()
	if err != nil {
		return err
	}
	serializer, err := msgpack.NewSerializer(opts...)
	if err != nil {
		release()
		return err
	}
	serializer.SetLogger(a.Logger("msgpack"))

	a.opts = opts
	a.release = release
	a.serializer = serializer
	registerMetricsOnce.Do(func() {
		metrics.Register(metrics.GetRegisterer())
	})

	zlog.Info("msgpack application started",
		zap.String("config", path),
		zap.Bool("compression", cfg.Compression.Enable),
		zap.Int("compressMinSize", cfg.Compression.MinSize))
	return nil
}

// Config 返回已加载的配置。
func (a *Application) Config() *msgpack.Config {
	return a.cfg
}

// Serializer 返回按配置构建的 Serializer，Run 之前为 nil。
func (a *Application) Serializer() *msgpack.DynamicSerializer {
	return a.serializer
}

// Options 返回按配置生成的编解码选项，可直接传给 msgpack.Serialize/Deserialize。
func (a *Application) Options() []msgpack.Option {
	return a.opts
}

// Logger 返回配置中定义的具名 Logger，未知名称退回到全局 Logger。
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return zlog.With(zlog.FieldModule(name))
}

// Close 释放压缩器等资源。
func (a *Application) Close() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
	_ = zlog.Sync()
}

func resolveConfigPath(args []string) (string, bool, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := os.Getenv(configPathEnv); envPath != "" {
		configPath = envPath
		explicit = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", false, errors.New("missing value after --config")
			}
			configPath = args[i+1]
			explicit = true
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
				explicit = true
			}
		}
	}
	return configPath, explicit, nil
}

// initLogging 初始化全局 Logger 与具名 Logger。
func (a *Application) initLogging(raw *zviper.Config) error {
	if err := a.initGlobalLogger(); err != nil {
		return err
	}
	return a.initModuleLoggers(raw)
}

// initGlobalLogger 使用配置中的 log 段初始化全局 Logger，
// DANMU_MSGPACK_LOG_LEVEL 与 DANMU_MSGPACK_LOG_STDOUT 可覆盖对应字段。
func (a *Application) initGlobalLogger() error {
	cfg := a.cfg.Log
	cfg.Level = getenvDefault("DANMU_MSGPACK_LOG_LEVEL", cfg.Level)
	cfg.Stdout = getenvBool("DANMU_MSGPACK_LOG_STDOUT", cfg.Stdout)

	logger, props, err := zlog.InitLogger(&cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger")
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggers 根据配置中 logging 段创建具名 Logger。
//
// 示例：
//
//	logging:
//	  msgpack:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: msgpack.log
func (a *Application) initModuleLoggers(raw *zviper.Config) error {
	if raw == nil {
		return nil
	}

	named := make(map[string]zlog.Config)
	if err := raw.UnmarshalKey("logging", &named); err != nil {
		return err
	}
	if len(named) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(named))
	for name, lc := range named {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
