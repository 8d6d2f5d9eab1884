package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestInitLoggerWithWriteSyncer(t *testing.T) {
	buf := &zaptest.Buffer{}
	cfg := &Config{Level: "info", Format: "json", DisableTimestamp: true}
	logger, props, err := InitLoggerWithWriteSyncer(cfg, buf)
	require.NoError(t, err)
	require.NotNil(t, props)

	logger.Debug("hidden")
	logger.Info("codec ready", zap.String("type", "uuid.UUID"))
	require.NoError(t, logger.Sync())

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"codec ready"`)
	assert.Contains(t, lines[0], `"type":"uuid.UUID"`)
	assert.NotContains(t, lines[0], `"time"`)

	_, _, err = InitLoggerWithWriteSyncer(&Config{Level: "loud"}, buf)
	assert.Error(t, err)
}

func TestRateGroup(t *testing.T) {
	buf := &zaptest.Buffer{}
	logger, _, err := InitLoggerWithWriteSyncer(&Config{Level: "debug"}, buf)
	require.NoError(t, err)

	ml := (&MLogger{Logger: logger}).WithRateGroup("log.test", 0.001, 1)
	assert.True(t, ml.RatedWarn(1, "first"))
	assert.False(t, ml.RatedWarn(1, "second"))

	// 同名分组共享额度。
	other := (&MLogger{Logger: logger}).WithRateGroup("log.test", 0.001, 1)
	assert.False(t, other.RatedInfo(1, "third"))
	assert.Len(t, buf.Lines(), 1)
}

func TestSetRateLimit(t *testing.T) {
	defer SetRateLimit(0, 0)

	SetRateLimit(0.001, 1)
	assert.True(t, R().CheckCredit(1))
	assert.False(t, R().CheckCredit(1))

	SetRateLimit(0, 0)
	for i := 0; i < 3; i++ {
		assert.True(t, R().CheckCredit(1))
	}
}

func TestBinder(t *testing.T) {
	var b Binder
	assert.NotNil(t, b.Logger())

	buf := &zaptest.Buffer{}
	logger, _, err := InitLoggerWithWriteSyncer(&Config{Level: "debug"}, buf)
	require.NoError(t, err)
	b.SetLogger(&MLogger{Logger: logger})
	b.Logger().Info("bound")
	assert.Len(t, buf.Lines(), 1)
}

func TestCtxLogger(t *testing.T) {
	assert.NotNil(t, Ctx(context.Background()))

	buf := &zaptest.Buffer{}
	logger, _, err := InitLoggerWithWriteSyncer(&Config{Level: "debug", Format: "json"}, buf)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), CtxLogKey, &MLogger{Logger: logger})
	ctx = WithModule(ctx, "resolver")
	ctx = WithFields(ctx, zap.Int64("reqID", 42))
	Ctx(ctx).Info("lookup")

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"module":"resolver"`)
	assert.Contains(t, lines[0], `"reqID":42`)
}

func TestGlobalLevel(t *testing.T) {
	buf := &zaptest.Buffer{}
	logger, props, err := InitLoggerWithWriteSyncer(&Config{Level: "info"}, buf)
	require.NoError(t, err)

	oldL, oldP := L(), _globalP.Load().(*ZapProperties)
	defer ReplaceGlobals(oldL, oldP)
	ReplaceGlobals(logger, props)

	assert.Equal(t, zapcore.InfoLevel, GetLevel())
	Debug("dropped")
	SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, Level().Level())
	Debug("kept")
	With(FieldModule("codec")).Warn("warned")

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kept")
	assert.Contains(t, lines[1], "codec")
}
