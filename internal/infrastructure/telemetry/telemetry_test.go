package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("ledger"))
	assert.False(t, p.LogCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.InstrumentDB(nil))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, sampler(7).Description(), "ParentBased")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	withField := core.With([]zapcore.Field{zap.String("job", "daily_interest")})
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		entry := zapcore.Entry{Level: lvl, Message: lvl.String()}
		if ce := withField.Check(entry, nil); ce != nil {
			ce.Write()
		}
	}

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
	assert.Equal(t, "daily_interest", logs.All()[0].ContextMap()["job"])
}
