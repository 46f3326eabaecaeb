package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, slow time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, slow), recorded
}

func statement() (string, int64) {
	return "SELECT * FROM accounts", 1
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info, 0)
	changed := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	clone, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs errors", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, 0)
		gl.Trace(context.Background(), time.Now(), statement, errors.New("boom"))

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, zapcore.ErrorLevel, recorded.All()[0].Level)
	})

	t.Run("skips record not found", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, 0)
		gl.Trace(context.Background(), time.Now(), statement, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, time.Millisecond)
		gl.Trace(context.Background(), time.Now().Add(-time.Second), statement, nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
	})

	t.Run("traces statements at info", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info, 0)
		ctx, _ := WithJob(context.Background(), zap.NewNop(), "maturity_sweep")
		gl.Trace(ctx, time.Now(), statement, nil)

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "maturity_sweep", entry.ContextMap()["job"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Silent, 0)
		gl.Trace(context.Background(), time.Now(), statement, errors.New("boom"))
		assert.Equal(t, 0, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
}
