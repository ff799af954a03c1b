package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newAdapters(level LogLevel) (map[string]Interface, map[string]*bytes.Buffer) {
	var (
		buffers = map[string]*bytes.Buffer{
			"zap": {}, "zerolog": {}, "logrus": {}, "slog": {},
		}
		config = Config{LogLevel: level, SlowThreshold: 100 * time.Millisecond}
	)

	zapLogger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buffers["zap"]),
		zapcore.DebugLevel,
	))

	logrusLogger := logrus.New()
	logrusLogger.SetOutput(buffers["logrus"])
	logrusLogger.SetFormatter(&logrus.JSONFormatter{})

	slogLogger := slog.New(slog.NewJSONHandler(buffers["slog"], &slog.HandlerOptions{Level: slog.LevelDebug}))

	return map[string]Interface{
		"zap":     NewZapLogger(zapLogger, config),
		"zerolog": NewZerologLogger(zerolog.New(buffers["zerolog"]), config),
		"logrus":  NewLogrusLogger(logrusLogger, config),
		"slog":    NewSlogLogger(slogLogger, config),
	}, buffers
}

func TestAdaptersLogLevels(t *testing.T) {
	ctx := context.Background()
	adapters, buffers := newAdapters(Warn)

	for name, l := range adapters {
		t.Run(name, func(t *testing.T) {
			buf := buffers[name]

			l.Info(ctx, "morph type %s resolved", "post")
			assert.Empty(t, buf.String())

			l.Warn(ctx, "morph type %s resolved", "video")
			assert.Contains(t, buf.String(), "video")

			l.LogMode(Info).Info(ctx, "morph type %s resolved", "post")
			assert.Contains(t, buf.String(), "post")
		})
	}
}

func TestAdaptersTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("executed", func(t *testing.T) {
		adapters, buffers := newAdapters(Info)
		for name, l := range adapters {
			l.Trace(ctx, time.Now(), func() (string, int64) {
				return "UPDATE comments SET commentable_id = NULL", 3
			}, nil)

			output := buffers[name].String()
			assert.Contains(t, output, "statement executed", name)
			assert.Contains(t, output, "UPDATE comments SET commentable_id = NULL", name)
			assert.Contains(t, output, "duration_ms", name)
			assert.Contains(t, output, "rows", name)
		}
	})

	t.Run("slow", func(t *testing.T) {
		adapters, buffers := newAdapters(Warn)
		for name, l := range adapters {
			l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
				return "UPDATE comments", -1
			}, nil)
			assert.Contains(t, buffers[name].String(), "slow statement", name)
		}
	})

	t.Run("failed", func(t *testing.T) {
		adapters, buffers := newAdapters(Error)
		for name, l := range adapters {
			l.Trace(ctx, time.Now(), func() (string, int64) {
				return "UPDATE missing", 0
			}, assert.AnError)

			output := buffers[name].String()
			assert.Contains(t, output, "statement failed", name)
			assert.Contains(t, output, assert.AnError.Error(), name)
		}
	})

	t.Run("silent", func(t *testing.T) {
		adapters, buffers := newAdapters(Silent)
		for name, l := range adapters {
			l.Trace(ctx, time.Now(), func() (string, int64) {
				require.FailNow(t, "sql should not be rendered when silent")
				return "", 0
			}, assert.AnError)
			assert.Empty(t, buffers[name].String(), name)
		}
	})
}

func TestLevelConverters(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(Error))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(Warn))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(Info))
	assert.Equal(t, zapcore.FatalLevel, ZapLevel(Silent))

	assert.Equal(t, zerolog.Disabled, ZerologLevel(Silent))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(Error))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(Info))
}
