package logger

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/morph/utils"
)

// SlogLogger implements Interface using log/slog
type SlogLogger struct {
	Logger        *slog.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
}

// NewSlogLogger creates a new logger using slog
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	return &SlogLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
	}
}

func (l *SlogLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *SlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, msg, slog.Any("data", data))
	}
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, msg, slog.Any("data", data))
	}
}

func (l *SlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, msg, slog.Any("data", data))
	}
}

func (l *SlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	level, msg := slog.LevelInfo, "statement executed"
	switch {
	case err != nil && l.LogLevel >= Error:
		level, msg = slog.LevelError, "statement failed"
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		level, msg = slog.LevelWarn, "slow statement"
	case l.LogLevel < Info:
		return
	}

	sql, rows := fc()
	fields := []slog.Attr{
		slog.Float64("duration_ms", milliseconds(elapsed)),
		slog.String("sql", sql),
	}
	if rows != -1 {
		fields = append(fields, slog.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, slog.String("error", err.Error()))
	}

	l.log(ctx, level, msg, slog.Attr{Key: "trace", Value: slog.GroupValue(fields...)})
}

func (l *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !l.Logger.Enabled(ctx, level) {
		return
	}

	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.Add(append(args, slog.String("file", utils.FileWithLineNum()))...)
	_ = l.Logger.Handler().Handle(ctx, r)
}
