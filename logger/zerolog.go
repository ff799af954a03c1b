package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/morph/utils"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	Logger        zerolog.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
	}
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.event(ctx, l.Logger.Info()).Msgf(msg, data...)
	}
}

func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.event(ctx, l.Logger.Warn()).Msgf(msg, data...)
	}
}

func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.event(ctx, l.Logger.Error()).Msgf(msg, data...)
	}
}

// Trace logs statement execution details
func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)

	var (
		event *zerolog.Event
		msg   = "statement executed"
	)
	switch {
	case err != nil && l.LogLevel >= Error:
		event, msg = l.Logger.Error().Err(err), "statement failed"
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		event, msg = l.Logger.Warn().Dur("slow_threshold", l.SlowThreshold), "slow statement"
	case l.LogLevel >= Info:
		event = l.Logger.Info()
	default:
		return
	}

	sql, rows := fc()
	event = l.event(ctx, event).
		Float64("duration_ms", milliseconds(elapsed)).
		Str("sql", sql)
	if rows != -1 {
		event = event.Int64("rows", rows)
	}
	event.Msg(msg)
}

func (l *ZerologLogger) event(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	event = event.Str("file", utils.FileWithLineNum())
	if ctx != nil {
		event = event.Ctx(ctx)
	}
	return event
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
