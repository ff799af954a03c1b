package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/morph/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger        *logrus.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.entry(ctx).Infof(msg, data...)
	}
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.entry(ctx).Warnf(msg, data...)
	}
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.entry(ctx).Errorf(msg, data...)
	}
}

// Trace logs statement execution details
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logrus.Fields{
		"duration_ms": milliseconds(elapsed),
		"sql":         sql,
	}
	if rows != -1 {
		fields["rows"] = rows
	}
	entry := l.entry(ctx).WithFields(fields)

	switch {
	case err != nil && l.LogLevel >= Error:
		entry.WithError(err).Error("statement failed")
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		entry.WithField("slow_threshold", l.SlowThreshold.String()).Warn("slow statement")
	case l.LogLevel >= Info:
		entry.Info("statement executed")
	}
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("file", utils.FileWithLineNum())
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}
