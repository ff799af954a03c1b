package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/morph/utils"
)

// LogLevel log level
type LogLevel int

const (
	// Silent silent log level
	Silent LogLevel = iota + 1
	// Error error log level
	Error
	// Warn warn log level
	Warn
	// Info info log level
	Info
)

// Writer log writer interface
type Writer interface {
	Printf(string, ...interface{})
}

// Config logger config
type Config struct {
	SlowThreshold        time.Duration
	LogLevel             LogLevel
	ParameterizedQueries bool
}

// Interface logger interface
type Interface interface {
	LogMode(LogLevel) Interface
	Info(context.Context, string, ...interface{})
	Warn(context.Context, string, ...interface{})
	Error(context.Context, string, ...interface{})
	Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error)
}

var (
	// Discard logger that prints nothing
	Discard = New(log.New(io.Discard, "", log.LstdFlags), Config{LogLevel: Silent})
	// Default logger, level taken from MORPH_LOG_LEVEL
	Default = New(log.New(os.Stdout, "\r\n", log.LstdFlags), Config{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      ParseLevel(os.Getenv("MORPH_LOG_LEVEL")),
	})
)

// ParseLevel parses silent/error/warn/info, anything else is Warn
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return Silent
	case "error":
		return Error
	case "info":
		return Info
	default:
		return Warn
	}
}

// New initialize logger
func New(writer Writer, config Config) Interface {
	return &logger{Writer: writer, Config: config}
}

type logger struct {
	Writer
	Config
}

// LogMode log mode
func (l *logger) LogMode(level LogLevel) Interface {
	newlogger := *l
	newlogger.LogLevel = level
	return &newlogger
}

// Info print info
func (l *logger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Printf("%s [info] "+msg, append([]interface{}{utils.FileWithLineNum()}, data...)...)
	}
}

// Warn print warn messages
func (l *logger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Printf("%s [warn] "+msg, append([]interface{}{utils.FileWithLineNum()}, data...)...)
	}
}

// Error print error messages
func (l *logger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Printf("%s [error] "+msg, append([]interface{}{utils.FileWithLineNum()}, data...)...)
	}
}

// Trace print statement execution
func (l *logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= Error:
		sql, rows := fc()
		l.Printf("%s %s\n[%.3fms] [rows:%s] %s", utils.FileWithLineNum(), err, milliseconds(elapsed), rowsString(rows), sql)
	case elapsed > l.SlowThreshold && l.SlowThreshold != 0 && l.LogLevel >= Warn:
		sql, rows := fc()
		slowLog := fmt.Sprintf("SLOW SQL >= %v", l.SlowThreshold)
		l.Printf("%s %s\n[%.3fms] [rows:%s] %s", utils.FileWithLineNum(), slowLog, milliseconds(elapsed), rowsString(rows), sql)
	case l.LogLevel == Info:
		sql, rows := fc()
		l.Printf("%s\n[%.3fms] [rows:%s] %s", utils.FileWithLineNum(), milliseconds(elapsed), rowsString(rows), sql)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

func rowsString(rows int64) string {
	if rows == -1 {
		return "-"
	}
	return fmt.Sprint(rows)
}
