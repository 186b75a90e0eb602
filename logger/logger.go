package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "debug",
	INFO:  "info",
	WARN:  "warn",
	ERROR: "error",
	FATAL: "fatal",
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel converts a configuration string into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Config describes how the logger should be initialised.
type Config struct {
	Level      LogLevel
	LogDir     string
	MaxSize    int64 // bytes
	MaxAge     int   // days
	UseColor   bool
	ShowCaller bool
	Prefix     string
}

// Logger wraps a zap logger with the printf-style API used by the server.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
	sink  *fileSink
}

var (
	mu            sync.RWMutex
	defaultLogger = newConsoleLogger()
)

func newConsoleLogger() *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(false)), zapcore.Lock(os.Stdout), level)
	return &Logger{zap: zap.New(core), level: level}
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// Initialize replaces the global logger according to config.
func Initialize(config Config) error {
	level := zap.NewAtomicLevelAt(config.Level.zapLevel())

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(config.UseColor)), zapcore.Lock(os.Stdout), level),
	}

	var sink *fileSink
	if config.LogDir != "" {
		var err error
		sink, err = openFileSink(config.LogDir, config.MaxSize, config.MaxAge)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(false)), sink, level))
	}

	opts := []zap.Option{zap.AddCallerSkip(3)}
	if config.ShowCaller {
		opts = append(opts, zap.AddCaller())
	}

	z := zap.New(zapcore.NewTee(cores...), opts...)
	if config.Prefix != "" {
		z = z.Named(config.Prefix)
	}

	replace(&Logger{zap: z, level: level, sink: sink})
	return nil
}

// UseCore installs a logger writing to core and returns a function restoring
// the previous one. Intended for tests.
func UseCore(core zapcore.Core) (restore func()) {
	mu.RLock()
	prev := defaultLogger
	mu.RUnlock()

	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	mu.Lock()
	defaultLogger = &Logger{zap: zap.New(core, zap.AddCallerSkip(3)), level: level}
	mu.Unlock()

	return func() {
		mu.Lock()
		defaultLogger = prev
		mu.Unlock()
	}
}

func replace(l *Logger) {
	mu.Lock()
	prev := defaultLogger
	defaultLogger = l
	mu.Unlock()

	if prev != nil {
		_ = prev.zap.Sync()
		if prev.sink != nil {
			_ = prev.sink.Close()
		}
	}
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func (l *Logger) log(level LogLevel, msg string, fields []zap.Field) {
	switch level {
	case DEBUG:
		l.zap.Debug(msg, fields...)
	case INFO:
		l.zap.Info(msg, fields...)
	case WARN:
		l.zap.Warn(msg, fields...)
	case ERROR:
		l.zap.Error(msg, fields...)
	case FATAL:
		l.zap.Fatal(msg, fields...)
	}
}

func logf(level LogLevel, format string, args ...interface{}) {
	current().log(level, fmt.Sprintf(format, args...), nil)
}

// Public helper methods for the default logger.
func Debug(format string, args ...interface{}) { logf(DEBUG, format, args...) }

func Info(format string, args ...interface{}) { logf(INFO, format, args...) }

func Warn(format string, args ...interface{}) { logf(WARN, format, args...) }

func Error(format string, args ...interface{}) { logf(ERROR, format, args...) }

// Fatal logs and exits the process.
func Fatal(format string, args ...interface{}) { logf(FATAL, format, args...) }

// WithFields attaches structured fields to the log entry.
func WithFields(fields map[string]interface{}) *LogEntry {
	return &LogEntry{fields: fields}
}

// LogEntry represents a structured log entry builder.
type LogEntry struct {
	fields map[string]interface{}
}

func (e *LogEntry) Debug(format string, args ...interface{}) { e.log(DEBUG, format, args...) }

func (e *LogEntry) Info(format string, args ...interface{}) { e.log(INFO, format, args...) }

func (e *LogEntry) Warn(format string, args ...interface{}) { e.log(WARN, format, args...) }

func (e *LogEntry) Error(format string, args ...interface{}) { e.log(ERROR, format, args...) }

func (e *LogEntry) Fatal(format string, args ...interface{}) { e.log(FATAL, format, args...) }

// Log allows emitting a message with an explicit level via the entry.
func (e *LogEntry) Log(level LogLevel, format string, args ...interface{}) {
	e.log(level, format, args...)
}

func (e *LogEntry) log(level LogLevel, format string, args ...interface{}) {
	// Sorted so that the console output is stable between runs.
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, e.fields[k]))
	}
	current().log(level, fmt.Sprintf(format, args...), fields)
}

// SetLevel updates the global logging level.
func SetLevel(level LogLevel) {
	current().level.SetLevel(level.zapLevel())
}

// GetLevel returns the current global logging level.
func GetLevel() LogLevel {
	switch current().level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel:
		return ERROR
	case zapcore.FatalLevel:
		return FATAL
	default:
		return INFO
	}
}

// Sync flushes buffered entries.
func Sync() error {
	return current().zap.Sync()
}
