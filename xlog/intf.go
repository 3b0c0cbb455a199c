package xlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLevel string

const (
	LogLevelDebug logLevel = "DEBUG"
	LogLevelInfo  logLevel = "INFO"
	LogLevelWarn  logLevel = "WARN"
	LogLevelError logLevel = "ERROR"
)

func (lvl logLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl logLevel) String() string {
	return string(lvl)
}

type logEncoderType uint8

const (
	JSON logEncoderType = iota
	PlainText
	_encMax
)

func (enc logEncoderType) String() string {
	switch enc {
	case JSON:
		return "json"
	case PlainText:
		return "text"
	default:
	}
	return "unknown"
}

type logOutWriterType uint8

const (
	StdOut logOutWriterType = iota
	StdErr
	File
	testMemAsOut
	_writerMax
)

const (
	ContextKeyMapToOmitempty = "_"
	ContextKeyMapToItself    = ""
	coreKeyIgnored           = ""
)

var (
	ErrXLogUnknownLevel   = errors.New("[XLogger] unknown log level")
	ErrXLogUnknownEncoder = errors.New("[XLogger] unknown log encoder")
	ErrXLogUnknownWriter  = errors.New("[XLogger] unknown log writer")
)

// ParseLogLevel accepts the level names case-insensitively.
func ParseLogLevel(level string) (logLevel, error) {
	switch lvl := logLevel(strings.ToUpper(strings.TrimSpace(level))); lvl {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return lvl, nil
	default:
	}
	return LogLevelDebug, fmt.Errorf("%w: %q", ErrXLogUnknownLevel, level)
}

// ParseLogEncoder accepts "json", "text" and "plaintext".
func ParseLogEncoder(enc string) (logEncoderType, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "json":
		return JSON, nil
	case "text", "plaintext":
		return PlainText, nil
	default:
	}
	return _encMax, fmt.Errorf("%w: %q", ErrXLogUnknownEncoder, enc)
}

// ContextKey is the type of the context keys read by the *Context
// logging methods.
type ContextKey string

type outWriters struct {
	lock    sync.RWMutex
	writers map[logOutWriterType]zapcore.WriteSyncer
}

var (
	writerMap = &outWriters{
		writers: map[logOutWriterType]zapcore.WriteSyncer{
			StdOut: zapcore.Lock(os.Stdout),
			StdErr: zapcore.Lock(os.Stderr),
		},
	}
	encoderMap = map[logEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
		JSON:      zapcore.NewJSONEncoder,
		PlainText: zapcore.NewConsoleEncoder,
	}
)

func (w *outWriters) Put(typ logOutWriterType, ws zapcore.WriteSyncer) error {
	if typ >= _writerMax || ws == nil {
		return ErrXLogUnknownWriter
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	w.writers[typ] = ws
	return nil
}

func (w *outWriters) Get(typ logOutWriterType) (zapcore.WriteSyncer, bool) {
	w.lock.RLock()
	defer w.lock.RUnlock()
	ws, ok := w.writers[typ]
	return ws, ok
}

func getEncoderByType(typ logEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

func getOutWriterByType(typ logOutWriterType) zapcore.WriteSyncer {
	out, ok := writerMap.Get(typ)
	if !ok {
		return zapcore.Lock(os.Stdout)
	}
	return out
}

type xLogCore interface {
	timeEncoder() zapcore.TimeEncoder
	levelEncoder() zapcore.LevelEncoder
	writeSyncer() zapcore.WriteSyncer
	outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder

	zapcore.Core
}

type XLogCoreConstructor func(
	zapcore.LevelEnabler,
	logEncoderType,
	logOutWriterType,
	zapcore.LevelEncoder,
	zapcore.TimeEncoder,
) xLogCore

// XLogger mainly implemented by Uber zap logger.
//
// ErrorStack is used to print the error stack of an infra.ErrorStack.
// Instead of using zap default error stack, it inlines the frames in
// JSON format, so log aggregators are able to parse them.
//
// The interface methods with context add the values of the configured
// context keys as additional fields.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error
	// Close syncs and releases the log files.
	Close() error

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	ErrorStack(err error, msg string, fields ...zap.Field)

	DebugContext(ctx context.Context, msg string, fields ...zap.Field)
	InfoContext(ctx context.Context, msg string, fields ...zap.Field)
	WarnContext(ctx context.Context, msg string, fields ...zap.Field)
	ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field)

	Logf(lvl zapcore.Level, format string, args ...any)
}
