// Package logger is the diagnostics sink for hoard. It wraps zap so the
// rest of the tree logs through one small interface.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

// Logger is the leveled logging surface used across hoard.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	// Path returns the diagnostics file, or "" when logging to console only.
	Path() string
	Sync() error
}

// Options configure New.
type Options struct {
	Level  string // "debug" | "info" | "warn" | "error"
	Pretty bool   // true => colored console, false => JSON console
	Dir    string // diagnostics directory; empty disables the file
	Quiet  bool   // drop the console core (the TUI owns the terminal)
	Now    func() time.Time
}

// FilePrefix starts every diagnostics file name.
const FilePrefix = "hoard_"

type loggerImpl struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
	path    string
	closer  func() error
}

// New builds a logger writing to the console and, when opts.Dir is set, to
// a timestamped file in that directory. If the file cannot be created the
// logger falls back to the console and reports the failure as a warning.
func New(opts Options) Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if lvl := parseLevel(opts.Level); lvl != nil {
		level.SetLevel(*lvl)
	}

	var cores []zapcore.Core
	if !opts.Quiet {
		cores = append(cores, consoleCore(opts.Pretty, level))
	}

	var (
		path    string
		closer  func() error
		fileErr error
	)
	if strings.TrimSpace(opts.Dir) != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		var file *os.File
		path, file, fileErr = openLogFile(opts.Dir, now())
		if fileErr == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(fileEncoderConfig()),
				zapcore.Lock(file),
				level,
			))
			closer = file.Close
		}
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.FatalLevel))
	l := &loggerImpl{base: base, sugared: base.Sugar(), path: path, closer: closer}
	if fileErr != nil {
		l.Warn("diagnostics file disabled", Error(fileErr))
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	base := zap.NewNop()
	return &loggerImpl{base: base, sugared: base.Sugar()}
}

// FileName returns the diagnostics file name for a session started at t.
func FileName(t time.Time) string {
	return FilePrefix + t.Format("20060102_150405") + ".log"
}

func openLogFile(dir string, now time.Time) (string, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("open log file: %w", err)
	}
	return path, file, nil
}

func consoleCore(pretty bool, level zap.AtomicLevel) zapcore.Core {
	if pretty {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(os.Stderr), level)
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	return cfg
}

func parseLevel(lvl string) *zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		l := zapcore.DebugLevel
		return &l
	case "info":
		l := zapcore.InfoLevel
		return &l
	case "warn":
		l := zapcore.WarnLevel
		return &l
	case "error":
		l := zapcore.ErrorLevel
		return &l
	default:
		return nil
	}
}

func (l *loggerImpl) Debug(msg string, fields ...zap.Field) { l.base.Debug(msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...zap.Field)  { l.base.Info(msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...zap.Field)  { l.base.Warn(msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...zap.Field) { l.base.Error(msg, fields...) }

func (l *loggerImpl) Debugf(t string, args ...interface{}) { l.sugared.Debugf(t, args...) }
func (l *loggerImpl) Infof(t string, args ...interface{})  { l.sugared.Infof(t, args...) }
func (l *loggerImpl) Warnf(t string, args ...interface{})  { l.sugared.Warnf(t, args...) }
func (l *loggerImpl) Errorf(t string, args ...interface{}) { l.sugared.Errorf(t, args...) }

func (l *loggerImpl) Path() string { return l.path }

// Sync flushes buffered entries and closes the diagnostics file.
func (l *loggerImpl) Sync() error {
	err := l.base.Sync()
	if l.closer != nil {
		if cerr := l.closer(); cerr != nil && err == nil {
			err = cerr
		}
		l.closer = nil
	}
	return err
}

// Field constructors (re-exported from zap for convenience)
// This allows other packages to use structured logging without importing zap directly.
func String(key, val string) zap.Field                 { return zap.String(key, val) }
func Int(key string, val int) zap.Field                { return zap.Int(key, val) }
func Bool(key string, val bool) zap.Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
func Error(err error) zap.Field                        { return zap.Error(err) }
