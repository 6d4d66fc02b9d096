// Package logging provides the leveled, optionally colored console logger.
// When a log file is configured every console line is also written there as
// a structured JSON entry through zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/reelmaster/internal/config"
	"github.com/backmassage/reelmaster/internal/term"
)

// Logger provides leveled, optionally colored logging with an optional
// JSON file sink.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	file   *os.File
	sink   *zap.Logger
	now    func() time.Time
}

// NewLogger configures colors from cfg and opens cfg.LogFile when set.
// Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{out: os.Stdout, errOut: os.Stderr, now: time.Now}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.sink = newFileSink(f)
	}
	return l, nil
}

// newFileSink builds a zap logger that writes one JSON object per line.
func newFileSink(w io.Writer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// Close flushes and closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink != nil {
		_ = l.sink.Sync()
		l.sink = nil
	}
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, color, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, ts+" ["+level+"] "+text+"\n")
	}
	if l.sink != nil {
		l.sink.Check(zapLevel(level), text).Write(zap.String("tag", level))
	}
}

// zapLevel maps the console tags onto zap levels; the tag itself is kept
// as a field so RENDER and OUTLIER survive in the file.
func zapLevel(tag string) zapcore.Level {
	switch tag {
	case "ERROR":
		return zapcore.ErrorLevel
	case "WARN", "OUTLIER":
		return zapcore.WarnLevel
	case "DEBUG":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), also to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Render logs at RENDER level (magenta).
func (l *Logger) Render(format string, args ...interface{}) {
	l.line("RENDER", term.Magenta, fmt.Sprintf(format, args...))
}

// Outlier logs at OUTLIER level (orange).
func (l *Logger) Outlier(format string, args ...interface{}) {
	l.line("OUTLIER", term.Orange, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}
