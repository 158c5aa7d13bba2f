// Package logging implements the structured console/file sink shared by the
// crawler and search server. Lines are serialized with a single mutex so
// concurrent crawl workers never interleave partial lines. Log rotation is
// out of scope; the file sink simply appends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Level is the severity of a single log line.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger is a mutex-serialized logfmt sink writing to console and/or file.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
}

// Options configures where log lines go.
type Options struct {
	Console bool
	LogDir  string // non-empty enables the file sink at <LogDir>/log.txt
}

// New opens the configured sinks. Callers must call Close when done with
// the file sink.
func New(opts Options) (*Logger, error) {
	l := &Logger{}
	if opts.Console {
		l.console = os.Stdout
	}
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.LogDir, "log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Close releases the file sink, if open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Allowed fields beyond level/msg/ts are caller-supplied key/value pairs;
// keep them small and structured (host, url, depth), not prose.
func (l *Logger) log(level Level, msg string, kv ...any) {
	if l.console == nil && l.file == nil {
		return
	}

	pairs := append([]any{"ts", time.Now().Format(time.RFC3339), "level", string(level), "msg", msg}, kv...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.console != nil {
		enc := logfmt.NewEncoder(l.console)
		encodeKV(enc, pairs)
		enc.EndRecord()
	}
	if l.file != nil {
		enc := logfmt.NewEncoder(l.file)
		encodeKV(enc, pairs)
		enc.EndRecord()
	}
}

func encodeKV(enc *logfmt.Encoder, pairs []any) {
	for i := 0; i+1 < len(pairs); i += 2 {
		_ = enc.EncodeKeyval(pairs[i], pairs[i+1])
	}
}

func (l *Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv...) }
