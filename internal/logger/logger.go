package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "clipsaver.log"
)

type Logger struct {
	*slog.Logger
	file   io.Closer
	logDir string
}

// FileOptions configures the rotated JSON log file.
type FileOptions struct {
	Dir        string
	Level      slog.Level
	MaxSizeMB  int
	MaxBackups int
	// FileOnly drops console output, as the daemon runs detached.
	FileOnly bool
}

func New(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(newConsoleHandler(os.Stdout, level))}
}

// NewWithWriter logs to w using the compact format, or tinter colours when
// w is a terminal.
func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(newConsoleHandler(w, level))}
}

func NewFileLogger(opts FileOptions) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, DefaultLogFile),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	fileHandler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: false,
	})

	if opts.FileOnly {
		return &Logger{
			Logger: slog.New(fileHandler),
			file:   rotator,
			logDir: opts.Dir,
		}, nil
	}

	handler := &multiHandler{
		handlers: []slog.Handler{newConsoleHandler(os.Stdout, opts.Level), fileHandler},
	}

	return &Logger{
		Logger: slog.New(handler),
		file:   rotator,
		logDir: opts.Dir,
	}, nil
}

// ParseLevel converts a config or flag value to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	if IsTTY(w) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})
	}
	return newCompactHandler(w, level)
}

type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LogDir is empty for console-only loggers.
func (l *Logger) LogDir() string {
	return l.logDir
}

func Default() *Logger {
	return New(slog.LevelInfo)
}

func DefaultFileOnly(logDir string) (*Logger, error) {
	return NewFileLogger(FileOptions{Dir: logDir, Level: slog.LevelDebug, FileOnly: true})
}

// compactHandler writes "15:04:05 [LEVEL] msg key=value" lines.
type compactHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

func newCompactHandler(w io.Writer, level slog.Level) *compactHandler {
	return &compactHandler{
		mu:     &sync.Mutex{},
		writer: w,
		level:  level,
	}
}

func (h *compactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *compactHandler) Handle(ctx context.Context, r slog.Record) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s] %s", r.Time.Format("15:04:05"), r.Level.String(), r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s=%v", h.prefix, a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *compactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *compactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
