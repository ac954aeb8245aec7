// Package notify holds the observers that consume watcher notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/journal"
	"clipsaver/internal/watcher"
)

// Multi forwards every notification to each observer in turn. A panicking
// observer does not keep the event from the ones after it; the first panic
// is re-raised once all of them have run.
type Multi []watcher.Observer

func (m Multi) OnSaved(ev watcher.SavedEvent) {
	m.each(func(o watcher.Observer) { o.OnSaved(ev) })
}

func (m Multi) OnError(err error) {
	m.each(func(o watcher.Observer) { o.OnError(err) })
}

func (m Multi) OnStatus(status watcher.Status) {
	m.each(func(o watcher.Observer) { o.OnStatus(status) })
}

func (m Multi) each(fn func(watcher.Observer)) {
	var first any
	for _, o := range m {
		func() {
			defer func() {
				if r := recover(); r != nil && first == nil {
					first = r
				}
			}()
			fn(o)
		}()
	}
	if first != nil {
		panic(first)
	}
}

// Funcs adapts plain functions to watcher.Observer. Nil fields are skipped.
type Funcs struct {
	Saved  func(watcher.SavedEvent)
	Error  func(error)
	Status func(watcher.Status)
}

func (f Funcs) OnSaved(ev watcher.SavedEvent) {
	if f.Saved != nil {
		f.Saved(ev)
	}
}

func (f Funcs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f Funcs) OnStatus(status watcher.Status) {
	if f.Status != nil {
		f.Status(status)
	}
}

type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (l *LogObserver) OnSaved(ev watcher.SavedEvent) {
	l.logger.Info("clipboard saved",
		slog.String("session", ev.Session),
		slog.String("path", ev.Path),
		slog.Int("length", ev.Length),
		slog.String("preview", ev.Preview))
}

func (l *LogObserver) OnError(err error) {
	l.logger.Error("clipboard watcher error",
		slog.String("kind", string(clerrors.KindOf(err))),
		slog.String("error", err.Error()))
}

func (l *LogObserver) OnStatus(status watcher.Status) {
	l.logger.Info("clipboard watcher status", slog.String("status", string(status)))
}

// Console prints notifications for a foreground session.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) OnSaved(ev watcher.SavedEvent) {
	c.printf("Saved: [%s] %s\n", ev.Time.Format(journal.TimestampLayout), ev.Preview)
}

func (c *Console) OnError(err error) {
	c.printf("Error: %s\n", err.Error())
}

func (c *Console) OnStatus(status watcher.Status) {
	c.printf("Status: %s\n", status)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
