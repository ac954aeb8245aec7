package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/journal"

	"github.com/google/uuid"
)

const (
	DefaultInterval = time.Second

	// Backoff multipliers applied to the interval after a failed read.
	clipboardBackoff = 3
	internalBackoff  = 2
)

type Option func(*Watcher)

func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithAppender replaces journal.Append, mainly for tests.
func WithAppender(fn func(path string, e journal.Entry) error) Option {
	return func(w *Watcher) {
		if fn != nil {
			w.appendEntry = fn
		}
	}
}

// Watcher polls a Source and appends every new non-blank text to the
// journal named by a PathProvider.
type Watcher struct {
	source      Source
	paths       PathProvider
	observer    Observer
	interval    time.Duration
	now         func() time.Time
	appendEntry func(path string, e journal.Entry) error
	logger      *slog.Logger

	// emitMu serialises state transitions with their notifications so
	// observers see events in the order they happened.
	emitMu sync.Mutex

	mu      sync.Mutex
	state   State
	session string
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(source Source, paths PathProvider, observer Observer, opts ...Option) *Watcher {
	if observer == nil {
		observer = NopObserver{}
	}
	w := &Watcher{
		source:      source,
		paths:       paths,
		observer:    observer,
		interval:    DefaultInterval,
		now:         time.Now,
		appendEntry: journal.Append,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) Interval() time.Duration {
	return w.interval
}

func (w *Watcher) Source() Source {
	return w.source
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == Starting || w.state == Monitoring
}

// Session returns the id of the current or most recent session.
func (w *Watcher) Session() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Start seeds the last-seen value from the clipboard and launches the poll
// loop. It is a no-op while running. If a previous session is still
// draining, Start waits for it (bounded by ctx) so that at most one worker
// exists at any time.
func (w *Watcher) Start(ctx context.Context) error {
	workerCtx, session, done, ok, err := w.begin(ctx)
	if err != nil || !ok {
		return err
	}

	logger := w.logger.With(slog.String("session", session))
	logger.Debug("clipboard watcher starting", slog.Duration("interval", w.interval))

	last, err := w.read(workerCtx)
	if err != nil {
		last = ""
	}

	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	if err != nil && workerCtx.Err() == nil {
		w.notifyError(fmt.Errorf("initial clipboard access: %w", err))
	}

	w.mu.Lock()
	if w.state != Starting {
		// Stopped while seeding; no worker was launched.
		w.mu.Unlock()
		w.notifyStatus(StatusIdle)
		w.finish(done)
		return nil
	}
	w.state = Monitoring
	w.mu.Unlock()

	w.notifyStatus(StatusMonitoring)
	go w.run(workerCtx, logger, session, last, done)
	return nil
}

func (w *Watcher) begin(ctx context.Context) (context.Context, string, chan struct{}, bool, error) {
	for {
		w.emitMu.Lock()
		w.mu.Lock()
		switch w.state {
		case Starting, Monitoring:
			w.mu.Unlock()
			w.emitMu.Unlock()
			return nil, "", nil, false, nil
		case Stopping:
			done := w.done
			w.mu.Unlock()
			w.emitMu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, "", nil, false, ctx.Err()
			}
			continue
		}

		workerCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		w.state = Starting
		w.session = uuid.NewString()
		w.cancel = cancel
		w.done = done
		session := w.session
		w.mu.Unlock()

		w.notifyStatus(StatusInitializing)
		w.emitMu.Unlock()
		return workerCtx, session, done, true, nil
	}
}

// Stop asks the loop to end at its next boundary. It returns immediately;
// use Wait to block until the session is Idle.
func (w *Watcher) Stop() {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	if w.requestStop() {
		w.notifyStatus(StatusStopping)
	}
}

// requestStop moves Starting/Monitoring to Stopping. Callers hold emitMu.
func (w *Watcher) requestStop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Starting && w.state != Monitoring {
		return false
	}
	w.state = Stopping
	w.cancel()
	return true
}

// Wait blocks until no session is active or ctx is done.
func (w *Watcher) Wait(ctx context.Context) error {
	w.mu.Lock()
	if w.state == Idle {
		w.mu.Unlock()
		return nil
	}
	done := w.done
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) StopAndWait(ctx context.Context) error {
	w.Stop()
	return w.Wait(ctx)
}

// finish marks the session Idle. Callers hold emitMu and have already
// emitted StatusIdle.
func (w *Watcher) finish(done chan struct{}) {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.state = Idle
	w.mu.Unlock()
	close(done)
}

func (w *Watcher) run(ctx context.Context, logger *slog.Logger, session, last string, done chan struct{}) {
	defer func() {
		w.emitMu.Lock()
		defer w.emitMu.Unlock()
		w.notifyStatus(StatusIdle)
		w.finish(done)
		logger.Debug("clipboard watcher stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		delay, err := w.tick(ctx, logger, session, &last)
		if err != nil {
			logger.Error("stopping after write failure", slog.String("error", err.Error()))
			w.emitMu.Lock()
			if w.requestStop() {
				w.notifyStatus(StatusStopping)
			}
			w.emitMu.Unlock()
			return
		}

		if !sleep(ctx, delay) {
			return
		}
	}
}

// tick performs one poll. It returns how long to sleep before the next
// one, or a non-nil error when the session must end.
func (w *Watcher) tick(ctx context.Context, logger *slog.Logger, session string, last *string) (time.Duration, error) {
	text, err := w.read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}
		w.emit(func() { w.notifyError(err) })
		if errors.Is(err, clerrors.ErrClipboardUnavailable) {
			logger.Warn("clipboard read failed, backing off", slog.String("error", err.Error()))
			return w.interval * clipboardBackoff, nil
		}
		logger.Warn("unexpected clipboard error, backing off", slog.String("error", err.Error()))
		return w.interval * internalBackoff, nil
	}

	if text == *last || strings.TrimSpace(text) == "" {
		return w.interval, nil
	}
	*last = text

	// A Stop that landed during the read wins over the save.
	if ctx.Err() != nil {
		return 0, nil
	}

	entry := journal.NewEntry(text, w.now())
	path, err := w.persist(entry)
	if err != nil {
		w.emit(func() { w.notifyError(err) })
		return 0, err
	}

	ev := SavedEvent{
		Session: session,
		Time:    entry.Time,
		Path:    path,
		Preview: Preview(text),
		Length:  len([]rune(text)),
	}
	logger.Debug("clipboard entry saved",
		slog.String("path", path),
		slog.Int("length", ev.Length))
	w.emit(func() {
		w.guard("OnSaved", func() { w.observer.OnSaved(ev) })
	})

	return w.interval, nil
}

func (w *Watcher) read(ctx context.Context) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", clerrors.NewInternal("clipboard read", r)
		}
	}()

	text, err = w.source.ReadText(ctx)
	if err != nil && !errors.Is(err, clerrors.ErrClipboardUnavailable) && !errors.Is(err, clerrors.ErrInternal) {
		err = clerrors.NewInternal("clipboard read", err)
	}
	return text, err
}

// persist resolves the destination and appends entry. Any failure,
// including a panic, is a PersistenceError.
func (w *Watcher) persist(entry journal.Entry) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = clerrors.WrapPersistence(path, clerrors.NewInternal("append", r))
		}
	}()

	path = w.paths.Destination()
	if path == "" {
		return "", clerrors.WrapPersistence(path, errors.New("no destination configured"))
	}
	if err := w.appendEntry(path, entry); err != nil {
		return path, clerrors.WrapPersistence(path, err)
	}
	return path, nil
}

func (w *Watcher) emit(fn func()) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	fn()
}

func (w *Watcher) notifyError(err error) {
	w.guard("OnError", func() { w.observer.OnError(err) })
}

func (w *Watcher) notifyStatus(status Status) {
	w.guard("OnStatus", func() { w.observer.OnStatus(status) })
}

func (w *Watcher) guard(callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("observer panicked",
				slog.String("callback", callback),
				slog.Any("panic", r))
		}
	}()
	fn()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
