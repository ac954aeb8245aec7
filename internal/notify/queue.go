package notify

import (
	"log/slog"
	"sync"

	"clipsaver/internal/watcher"
)

// Queue hands notifications to a slow observer on its own goroutine.
// Events are delivered in order and never dropped; the buffer grows as
// needed so the watcher never blocks on delivery.
type Queue struct {
	next   watcher.Observer
	logger *slog.Logger

	mu      sync.Mutex
	pending []delivery
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewQueue delivers to next. Observer panics are logged to logger
// (slog.Default when nil) and delivery carries on with the next event.
func NewQueue(next watcher.Observer, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		next:   next,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *Queue) OnSaved(ev watcher.SavedEvent) {
	q.push("OnSaved", func() { q.next.OnSaved(ev) })
}

func (q *Queue) OnError(err error) {
	q.push("OnError", func() { q.next.OnError(err) })
}

func (q *Queue) OnStatus(status watcher.Status) {
	q.push("OnStatus", func() { q.next.OnStatus(status) })
}

type delivery struct {
	callback string
	fn       func()
}

func (q *Queue) push(callback string, fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, delivery{callback: callback, fn: fn})
	select {
	case q.wake <- struct{}{}:
	default:
	}
	q.mu.Unlock()
}

// Len reports how many notifications are waiting for delivery.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting notifications, delivers what is already queued
// and returns once delivery has finished.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.wake)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		_, ok := <-q.wake
		for {
			q.mu.Lock()
			batch := q.pending
			q.pending = nil
			q.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, d := range batch {
				q.deliver(d)
			}
		}
		if !ok {
			return
		}
	}
}

func (q *Queue) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("observer panicked",
				slog.String("callback", d.callback),
				slog.Any("panic", r))
		}
	}()
	d.fn()
}
