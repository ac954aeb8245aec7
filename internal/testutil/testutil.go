package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"clipsaver/internal/config"
	"clipsaver/internal/logger"
	"clipsaver/internal/watcher"
)

// FakeClipboard is a scriptable watcher.Source.
type FakeClipboard struct {
	mu         sync.Mutex
	text       string
	err        error
	panicValue any
	reads      int
	changed    chan struct{}
}

func NewFakeClipboard(initial string) *FakeClipboard {
	return &FakeClipboard{text: initial, changed: make(chan struct{}, 1)}
}

func (c *FakeClipboard) ReadText(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.reads++
	text, err, p := c.text, c.err, c.panicValue
	c.mu.Unlock()

	select {
	case c.changed <- struct{}{}:
	default:
	}

	if p != nil {
		panic(p)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *FakeClipboard) Set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.err = nil
	c.panicValue = nil
}

func (c *FakeClipboard) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *FakeClipboard) SetPanic(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panicValue = v
}

func (c *FakeClipboard) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// WaitReads blocks until at least n more reads have happened.
func (c *FakeClipboard) WaitReads(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	target := c.Reads() + n
	deadline := time.Now().Add(timeout)
	for c.Reads() < target {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clipboard reads (have %d)", target, c.Reads())
		}
		select {
		case <-c.changed:
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type EventKind string

const (
	EventSaved  EventKind = "saved"
	EventError  EventKind = "error"
	EventStatus EventKind = "status"
)

type Event struct {
	Kind   EventKind
	Saved  watcher.SavedEvent
	Err    error
	Status watcher.Status
}

// RecordingObserver keeps every notification in arrival order.
type RecordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

func (o *RecordingObserver) OnSaved(ev watcher.SavedEvent) {
	o.record(Event{Kind: EventSaved, Saved: ev})
}

func (o *RecordingObserver) OnError(err error) {
	o.record(Event{Kind: EventError, Err: err})
}

func (o *RecordingObserver) OnStatus(status watcher.Status) {
	o.record(Event{Kind: EventStatus, Status: status})
}

func (o *RecordingObserver) record(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *RecordingObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]Event, len(o.events))
	copy(result, o.events)
	return result
}

func (o *RecordingObserver) Saved() []watcher.SavedEvent {
	var saved []watcher.SavedEvent
	for _, ev := range o.Events() {
		if ev.Kind == EventSaved {
			saved = append(saved, ev.Saved)
		}
	}
	return saved
}

func (o *RecordingObserver) Errors() []error {
	var errs []error
	for _, ev := range o.Events() {
		if ev.Kind == EventError {
			errs = append(errs, ev.Err)
		}
	}
	return errs
}

func (o *RecordingObserver) Statuses() []watcher.Status {
	var statuses []watcher.Status
	for _, ev := range o.Events() {
		if ev.Kind == EventStatus {
			statuses = append(statuses, ev.Status)
		}
	}
	return statuses
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", msg)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Destination = filepath.Join(t.TempDir(), "clipboard_log.txt")
	cfg.HTTP.Port = 0
	cfg.Log.File = false
	return cfg
}

func NewTestLogger() *logger.Logger {
	return logger.Default()
}

func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error but got nil", msg)
	}
}

func AssertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %v, want %v", msg, got, want)
	}
}

func AssertContains(t *testing.T, haystack, needle string, msg string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("%s: %q does not contain %q", msg, haystack, needle)
	}
}
