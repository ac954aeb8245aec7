package notify

import (
	"sync"
	"time"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/watcher"
)

// Snapshot is a point-in-time view of a Tracker.
type Snapshot struct {
	Status     watcher.Status `json:"status"`
	Saves      int            `json:"saves"`
	Errors     int            `json:"errors"`
	LastSaved  *SavedSummary  `json:"last_saved,omitempty"`
	LastError  *ErrorSummary  `json:"last_error,omitempty"`
	StartedAt  time.Time      `json:"started_at,omitempty"`
	LastChange time.Time      `json:"last_change,omitempty"`
}

type SavedSummary struct {
	Time    time.Time `json:"time"`
	Path    string    `json:"path"`
	Preview string    `json:"preview"`
	Length  int       `json:"length"`
}

type ErrorSummary struct {
	Time    time.Time     `json:"time"`
	Kind    clerrors.Kind `json:"kind"`
	Message string        `json:"message"`
}

// Tracker keeps running totals for status reporting.
type Tracker struct {
	mu   sync.RWMutex
	now  func() time.Time
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now, snap: Snapshot{Status: watcher.StatusIdle}}
}

func (t *Tracker) OnSaved(ev watcher.SavedEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Saves++
	t.snap.LastSaved = &SavedSummary{
		Time:    ev.Time,
		Path:    ev.Path,
		Preview: ev.Preview,
		Length:  ev.Length,
	}
}

func (t *Tracker) OnError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Errors++
	t.snap.LastError = &ErrorSummary{
		Time:    t.now(),
		Kind:    clerrors.KindOf(err),
		Message: err.Error(),
	}
}

func (t *Tracker) OnStatus(status watcher.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if status == watcher.StatusMonitoring {
		t.snap.StartedAt = now
	}
	t.snap.Status = status
	t.snap.LastChange = now
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.snap
	if s.LastSaved != nil {
		v := *s.LastSaved
		s.LastSaved = &v
	}
	if s.LastError != nil {
		v := *s.LastError
		s.LastError = &v
	}
	return s
}
