package watcher

import (
	"context"
	"time"
)

// State is the lifecycle position of a Watcher.
type State int

const (
	Idle State = iota
	Starting
	Monitoring
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Monitoring:
		return "monitoring"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Status is the human-readable text reported on every state transition.
type Status string

const (
	StatusInitializing Status = "Initializing..."
	StatusMonitoring   Status = "Monitoring"
	StatusStopping     Status = "Stopping..."
	StatusIdle         Status = "Idle"
)

// Source reads the current clipboard text. Implementations report an
// unreadable clipboard with an error matching errors.ErrClipboardUnavailable.
type Source interface {
	ReadText(ctx context.Context) (string, error)
}

type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) ReadText(ctx context.Context) (string, error) {
	return f(ctx)
}

// PathProvider supplies the journal path. It is consulted on every save.
type PathProvider interface {
	Destination() string
}

type PathFunc func() string

func (f PathFunc) Destination() string {
	return f()
}

// SavedEvent describes one successful append.
type SavedEvent struct {
	Session string
	Time    time.Time
	Path    string
	Preview string
	Length  int
}

// Observer receives watcher notifications in the order they occur. Calls
// come from whichever goroutine produced the event and must return quickly;
// wrap slow observers in a notify.Queue. Observers must not call Start or
// Stop synchronously from a callback.
type Observer interface {
	OnSaved(ev SavedEvent)
	OnError(err error)
	OnStatus(status Status)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) OnSaved(SavedEvent) {}
func (NopObserver) OnError(error)      {}
func (NopObserver) OnStatus(Status)    {}
