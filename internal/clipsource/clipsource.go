// Package clipsource provides the clipboard backends the watcher reads from.
package clipsource

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	cmdclip "github.com/atotto/clipboard"
	nativeclip "golang.design/x/clipboard"

	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/watcher"
)

type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendNative   Backend = "native"
	BackendCommand  Backend = "command"
	BackendHeadless Backend = "headless"
)

var ErrNoClipboard = stderrors.New("no clipboard available")

func Backends() []Backend {
	return []Backend{BackendAuto, BackendNative, BackendCommand, BackendHeadless}
}

func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if b == "" {
		return BackendAuto, nil
	}
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", clerrors.NewValidation("clipboard.backend", fmt.Sprintf("unknown backend %q, must be one of auto, native, command, headless", s))
}

// New returns the source for backend. BackendAuto probes the native
// clipboard first, then the command-line tools, and falls back to a
// headless source that reports every read as unavailable.
func New(backend Backend) (watcher.Source, error) {
	switch backend {
	case BackendNative:
		return NewNative(), nil
	case BackendCommand:
		return NewCommand(), nil
	case BackendHeadless:
		return Headless{}, nil
	case BackendAuto, "":
		return detect(probeNative, cmdclip.Unsupported), nil
	default:
		return nil, clerrors.NewValidation("clipboard.backend", fmt.Sprintf("unknown backend %q", backend))
	}
}

func detect(probe func() error, commandUnsupported bool) watcher.Source {
	if err := probe(); err == nil {
		return NewNative()
	}
	if !commandUnsupported {
		return NewCommand()
	}
	return Headless{}
}

// Name reports which backend a source returned by New uses.
func Name(src watcher.Source) Backend {
	switch src.(type) {
	case *Native:
		return BackendNative
	case *Command:
		return BackendCommand
	case Headless:
		return BackendHeadless
	default:
		return ""
	}
}

var (
	nativeOnce sync.Once
	nativeErr  error
)

func probeNative() error {
	nativeOnce.Do(func() {
		nativeErr = nativeclip.Init()
	})
	return nativeErr
}

// Native reads the clipboard through the platform API.
type Native struct{}

func NewNative() *Native {
	return &Native{}
}

func (n *Native) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := probeNative(); err != nil {
		return "", clerrors.WrapClipboard("init native clipboard", err)
	}
	return string(nativeclip.Read(nativeclip.FmtText)), nil
}

// Command reads the clipboard through xclip, xsel, wl-paste, pbpaste or
// the Windows API, whichever the platform provides.
type Command struct {
	readAll func() (string, error)
}

func NewCommand() *Command {
	return &Command{readAll: cmdclip.ReadAll}
}

func (c *Command) ReadText(ctx context.Context) (string, error) {
	if cmdclip.Unsupported {
		return "", clerrors.WrapClipboard("read", fmt.Errorf("%w: no clipboard utility installed", ErrNoClipboard))
	}
	return readWithContext(ctx, c.readAll)
}

// readWithContext stops waiting on a hung helper process when ctx ends.
func readWithContext(ctx context.Context, read func() (string, error)) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := read()
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", clerrors.WrapClipboard("read", r.err)
		}
		return r.text, nil
	}
}

// Headless is used when no clipboard can be reached.
type Headless struct{}

func (Headless) ReadText(context.Context) (string, error) {
	return "", clerrors.WrapClipboard("read", ErrNoClipboard)
}
