package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestWrapClipboard(t *testing.T) {
	t.Run("wraps error with operation context", func(t *testing.T) {
		baseErr := errors.New("no display")
		err := WrapClipboard("read", baseErr)

		if err == nil {
			t.Fatal("expected error, got nil")
		}

		expected := "clipboard read failed: no display"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapClipboard("read", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("matches the unavailable sentinel", func(t *testing.T) {
		err := WrapClipboard("read", errors.New("xclip not found"))
		if !errors.Is(err, ErrClipboardUnavailable) {
			t.Error("expected errors.Is to match ErrClipboardUnavailable")
		}
		if errors.Is(err, ErrPersistenceFailure) {
			t.Error("clipboard error must not match ErrPersistenceFailure")
		}
	})

	t.Run("unwraps to original error", func(t *testing.T) {
		baseErr := errors.New("original")
		wrapped := WrapClipboard("init", baseErr)

		if errors.Unwrap(wrapped) != baseErr {
			t.Errorf("expected unwrapped error to be %v", baseErr)
		}
	})
}

func TestWrapPersistence(t *testing.T) {
	t.Run("wraps error with path context", func(t *testing.T) {
		err := WrapPersistence("/tmp/log.txt", fs.ErrPermission)

		expected := "write to /tmp/log.txt failed: permission denied"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapPersistence("/tmp/x", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("matches sentinel and underlying error", func(t *testing.T) {
		err := WrapPersistence("/tmp/x", fs.ErrPermission)
		if !errors.Is(err, ErrPersistenceFailure) {
			t.Error("expected errors.Is to match ErrPersistenceFailure")
		}
		if !errors.Is(err, fs.ErrPermission) {
			t.Error("expected errors.Is to match fs.ErrPermission")
		}
	})
}

func TestNewInternal(t *testing.T) {
	t.Run("formats panic values", func(t *testing.T) {
		err := NewInternal("clipboard read", "boom")

		expected := "unexpected error during clipboard read: boom"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
		if errors.Unwrap(err) != nil {
			t.Error("non-error panic value should not unwrap")
		}
	})

	t.Run("unwraps error values", func(t *testing.T) {
		baseErr := errors.New("nil map")
		err := NewInternal("append", baseErr)

		if !errors.Is(err, baseErr) {
			t.Error("expected errors.Is to find base error")
		}
		if !errors.Is(err, ErrInternal) {
			t.Error("expected errors.Is to match ErrInternal")
		}
	})
}

func TestWrapDaemon(t *testing.T) {
	t.Run("wraps error with daemon component context", func(t *testing.T) {
		baseErr := errors.New("port already in use")
		err := WrapDaemon("http server", baseErr)

		expected := "daemon http server: port already in use"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
		if errors.Unwrap(err) != baseErr {
			t.Errorf("expected unwrapped error to be %v", baseErr)
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if err := WrapDaemon("api server", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestNewValidation(t *testing.T) {
	t.Run("creates validation error with field", func(t *testing.T) {
		err := NewValidation("poll_interval", "must be at least 100ms")

		expected := "validation failed for poll_interval: must be at least 100ms"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("creates validation error without field", func(t *testing.T) {
		err := NewValidation("", "config is empty")

		expected := "validation failed: config is empty"
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"clipboard", WrapClipboard("read", errors.New("x")), KindClipboardUnavailable},
		{"persistence", WrapPersistence("/p", errors.New("x")), KindPersistenceFailure},
		{"internal", NewInternal("read", "x"), KindInternal},
		{"persistence wrapping internal", WrapPersistence("/p", NewInternal("append", "x")), KindPersistenceFailure},
		{"validation", NewValidation("f", "m"), KindValidation},
		{"daemon", WrapDaemon("api", errors.New("x")), KindDaemon},
		{"wrapped with fmt", fmt.Errorf("tick: %w", WrapClipboard("read", errors.New("x"))), KindClipboardUnavailable},
		{"plain", errors.New("x"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorTypes(t *testing.T) {
	t.Run("ClipboardError errors.As", func(t *testing.T) {
		var target *ClipboardError
		if !errors.As(WrapClipboard("read", errors.New("x")), &target) {
			t.Fatal("expected errors.As to extract ClipboardError")
		}
		if target.Operation != "read" {
			t.Errorf("expected operation %q, got %q", "read", target.Operation)
		}
	})

	t.Run("PersistenceError errors.As", func(t *testing.T) {
		var target *PersistenceError
		if !errors.As(fmt.Errorf("tick: %w", WrapPersistence("/p", errors.New("x"))), &target) {
			t.Fatal("expected errors.As to extract PersistenceError")
		}
		if target.Path != "/p" {
			t.Errorf("expected path %q, got %q", "/p", target.Path)
		}
	})
}
