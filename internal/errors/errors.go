package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure surfaced by the clipboard watcher.
type Kind string

const (
	KindClipboardUnavailable Kind = "clipboard_unavailable"
	KindPersistenceFailure   Kind = "persistence_failure"
	KindInternal             Kind = "internal"
	KindValidation           Kind = "validation"
	KindDaemon               Kind = "daemon"
	KindUnknown              Kind = "unknown"
)

var (
	ErrClipboardUnavailable = stderrors.New("clipboard unavailable")
	ErrPersistenceFailure   = stderrors.New("persistence failure")
	ErrInternal             = stderrors.New("internal error")
)

type ClipboardError struct {
	Operation string
	Err       error
}

func (e *ClipboardError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("clipboard %s failed", e.Operation)
	}
	return fmt.Sprintf("clipboard %s failed: %v", e.Operation, e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

func (e *ClipboardError) Is(target error) bool {
	return target == ErrClipboardUnavailable
}

// WrapClipboard marks err as a recoverable clipboard read failure.
func WrapClipboard(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ClipboardError{
		Operation: operation,
		Err:       err,
	}
}

type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write to %s failed: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

func WrapPersistence(path string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{
		Path: path,
		Err:  err,
	}
}

// InternalError carries an unclassified failure, including a recovered panic value.
type InternalError struct {
	Operation string
	Value     any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("unexpected error during %s: %v", e.Operation, e.Value)
}

func (e *InternalError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

func NewInternal(operation string, value any) error {
	return &InternalError{
		Operation: operation,
		Value:     value,
	}
}

type DaemonError struct {
	Component string
	Err       error
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("daemon %s: %v", e.Component, e.Err)
}

func (e *DaemonError) Unwrap() error {
	return e.Err
}

func WrapDaemon(component string, err error) error {
	if err == nil {
		return nil
	}
	return &DaemonError{
		Component: component,
		Err:       err,
	}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// KindOf reports the most specific Kind found in err's chain.
// Persistence wins over internal so a panic on the write path stays fatal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		daemonErr     *DaemonError
	)

	switch {
	case stderrors.Is(err, ErrPersistenceFailure):
		return KindPersistenceFailure
	case stderrors.Is(err, ErrClipboardUnavailable):
		return KindClipboardUnavailable
	case stderrors.Is(err, ErrInternal):
		return KindInternal
	case stderrors.As(err, &validationErr):
		return KindValidation
	case stderrors.As(err, &daemonErr):
		return KindDaemon
	default:
		return KindUnknown
	}
}
