package sink

import (
	"errors"
	"fmt"
)

var (
	ErrFileOpen  = errors.New("file open error")
	ErrFileWrite = errors.New("file write error")

	// ErrNotImplemented is the panic value of sinks that have no transport.
	ErrNotImplemented = errors.New("network sink is not implemented")
)

// FileOpenError reports that the log file could not be opened.
// Reason carries the underlying I/O failure as text.
type FileOpenError struct {
	Path   string
	Reason string
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("open log file %s: %s", e.Path, e.Reason)
}

func (e *FileOpenError) Is(target error) bool { return target == ErrFileOpen }

// FileWriteError reports that a record could not be appended to the log file.
type FileWriteError struct {
	Path   string
	Reason string
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("write log file %s: %s", e.Path, e.Reason)
}

func (e *FileWriteError) Is(target error) bool { return target == ErrFileWrite }
