// Package logwrite writes a single leveled record to the console or to
// the default log file.
//
// Write does no filtering, routing, buffering or locking. Use
// internal/service when a minimum level or a configured sink table is
// needed.
package logwrite

import (
	"context"
	"os"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/sink"
)

// DefaultFileName is the file FileSystem records are appended to,
// relative to the working directory.
const DefaultFileName = "log.txt"

// Text is anything that converts to a string without loss.
type Text interface {
	~string | ~[]byte
}

// Write formats "[LEVEL] message" and sends it to target.
//
// Console output cannot fail. FileSystem returns *sink.FileOpenError or
// *sink.FileWriteError. Network has no transport here and panics with
// sink.ErrNotImplemented.
func Write[T Text](target domain.LogTarget, level domain.LogLevel, message T) error {
	rec := domain.NewRecord(level, string(message))

	switch target {
	case domain.LogTargetConsole:
		_ = (&sink.Console{Out: os.Stdout}).Write(context.Background(), rec)
		return nil
	case domain.LogTargetFileSystem:
		return sink.NewFile(DefaultFileName).Write(context.Background(), rec)
	case domain.LogTargetNetwork:
		return sink.Unimplemented{}.Write(context.Background(), rec)
	}

	panic("logwrite: unknown target " + string(target))
}
