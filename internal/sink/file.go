package sink

import (
	"context"
	"os"

	"ozzus/logroute/internal/domain"
)

// File appends records to the file at Path. The file is opened and
// closed on every write, created if missing. Writers are not coordinated,
// so concurrent callers may interleave lines.
type File struct {
	Path string
	Perm os.FileMode
}

func NewFile(path string) *File {
	return &File{Path: path, Perm: 0o644}
}

func (f *File) Write(_ context.Context, rec domain.Record) error {
	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}

	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return &FileOpenError{Path: f.Path, Reason: err.Error()}
	}
	defer file.Close()

	if _, err := file.WriteString(rec.String() + "\n"); err != nil {
		return &FileWriteError{Path: f.Path, Reason: err.Error()}
	}

	return nil
}
