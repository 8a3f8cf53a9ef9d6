package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"ozzus/logroute/internal/domain"
)

// Sink accepts a formatted record.
type Sink interface {
	Write(ctx context.Context, rec domain.Record) error
}

// Func adapts a plain function to Sink.
type Func func(ctx context.Context, rec domain.Record) error

func (f Func) Write(ctx context.Context, rec domain.Record) error {
	return f(ctx, rec)
}

// Console prints records to Out, one per line. A nil Out means stdout.
type Console struct {
	Out io.Writer
}

func NewConsole() *Console {
	return &Console{Out: os.Stdout}
}

func (c *Console) Write(_ context.Context, rec domain.Record) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, rec.String())
	return err
}

// Unimplemented stands in for a transport that does not exist yet.
// Writing to it panics with ErrNotImplemented.
type Unimplemented struct{}

func (Unimplemented) Write(context.Context, domain.Record) error {
	panic(ErrNotImplemented)
}
