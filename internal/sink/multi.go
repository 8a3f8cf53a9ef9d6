package sink

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"ozzus/logroute/internal/domain"
)

// Multi writes each record to all of its sinks concurrently.
// Every sink is attempted; the returned error joins the failures.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Write(ctx context.Context, rec domain.Record) error {
	switch len(m.sinks) {
	case 0:
		return nil
	case 1:
		return m.sinks[0].Write(ctx, rec)
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, s := range m.sinks {
		p.Go(func(ctx context.Context) error {
			return s.Write(ctx, rec)
		})
	}
	return p.Wait()
}

func (m *Multi) Len() int {
	return len(m.sinks)
}
