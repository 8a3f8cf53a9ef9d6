// Package checks probes whether the sinks behind each log target can
// currently accept records.
package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"
)

type Result struct {
	Name     string `json:"name"`
	OK       bool   `json:"ok"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Run executes every checker concurrently with its own timeout and
// returns the results in checker order.
func Run(ctx context.Context, timeout time.Duration, checkers []Checker) []Result {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return iter.Map(checkers, func(c *Checker) Result {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		err := (*c).Check(checkCtx)
		res := Result{
			Name:     (*c).Name(),
			OK:       err == nil,
			Duration: formatMilliseconds(time.Since(start)),
		}
		if err != nil {
			res.Error = err.Error()
		}
		return res
	})
}

// AllOK reports whether every result passed.
func AllOK(results []Result) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func formatMilliseconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1f ms", float64(d.Microseconds())/1000.0)
}
