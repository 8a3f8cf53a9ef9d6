package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/sink"
)

// ErrNoRoute is returned when a record is sent to a target with no sink bound.
var ErrNoRoute = errors.New("no sink routed for target")

type Config struct {
	Name     string
	MinLevel domain.LogLevel
}

type targetCounters struct {
	written  atomic.Uint64
	filtered atomic.Uint64
	failed   atomic.Uint64
}

// LogService filters records by a minimum level and routes the rest to the
// sink bound to their target.
type LogService struct {
	name     string
	minLevel atomic.Int64
	log      *slog.Logger

	mu       sync.RWMutex
	routes   map[domain.LogTarget]sink.Sink
	counters map[domain.LogTarget]*targetCounters

	running atomic.Bool
}

func NewLogService(routes map[domain.LogTarget]sink.Sink, cfg Config, log *slog.Logger) *LogService {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "logroute"
	}

	s := &LogService{
		name:     cfg.Name,
		log:      log.With("component", "log_service"),
		routes:   make(map[domain.LogTarget]sink.Sink),
		counters: make(map[domain.LogTarget]*targetCounters),
	}
	s.minLevel.Store(int64(cfg.MinLevel))

	for _, t := range domain.Targets {
		s.counters[t] = &targetCounters{}
	}
	for t, snk := range routes {
		s.Route(t, snk)
	}

	return s
}

// Route binds snk to target, replacing any previous binding. A nil sink removes the route.
func (s *LogService) Route(target domain.LogTarget, snk sink.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snk == nil {
		delete(s.routes, target)
		return
	}
	s.routes[target] = snk
	if _, ok := s.counters[target]; !ok {
		s.counters[target] = &targetCounters{}
	}
	s.log.Debug("route bound", "target", target)
}

func (s *LogService) SetMinLevel(level domain.LogLevel) {
	old := domain.LogLevel(s.minLevel.Swap(int64(level)))
	if old != level {
		s.log.Info("minimum level changed", "from", old.String(), "to", level.String())
	}
}

func (s *LogService) MinLevel() domain.LogLevel {
	return domain.LogLevel(s.minLevel.Load())
}

// Enabled reports whether a record at level passes the filter.
func (s *LogService) Enabled(level domain.LogLevel) bool {
	return level.AtLeast(s.MinLevel())
}

// Log sends message to target. It returns (false, nil) when the level is
// below the minimum and the record is dropped.
func (s *LogService) Log(ctx context.Context, target domain.LogTarget, level domain.LogLevel, message string) (bool, error) {
	if !target.Valid() {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownTarget, target)
	}
	if !level.Valid() {
		return false, fmt.Errorf("%w: %d", domain.ErrUnknownLevel, int(level))
	}

	s.mu.RLock()
	snk, ok := s.routes[target]
	c := s.counters[target]
	s.mu.RUnlock()

	if !s.Enabled(level) {
		c.filtered.Add(1)
		return false, nil
	}

	if !ok {
		c.failed.Add(1)
		return false, fmt.Errorf("%w: %s", ErrNoRoute, target)
	}

	if err := snk.Write(ctx, domain.NewRecord(level, message)); err != nil {
		c.failed.Add(1)
		return false, fmt.Errorf("write %s record: %w", target, err)
	}

	c.written.Add(1)
	return true, nil
}

func (s *LogService) SetRunning(running bool) {
	s.running.Store(running)
}

func (s *LogService) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.running.Load() {
		return fmt.Errorf("service is not running")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.routes) == 0 {
		return fmt.Errorf("no sinks routed")
	}
	return nil
}

func (s *LogService) Name() string {
	return s.name
}

func (s *LogService) Status() domain.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make(map[domain.LogTarget]domain.TargetStats, len(s.counters))
	for t, c := range s.counters {
		_, routed := s.routes[t]
		targets[t] = domain.TargetStats{
			Written:  c.written.Load(),
			Filtered: c.filtered.Load(),
			Failed:   c.failed.Load(),
			Routed:   routed,
		}
	}

	return domain.StatusResponse{
		Service:  s.name,
		Running:  s.running.Load(),
		MinLevel: s.MinLevel(),
		Targets:  targets,
	}
}
