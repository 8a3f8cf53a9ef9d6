package cli

import (
	"fmt"
	"log/slog"

	"ozzus/logroute/internal/backend"
	"ozzus/logroute/internal/checks"
	"ozzus/logroute/internal/config"
	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/repository"
	"ozzus/logroute/internal/repository/kafka"
	"ozzus/logroute/internal/sink"
)

// routeSet is the sink table built from config plus what must be closed on shutdown.
type routeSet struct {
	routes   map[domain.LogTarget]sink.Sink
	checkers []checks.Checker
	backend  *backend.Client
	closers  []func() error
}

func (r *routeSet) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildRoutes(cfg *config.Config, log *slog.Logger) (*routeSet, error) {
	rs := &routeSet{
		routes: map[domain.LogTarget]sink.Sink{
			domain.LogTargetConsole:    sink.NewConsole(),
			domain.LogTargetFileSystem: sink.NewFile(cfg.Log.FilePath),
		},
		checkers: []checks.Checker{&checks.FileChecker{Path: cfg.Log.FilePath}},
	}

	switch cfg.Network.Transport {
	case config.TransportKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		rs.closers = append(rs.closers, producer.Close)
		repo := repository.NewKafkaRecordRepository(producer, log)
		rs.routes[domain.LogTargetNetwork] = sink.NewNetwork(repo, cfg.Service.Name)
		rs.checkers = append(rs.checkers, &checks.KafkaChecker{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		log.Info("network target routed to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)

	case config.TransportHTTP:
		client, err := backend.NewClient(cfg.Backend.URL, cfg.Backend.Name, cfg.Backend.Token)
		if err != nil {
			return nil, fmt.Errorf("init backend client: %w", err)
		}
		rs.backend = client
		probe, err := checks.NewURLChecker("collector", client.BaseURL())
		if err != nil {
			return nil, err
		}
		rs.checkers = append(rs.checkers, probe)
		rs.routes[domain.LogTargetNetwork] = sink.NewNetwork(repository.NewHTTPRecordRepository(client), cfg.Service.Name)
		log.Info("network target routed to http collector", "url", client.BaseURL())

	default:
		log.Warn("network target has no transport configured")
	}

	if cfg.Log.MirrorConsole {
		console := rs.routes[domain.LogTargetConsole]
		for _, t := range []domain.LogTarget{domain.LogTargetFileSystem, domain.LogTargetNetwork} {
			if s, ok := rs.routes[t]; ok {
				rs.routes[t] = sink.NewMulti(s, console)
			}
		}
	}

	return rs, nil
}
