package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/lib/logger/sl"
	repokafka "ozzus/logroute/internal/repository/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// RecordSource reads log entries back from the collector topic.
type RecordSource interface {
	FetchRecords(ctx context.Context, limit int) ([]domain.LogEntry, error)
	AckRecord(ctx context.Context, id string) error
}

type messageReader interface {
	ReadEvent(ctx context.Context, v interface{}) (kafkago.Message, error)
	CommitMessage(ctx context.Context, msg kafkago.Message) error
}

type KafkaRecordSource struct {
	consumer  messageReader
	pollAfter time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	messages map[string]kafkago.Message
}

func NewKafkaRecordSource(consumer messageReader, log *slog.Logger) *KafkaRecordSource {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaRecordSource{
		consumer:  consumer,
		pollAfter: 2 * time.Second,
		log:       log.With("component", "record_source"),
		messages:  make(map[string]kafkago.Message),
	}
}

// FetchRecords collects up to limit entries or whatever arrives within the
// poll window. Entries without an ID are skipped.
func (r *KafkaRecordSource) FetchRecords(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []domain.LogEntry

	timeoutCtx, cancel := context.WithTimeout(ctx, r.pollAfter)
	defer cancel()

	for len(entries) < limit {
		var entry domain.LogEntry
		msg, err := r.consumer.ReadEvent(timeoutCtx, &entry)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			if errors.Is(err, context.Canceled) {
				return entries, nil
			}
			if errors.Is(err, repokafka.ErrDecode) {
				// poison message: commit past it
				r.log.Warn("skipping undecodable record", "offset", msg.Offset, sl.Err(err))
				if cerr := r.consumer.CommitMessage(ctx, msg); cerr != nil {
					r.log.Error("failed to commit undecodable record", "offset", msg.Offset, sl.Err(cerr))
				}
				continue
			}
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		if entry.ID == "" {
			continue
		}

		r.mu.Lock()
		r.messages[entry.ID] = msg
		r.mu.Unlock()

		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *KafkaRecordSource) AckRecord(ctx context.Context, id string) error {
	r.mu.Lock()
	msg, ok := r.messages[id]
	r.mu.Unlock()

	if !ok {
		return nil
	}

	const maxRetries = 3

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return ctx.Err()
			}
			if remaining < timeout {
				timeout = remaining
			}
		}

		commitCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := r.consumer.CommitMessage(commitCtx, msg)
		cancel()

		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		delete(r.messages, id)
		r.mu.Unlock()

		return nil
	}

	return fmt.Errorf("failed to commit message: %w", lastErr)
}

// Pending returns how many fetched entries are still unacknowledged.
func (r *KafkaRecordSource) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
