package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"ozzus/logroute/internal/domain"
)

// RecordRepository ships log entries to a remote collector.
type RecordRepository interface {
	SendLog(ctx context.Context, entry domain.LogEntry) error
}

type eventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Topic() string
}

type KafkaRecordRepository struct {
	producer eventPublisher
	log      *slog.Logger
}

func NewKafkaRecordRepository(producer eventPublisher, log *slog.Logger) *KafkaRecordRepository {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaRecordRepository{
		producer: producer,
		log:      log.With("component", "record_repository"),
	}
}

// SendLog publishes entry keyed by its source so one source keeps its order.
func (r *KafkaRecordRepository) SendLog(ctx context.Context, entry domain.LogEntry) error {
	if err := r.producer.PublishEvent(ctx, entry.Source, entry); err != nil {
		return fmt.Errorf("failed to publish log: %w", err)
	}
	r.log.Debug("sent log", "id", entry.ID, "topic", r.producer.Topic())
	return nil
}

type logSender interface {
	SendLog(ctx context.Context, body io.Reader) error
}

// HTTPRecordRepository posts entries to the backend collector API.
type HTTPRecordRepository struct {
	client logSender
}

func NewHTTPRecordRepository(client logSender) *HTTPRecordRepository {
	return &HTTPRecordRepository{client: client}
}

func (r *HTTPRecordRepository) SendLog(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}
	if err := r.client.SendLog(ctx, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to send log: %w", err)
	}
	return nil
}
