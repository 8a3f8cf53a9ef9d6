package sink

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/repository"
)

// Network ships records to a remote collector through Repo.
type Network struct {
	Repo   repository.RecordRepository
	Source string
}

func NewNetwork(repo repository.RecordRepository, source string) *Network {
	return &Network{Repo: repo, Source: source}
}

func (n *Network) Write(ctx context.Context, rec domain.Record) error {
	if n.Repo == nil {
		panic(ErrNotImplemented)
	}

	entry := domain.LogEntry{
		ID:        uuid.NewString(),
		Source:    n.Source,
		Level:     rec.Level,
		Message:   rec.Message,
		Line:      rec.String(),
		Timestamp: rec.Time,
	}

	if err := n.Repo.SendLog(ctx, entry); err != nil {
		return fmt.Errorf("network sink: %w", err)
	}
	return nil
}
