package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/lib/logger/sl"
	"ozzus/logroute/internal/repository"
	"ozzus/logroute/internal/repository/kafka"
	"ozzus/logroute/internal/sink"
)

var (
	tailLimit    int
	tailMinLevel string
)

func init() {
	tailCmd.Flags().IntVarP(&tailLimit, "limit", "n", 0, "stop after n records (0 means run until interrupted)")
	tailCmd.Flags().StringVar(&tailMinLevel, "min-level", "debug", "skip records below this level")
	rootCmd.AddCommand(tailCmd)
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print records published to the kafka topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		minLevel, err := domain.ParseLevel(tailMinLevel)
		if err != nil {
			return err
		}

		log := setupLogger(cfg.Env, os.Stderr)

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
		defer consumer.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		checkCtx, checkCancel := context.WithTimeout(ctx, 10*time.Second)
		err = consumer.CheckConnection(checkCtx)
		checkCancel()
		if err != nil {
			return err
		}

		out := &sink.Console{Out: cmd.OutOrStdout()}
		return tailRecords(ctx, repository.NewKafkaRecordSource(consumer, log), out, minLevel, tailLimit, log)
	},
}

// tailRecords prints entries from src until ctx ends or limit entries were printed.
// Entries up to the last one printed are acknowledged, including skipped ones.
// When limit stops the loop, the rest of the batch stays unacknowledged and
// is redelivered to the next consumer of the group.
func tailRecords(ctx context.Context, src repository.RecordSource, out sink.Sink, minLevel domain.LogLevel, limit int, log *slog.Logger) error {
	printed := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		entries, err := src.FetchRecords(ctx, 100)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch records: %w", err)
		}

		for _, e := range entries {
			if e.Level.AtLeast(minLevel) {
				if err := out.Write(ctx, e.Record()); err != nil {
					return err
				}
				printed++
			}
			if err := src.AckRecord(ctx, e.ID); err != nil {
				log.Warn("ack failed", "id", e.ID, sl.Err(err))
			}
			if limit > 0 && printed >= limit {
				return nil
			}
		}
	}
}
