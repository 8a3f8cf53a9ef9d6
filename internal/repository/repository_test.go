package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ozzus/logroute/internal/domain"
	repokafka "ozzus/logroute/internal/repository/kafka"
)

type publishCall struct {
	key   string
	event interface{}
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) PublishEvent(_ context.Context, key string, event interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, publishCall{key: key, event: event})
	return nil
}

func (f *fakePublisher) Topic() string { return "log-records" }

func TestKafkaRecordRepository_KeysBySource(t *testing.T) {
	pub := &fakePublisher{}
	repo := NewKafkaRecordRepository(pub, nil)
	entry := domain.LogEntry{ID: "a", Source: "billing", Level: domain.LogLevelInfo, Message: "m"}

	require.NoError(t, repo.SendLog(context.Background(), entry))
	require.Len(t, pub.calls, 1)
	assert.Equal(t, "billing", pub.calls[0].key)
	assert.Equal(t, entry, pub.calls[0].event)
}

func TestKafkaRecordRepository_WrapsError(t *testing.T) {
	cause := errors.New("leader not available")
	repo := NewKafkaRecordRepository(&fakePublisher{err: cause}, nil)

	err := repo.SendLog(context.Background(), domain.LogEntry{ID: "a"})
	assert.ErrorIs(t, err, cause)
}

type fakeSender struct {
	bodies []string
	err    error
}

func (f *fakeSender) SendLog(_ context.Context, body io.Reader) error {
	b, _ := io.ReadAll(body)
	f.bodies = append(f.bodies, string(b))
	return f.err
}

func TestHTTPRecordRepository_PostsJSON(t *testing.T) {
	sender := &fakeSender{}
	repo := NewHTTPRecordRepository(sender)

	entry := domain.LogEntry{ID: "x", Level: domain.LogLevelError, Message: "boom", Timestamp: time.Unix(0, 0).UTC()}
	require.NoError(t, repo.SendLog(context.Background(), entry))
	require.Len(t, sender.bodies, 1)

	var decoded domain.LogEntry
	require.NoError(t, json.Unmarshal([]byte(sender.bodies[0]), &decoded))
	assert.Equal(t, entry, decoded)

	sender.err = errors.New("503")
	assert.Error(t, repo.SendLog(context.Background(), entry))
}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	commitErr []error
}

func (f *fakeReader) ReadEvent(ctx context.Context, v interface{}) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	if err := json.Unmarshal(msg.Value, v); err != nil {
		return msg, fmt.Errorf("%w: %v", repokafka.ErrDecode, err)
	}
	return msg, nil
}

func (f *fakeReader) CommitMessage(_ context.Context, msg kafkago.Message) error {
	if len(f.commitErr) > 0 {
		err := f.commitErr[0]
		f.commitErr = f.commitErr[1:]
		if err != nil {
			return err
		}
	}
	f.committed = append(f.committed, msg.Offset)
	return nil
}

func entryMessage(t *testing.T, offset int64, e domain.LogEntry) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: b}
}

func TestKafkaRecordSource_FetchAndAck(t *testing.T) {
	reader := &fakeReader{msgs: []kafkago.Message{
		entryMessage(t, 1, domain.LogEntry{ID: "a", Level: domain.LogLevelInfo, Message: "one"}),
		{Offset: 2, Value: []byte("not json")},
		entryMessage(t, 3, domain.LogEntry{Level: domain.LogLevelInfo, Message: "no id"}),
		entryMessage(t, 4, domain.LogEntry{ID: "b", Level: domain.LogLevelWarn, Message: "two"}),
	}}
	src := NewKafkaRecordSource(reader, quietLog())
	src.pollAfter = 50 * time.Millisecond

	entries, err := src.FetchRecords(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Message)
	assert.Equal(t, "two", entries[1].Message)

	// the poison message is committed straight away
	assert.Equal(t, []int64{2}, reader.committed)
	assert.Equal(t, 2, src.Pending())

	require.NoError(t, src.AckRecord(context.Background(), "b"))
	require.NoError(t, src.AckRecord(context.Background(), "unknown"))
	assert.Equal(t, []int64{2, 4}, reader.committed)
	assert.Equal(t, 1, src.Pending())
}

func TestKafkaRecordSource_LimitStopsEarly(t *testing.T) {
	reader := &fakeReader{msgs: []kafkago.Message{
		entryMessage(t, 1, domain.LogEntry{ID: "a"}),
		entryMessage(t, 2, domain.LogEntry{ID: "b"}),
	}}
	src := NewKafkaRecordSource(reader, quietLog())

	entries, err := src.FetchRecords(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestKafkaRecordSource_AckRetries(t *testing.T) {
	reader := &fakeReader{
		msgs:      []kafkago.Message{entryMessage(t, 7, domain.LogEntry{ID: "a"})},
		commitErr: []error{errors.New("rebalance"), nil},
	}
	src := NewKafkaRecordSource(reader, quietLog())
	src.pollAfter = 20 * time.Millisecond

	_, err := src.FetchRecords(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, src.AckRecord(context.Background(), "a"))
	assert.Equal(t, []int64{7}, reader.committed)
	assert.Zero(t, src.Pending())
}

func TestKafkaRecordSource_AckGivesUp(t *testing.T) {
	fail := errors.New("coordinator gone")
	reader := &fakeReader{
		msgs:      []kafkago.Message{entryMessage(t, 1, domain.LogEntry{ID: "a"})},
		commitErr: []error{fail, fail, fail},
	}
	src := NewKafkaRecordSource(reader, quietLog())

	_, err := src.FetchRecords(context.Background(), 1)
	require.NoError(t, err)

	err = src.AckRecord(context.Background(), "a")
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 1, src.Pending())
}

func TestKafkaRecordSource_PoisonCommitFailureIsLogged(t *testing.T) {
	reader := &fakeReader{
		msgs:      []kafkago.Message{{Offset: 9, Value: []byte("{")}},
		commitErr: []error{errors.New("commit refused")},
	}
	var logs bytes.Buffer
	src := NewKafkaRecordSource(reader, slog.New(slog.NewTextHandler(&logs, nil)))
	src.pollAfter = 20 * time.Millisecond

	entries, err := src.FetchRecords(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, reader.committed)
	assert.Contains(t, logs.String(), "failed to commit undecodable record")
	assert.Contains(t, logs.String(), "commit refused")
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
