package checks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"github.com/segmentio/kafka-go"
)

// FileChecker passes when the log file can be opened for appending.
// It creates the file when missing, as the file sink would.
type FileChecker struct {
	Path string
}

func (f *FileChecker) Name() string { return "file:" + filepath.Base(f.Path) }

func (f *FileChecker) Check(context.Context) error {
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

// TCPChecker passes when a TCP connection to Addr can be established.
type TCPChecker struct {
	Label string
	Addr  string
}

// NewURLChecker builds a TCPChecker for the host of rawURL, using the
// scheme's default port when none is given.
func NewURLChecker(label, rawURL string) (*TCPChecker, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return &TCPChecker{Label: label, Addr: net.JoinHostPort(u.Hostname(), port)}, nil
}

func (t *TCPChecker) Name() string { return t.Label }

func (t *TCPChecker) Check(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.Addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// KafkaChecker passes when any broker answers and the topic has partitions.
type KafkaChecker struct {
	Brokers []string
	Topic   string
}

func (k *KafkaChecker) Name() string { return "kafka:" + k.Topic }

func (k *KafkaChecker) Check(ctx context.Context) error {
	if len(k.Brokers) == 0 {
		return errors.New("no brokers configured")
	}

	var errs []error
	for _, broker := range k.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if dl, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(dl)
		}
		partitions, err := conn.ReadPartitions(k.Topic)
		conn.Close()
		if err != nil {
			return fmt.Errorf("read partitions: %w", err)
		}
		if len(partitions) == 0 {
			return fmt.Errorf("topic %s has no partitions", k.Topic)
		}
		return nil
	}
	return errors.Join(errs...)
}
