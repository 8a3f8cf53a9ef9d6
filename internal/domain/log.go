package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownTarget = errors.New("unknown log target")
)

// LogLevel is the severity attached to a record.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var logLevelNames = map[LogLevel]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
}

// String returns the uppercase tag used in rendered records.
func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

func (l LogLevel) Valid() bool {
	_, ok := logLevelNames[l]
	return ok
}

// AtLeast reports whether l is as severe as min or more.
func (l LogLevel) AtLeast(min LogLevel) bool {
	return l >= min
}

func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LogTarget selects the sink a record goes to.
type LogTarget string

const (
	LogTargetConsole    LogTarget = "console"
	LogTargetFileSystem LogTarget = "filesystem"
	LogTargetNetwork    LogTarget = "network"
)

// Targets lists every known target in a stable order.
var Targets = []LogTarget{LogTargetConsole, LogTargetFileSystem, LogTargetNetwork}

func (t LogTarget) Valid() bool {
	switch t {
	case LogTargetConsole, LogTargetFileSystem, LogTargetNetwork:
		return true
	}
	return false
}

func ParseTarget(s string) (LogTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "stdout":
		return LogTargetConsole, nil
	case "file", "filesystem", "fs":
		return LogTargetFileSystem, nil
	case "network", "net":
		return LogTargetNetwork, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Record is a single formatted log line before it reaches a sink.
type Record struct {
	Level   LogLevel
	Message string
	Time    time.Time
}

func NewRecord(level LogLevel, message string) Record {
	return Record{Level: level, Message: message, Time: time.Now()}
}

// String renders the record as "[LEVEL] message".
func (r Record) String() string {
	return "[" + r.Level.String() + "] " + r.Message
}

// LogEntry is the payload shipped to network collectors.
type LogEntry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Line      string    `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

func (e LogEntry) Record() Record {
	return Record{Level: e.Level, Message: e.Message, Time: e.Timestamp}
}
