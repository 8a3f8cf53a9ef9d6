package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"ozzus/logroute/internal/domain"
)

const (
	TransportNone  = ""
	TransportKafka = "kafka"
	TransportHTTP  = "http"
)

type Config struct {
	Env     string        `mapstructure:"env"`
	Service ServiceConfig `mapstructure:"service"`
	Log     LogConfig     `mapstructure:"log"`
	Network NetworkConfig `mapstructure:"network"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	MinLevel      string `mapstructure:"min_level"`
	FilePath      string `mapstructure:"file_path"`
	MirrorConsole bool   `mapstructure:"mirror_console"`
}

type NetworkConfig struct {
	Transport string `mapstructure:"transport"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type BackendConfig struct {
	URL               string `mapstructure:"url"`
	Name              string `mapstructure:"name"`
	Token             string `mapstructure:"token"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval"`
}

// Loader wraps a viper instance so tests and the watcher can share it.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("local")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	return &Loader{v: v}
}

// SetConfigFile points the loader at an explicit file instead of the search paths.
func (l *Loader) SetConfigFile(path string) {
	if path != "" {
		l.v.SetConfigFile(path)
	}
}

func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file the config was read from, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// WatchMinLevel calls fn with the new minimum level every time the config
// file changes. Invalid levels are reported through onErr and skipped.
func (l *Loader) WatchMinLevel(fn func(domain.LogLevel), onErr func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level, err := domain.ParseLevel(l.v.GetString("log.min_level"))
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(level)
	})
	l.v.WatchConfig()
}

// Load reads the config from ./config/local.yaml or ./local.yaml and the environment.
func Load() (*Config, error) {
	return NewLoader().Load()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("service.name", "logroute")

	v.SetDefault("log.min_level", "debug")
	v.SetDefault("log.file_path", "log.txt")
	v.SetDefault("log.mirror_console", false)

	v.SetDefault("network.transport", TransportNone)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "log-records")
	v.SetDefault("kafka.group_id", "logroute-tail")

	v.SetDefault("server.port", "8081")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.name", "logroute")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.heartbeat_interval", 30)
}

func (c *Config) Validate() error {
	if _, err := c.MinLevel(); err != nil {
		return fmt.Errorf("log.min_level: %w", err)
	}

	switch c.Network.Transport {
	case TransportNone:
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return errors.New("kafka transport requires kafka.brokers and kafka.topic")
		}
	case TransportHTTP:
		if c.Backend.URL == "" {
			return errors.New("http transport requires backend.url")
		}
	default:
		return fmt.Errorf("network.transport: unknown transport %q", c.Network.Transport)
	}

	return nil
}

func (c *Config) MinLevel() (domain.LogLevel, error) {
	return domain.ParseLevel(c.Log.MinLevel)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

func (c *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(c.Backend.HeartbeatInterval) * time.Second
}
