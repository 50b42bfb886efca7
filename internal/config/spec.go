package config

import (
	"time"

	"github.com/wastewise/wastewise-go/internal/infra/tlsroots"
)

// ClientConfig is the root configuration for the wastewise client.
type ClientConfig struct {
	APIURL         string        `koanf:"api_url"`
	WSURL          string        `koanf:"ws_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// Output is the default CLI output format (table, json, yaml).
	Output string `koanf:"output"`

	TLS      tlsroots.Options `koanf:"tls"`
	Storage  StorageSection   `koanf:"storage"`
	Realtime RealtimeSection  `koanf:"realtime"`
	Log      LogSection       `koanf:"log"`
	Metrics  MetricsSection   `koanf:"metrics"`
}

// StorageSection configures where the session record is persisted.
type StorageSection struct {
	// Backend is one of file, badger, memory.
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
	// Passphrase seals the stored session when set.
	Passphrase string `koanf:"passphrase"`
}

// RealtimeSection configures the realtime channel.
type RealtimeSection struct {
	MaxReconnectAttempts int           `koanf:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `koanf:"reconnect_delay"`
	CommandRate          float64       `koanf:"command_rate"`
	CommandBurst         int           `koanf:"command_burst"`
	Channels             []string      `koanf:"channels"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint served by `watch`.
type MetricsSection struct {
	// Addr is empty when metrics are not served.
	Addr string `koanf:"addr"`
}
