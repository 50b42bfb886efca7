package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/wastewise/wastewise-go/internal/client/realtime"
	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/storage"
)

// Default configuration values.
const (
	DefaultAPIURL         = "http://localhost:8000/api"
	DefaultWSURL          = "ws://localhost:8000/ws"
	DefaultRequestTimeout = 30 * time.Second
	DefaultOutput         = "table"

	DefaultStorageBackend = storage.EngineFile

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultHome returns ~/.wastewise, or .wastewise when the home directory
// is unknown.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wastewise"
	}
	return filepath.Join(home, ".wastewise")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultHome(), "config.yaml")
}

// Default returns the default client configuration.
func Default() *ClientConfig {
	return &ClientConfig{
		APIURL:         DefaultAPIURL,
		WSURL:          DefaultWSURL,
		RequestTimeout: DefaultRequestTimeout,
		Output:         DefaultOutput,
		Storage: StorageSection{
			Backend: DefaultStorageBackend,
			Dir:     filepath.Join(DefaultHome(), "session"),
		},
		Realtime: RealtimeSection{
			MaxReconnectAttempts: realtime.DefaultMaxReconnectAttempts,
			ReconnectDelay:       realtime.DefaultReconnectDelay,
			CommandRate:          realtime.DefaultCommandRate,
			CommandBurst:         realtime.DefaultCommandBurst,
			Channels:             domain.DefaultChannels(),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// defaultMap flattens Default() into dotted keys for the loader.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"api_url":                         d.APIURL,
		"ws_url":                          d.WSURL,
		"request_timeout":                 d.RequestTimeout,
		"output":                          d.Output,
		"storage.backend":                 d.Storage.Backend,
		"storage.dir":                     d.Storage.Dir,
		"realtime.max_reconnect_attempts": d.Realtime.MaxReconnectAttempts,
		"realtime.reconnect_delay":        d.Realtime.ReconnectDelay,
		"realtime.command_rate":           d.Realtime.CommandRate,
		"realtime.command_burst":          d.Realtime.CommandBurst,
		"realtime.channels":               d.Realtime.Channels,
		"log.level":                       d.Log.Level,
		"log.format":                      d.Log.Format,
	}
}
