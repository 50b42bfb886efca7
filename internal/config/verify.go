package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wastewise/wastewise-go/internal/storage"
)

// Verify validates the configuration.
func Verify(cfg *ClientConfig) error {
	if err := verifyURL("api_url", cfg.APIURL, "http", "https"); err != nil {
		return err
	}
	if err := verifyURL("ws_url", cfg.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output must be table, json or yaml, got %q", cfg.Output)
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyRealtime(&cfg.Realtime)
}

func verifyURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be a %s URL, got %q", key, strings.Join(schemes, "/"), raw)
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case storage.EngineFile, storage.EngineBadger:
		if cfg.Dir == "" {
			return errors.New("storage.dir is required")
		}
	case storage.EngineMemory:
	default:
		return fmt.Errorf("storage.backend must be file, badger or memory, got %q", cfg.Backend)
	}
	if cfg.Passphrase != "" && len(cfg.Passphrase) < storage.MinPassphraseLength {
		return storage.ErrPassphraseTooWeak
	}
	return nil
}

func verifyRealtime(cfg *RealtimeSection) error {
	if cfg.MaxReconnectAttempts < 0 {
		return errors.New("realtime.max_reconnect_attempts must not be negative")
	}
	if cfg.ReconnectDelay <= 0 {
		return errors.New("realtime.reconnect_delay must be positive")
	}
	if cfg.CommandRate < 0 || cfg.CommandBurst < 0 {
		return errors.New("realtime.command_rate and command_burst must not be negative")
	}
	return nil
}

// KVConfig maps the storage section onto the storage package.
func (c *ClientConfig) KVConfig() storage.KVConfig {
	kv := storage.DefaultKVConfig(c.Storage.Dir)
	kv.Engine = c.Storage.Backend
	if c.Storage.Passphrase != "" {
		kv.Passphrase = []byte(c.Storage.Passphrase)
	}
	return kv
}
