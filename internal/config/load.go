package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/maps"
	"gopkg.in/yaml.v3"

	"github.com/wastewise/wastewise-go/internal/infra/confloader"
)

// LoadOptions selects the sources merged by Load.
type LoadOptions struct {
	// Path is the config file. Empty means DefaultConfigPath, which may be
	// missing. An explicitly named file must exist unless Optional is set.
	Path     string
	Optional bool
	// Overrides are dotted keys from command-line flags. Empty strings
	// are ignored so unset flags do not mask lower layers.
	Overrides map[string]any
}

// Load merges defaults, the config file, WASTEWISE_* variables and
// overrides, then validates the result.
func Load(opts LoadOptions) (*ClientConfig, string, error) {
	path := opts.Path
	optional := opts.Optional
	if path == "" {
		path, optional = DefaultConfigPath(), true
	}
	if optional {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(defaultMap()),
		confloader.WithConfigFile(path),
		confloader.WithOverrides(cleanOverrides(opts.Overrides)),
	)

	cfg := &ClientConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, path, err
	}
	if err := Verify(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func cleanOverrides(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Save writes cfg as YAML with 0600 permissions, creating the directory.
func Save(cfg *ClientConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(ToMap(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ToMap returns cfg in the koanf layout, so a saved map loads back unchanged.
func ToMap(cfg *ClientConfig) map[string]any {
	out := map[string]any{
		"api_url":         cfg.APIURL,
		"ws_url":          cfg.WSURL,
		"request_timeout": cfg.RequestTimeout.String(),
		"output":          cfg.Output,
		"storage": map[string]any{
			"backend": cfg.Storage.Backend,
			"dir":     cfg.Storage.Dir,
		},
		"realtime": map[string]any{
			"max_reconnect_attempts": cfg.Realtime.MaxReconnectAttempts,
			"reconnect_delay":        cfg.Realtime.ReconnectDelay.String(),
			"command_rate":           cfg.Realtime.CommandRate,
			"command_burst":          cfg.Realtime.CommandBurst,
			"channels":               cfg.Realtime.Channels,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}
	if cfg.Storage.Passphrase != "" {
		out["storage"].(map[string]any)["passphrase"] = cfg.Storage.Passphrase
	}
	if cfg.Metrics.Addr != "" {
		out["metrics"] = map[string]any{"addr": cfg.Metrics.Addr}
	}
	if !cfg.TLS.IsZero() {
		out["tls"] = map[string]any{
			"ca_file":     cfg.TLS.CAFile,
			"cert_file":   cfg.TLS.CertFile,
			"key_file":    cfg.TLS.KeyFile,
			"server_name": cfg.TLS.ServerName,
		}
	}
	return out
}

// Flat returns ToMap(cfg) keyed by dotted path.
func Flat(cfg *ClientConfig) map[string]any {
	flat, _ := maps.Flatten(ToMap(cfg), nil, ".")
	return flat
}
