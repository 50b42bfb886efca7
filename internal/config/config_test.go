package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/wastewise/wastewise-go/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.APIURL != "http://localhost:8000/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WSURL != "ws://localhost:8000/ws" {
		t.Errorf("WSURL = %q", cfg.WSURL)
	}
	if cfg.Realtime.MaxReconnectAttempts != 5 || cfg.Realtime.ReconnectDelay != time.Second {
		t.Errorf("Realtime = %+v", cfg.Realtime)
	}
	want := []string{"sensor_updates", "alerts", "route_updates"}
	if !reflect.DeepEqual(cfg.Realtime.Channels, want) {
		t.Errorf("Channels = %v, want %v", cfg.Realtime.Channels, want)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Default() does not verify: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".wastewise", "config.yaml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestLoad_Priority(t *testing.T) {
	path := writeConfig(t, `
api_url: https://file.wastewise.tn/api
ws_url: wss://file.wastewise.tn/ws
output: json
realtime:
  reconnect_delay: 2s
  channels: [alerts]
log:
  level: info
`)
	t.Setenv("WASTEWISE_API_URL", "https://env.wastewise.tn/api")
	t.Setenv("WASTEWISE_LOG__LEVEL", "debug")

	cfg, used, err := Load(LoadOptions{
		Path:      path,
		Overrides: map[string]any{"output": "yaml", "ws_url": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if used != path {
		t.Errorf("used path = %q", used)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", cfg.APIURL, "https://env.wastewise.tn/api"},
		{"file beats default", cfg.WSURL, "wss://file.wastewise.tn/ws"},
		{"override beats file", cfg.Output, "yaml"},
		{"nested env", cfg.Log.Level, "debug"},
		{"duration from file", cfg.Realtime.ReconnectDelay, 2 * time.Second},
		{"list from file", cfg.Realtime.Channels, []string{"alerts"}},
		{"default kept", cfg.Realtime.MaxReconnectAttempts, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "api_url: ftp://wastewise.tn\n")
	if _, _, err := Load(LoadOptions{Path: path}); err == nil || !strings.Contains(err.Error(), "api_url") {
		t.Errorf("Load() error = %v, want api_url error", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClientConfig)
		want   string
	}{
		{"empty api url", func(c *ClientConfig) { c.APIURL = "" }, "api_url is required"},
		{"ws url with http scheme", func(c *ClientConfig) { c.WSURL = "http://localhost/ws" }, "ws_url"},
		{"zero timeout", func(c *ClientConfig) { c.RequestTimeout = 0 }, "request_timeout"},
		{"bad output", func(c *ClientConfig) { c.Output = "xml" }, "output"},
		{"unknown backend", func(c *ClientConfig) { c.Storage.Backend = "pebble" }, "storage.backend"},
		{"file without dir", func(c *ClientConfig) { c.Storage.Dir = "" }, "storage.dir"},
		{"negative attempts", func(c *ClientConfig) { c.Realtime.MaxReconnectAttempts = -1 }, "max_reconnect_attempts"},
		{"zero delay", func(c *ClientConfig) { c.Realtime.ReconnectDelay = 0 }, "reconnect_delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify() error = %v, want containing %q", err, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.Storage.Passphrase = "short"
	if err := Verify(cfg); !errors.Is(err, storage.ErrPassphraseTooWeak) {
		t.Errorf("weak passphrase error = %v", err)
	}

	cfg = Default()
	cfg.Storage = StorageSection{Backend: storage.EngineMemory}
	if err := Verify(cfg); err != nil {
		t.Errorf("memory backend without dir: %v", err)
	}
}

func TestKVConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage = StorageSection{Backend: storage.EngineBadger, Dir: "/tmp/ww", Passphrase: "correct horse"}

	kv := cfg.KVConfig()
	if kv.Engine != storage.EngineBadger || kv.Dir != "/tmp/ww" || string(kv.Passphrase) != "correct horse" {
		t.Errorf("KVConfig() = %+v", kv)
	}
	if !kv.Badger.SyncWrites {
		t.Error("badger defaults not applied")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.APIURL = "https://api.wastewise.tn/api"
	cfg.Realtime.ReconnectDelay = 3 * time.Second
	cfg.Metrics.Addr = ":9090"
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v", info.Mode().Perm())
	}

	loaded, _, err := Load(LoadOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.APIURL != cfg.APIURL || loaded.Realtime.ReconnectDelay != cfg.Realtime.ReconnectDelay || loaded.Metrics.Addr != ":9090" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Storage.Passphrase = "correct horse battery"

	s := Sanitize(cfg)
	if s.Storage.Passphrase != "co*****************ry" {
		t.Errorf("masked passphrase = %q", s.Storage.Passphrase)
	}
	if cfg.Storage.Passphrase != "correct horse battery" {
		t.Error("Sanitize modified the original")
	}
	s.Realtime.Channels[0] = "changed"
	if cfg.Realtime.Channels[0] == "changed" {
		t.Error("Sanitize shares the channel slice")
	}

	if got := maskSecret("abc"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
}

func TestFlat(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Addr = ":9090"

	flat := Flat(cfg)
	if flat["api_url"] != DefaultAPIURL {
		t.Errorf("api_url = %v", flat["api_url"])
	}
	if flat["log.level"] != cfg.Log.Level {
		t.Errorf("log.level = %v", flat["log.level"])
	}
	if flat["metrics.addr"] != ":9090" {
		t.Errorf("metrics.addr = %v", flat["metrics.addr"])
	}
	if _, ok := flat["storage.passphrase"]; ok {
		t.Error("empty passphrase should not be listed")
	}
	if _, ok := flat["tls.ca_file"]; ok {
		t.Error("zero tls options should not be listed")
	}
}

func TestLoad_OptionalMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if _, _, err := Load(LoadOptions{Path: path}); err == nil {
		t.Fatal("missing explicit file should fail")
	}
	cfg, used, err := Load(LoadOptions{Path: path, Optional: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if used != "" {
		t.Errorf("path = %q, want empty", used)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}
