package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// openEngines returns one fresh engine of every kind.
func openEngines(t *testing.T) map[string]KVEngine {
	t.Helper()

	file, err := NewFileEngine(filepath.Join(t.TempDir(), "file"))
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultKVConfig(filepath.Join(t.TempDir(), "badger"))
	cfg.Badger.GCInterval = "1h" // keep auto GC out of the tests
	badgerEngine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	engines := map[string]KVEngine{
		EngineFile:   file,
		EngineBadger: badgerEngine,
		EngineMemory: NewMemoryEngine(),
	}
	t.Cleanup(func() {
		for _, e := range engines {
			e.Close()
		}
	})
	return engines
}

func TestEngines_BasicOperations(t *testing.T) {
	ctx := context.Background()

	for name, engine := range openEngines(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("auth-storage")

			if _, err := engine.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrKeyNotFound", err)
			}

			if err := engine.Set(ctx, key, []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := engine.Set(ctx, key, []byte(`{"v":2}`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}

			got, err := engine.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Errorf("Get = %s, want {\"v\":2}", got)
			}

			if err := engine.Delete(ctx, key); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := engine.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("Get after delete error = %v", err)
			}
			if err := engine.Delete(ctx, key); err != nil {
				t.Errorf("Delete of missing key should succeed, got %v", err)
			}
		})
	}
}

func TestEngines_EmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, engine := range openEngines(t) {
		t.Run(name, func(t *testing.T) {
			if err := engine.Set(ctx, nil, []byte("x")); !errors.Is(err, ErrEmptyKey) {
				t.Errorf("Set(nil) error = %v, want ErrEmptyKey", err)
			}
			if _, err := engine.Get(ctx, []byte{}); !errors.Is(err, ErrEmptyKey) {
				t.Errorf("Get(empty) error = %v, want ErrEmptyKey", err)
			}
		})
	}
}

func TestEngines_Scan(t *testing.T) {
	ctx := context.Background()
	for name, engine := range openEngines(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"cache/bins", "cache/alerts", "auth-storage"} {
				if err := engine.Set(ctx, []byte(k), []byte(k)); err != nil {
					t.Fatal(err)
				}
			}

			scanner, ok := engine.(Scanner)
			if !ok {
				t.Fatalf("%s engine does not implement Scanner", name)
			}

			var keys []string
			err := scanner.Scan(ctx, []byte("cache/"), func(key, value []byte) bool {
				if string(key) != string(value) {
					t.Errorf("value for %s = %s", key, value)
				}
				keys = append(keys, string(key))
				return true
			})
			if err != nil {
				t.Fatal(err)
			}
			sort.Strings(keys)
			if strings.Join(keys, ",") != "cache/alerts,cache/bins" {
				t.Errorf("scanned keys = %v", keys)
			}
		})
	}
}

func TestEngines_Closed(t *testing.T) {
	ctx := context.Background()
	for name, engine := range openEngines(t) {
		t.Run(name, func(t *testing.T) {
			if err := engine.Close(); err != nil {
				t.Fatal(err)
			}
			if err := engine.Set(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
				t.Errorf("Set after Close error = %v, want ErrClosed", err)
			}
		})
	}
}

func TestFileEngine_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	e1, err := NewFileEngine(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := e1.Set(ctx, []byte("auth-storage"), []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	e1.Close()

	e2, err := NewFileEngine(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer e2.Close()

	got, err := e2.Get(ctx, []byte("auth-storage"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get = %q", got)
	}
}

func TestFileEngine_KeyEscaping(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := NewFileEngine(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	key := []byte("../escape/attempt")
	if err := e.Set(ctx, key, []byte("v")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in %s, got %d", dir, len(entries))
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape")); err == nil {
		t.Error("key escaped the storage directory")
	}

	got, err := e.Get(ctx, key)
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestFileEngine_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := NewFileEngine(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	for i := 0; i < 5; i++ {
		if err := e.Set(ctx, []byte("auth-storage"), []byte("v")); err != nil {
			t.Fatal(err)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestMemoryEngine_CopiesValues(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()

	v := []byte("abc")
	e.Set(ctx, []byte("k"), v)
	v[0] = 'X'

	got, _ := e.Get(ctx, []byte("k"))
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
	got[1] = 'Y'
	again, _ := e.Get(ctx, []byte("k"))
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored buffer: %q", again)
	}
}

func TestBadgerEngine_GCAndStats(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = "1h"

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	for i := 0; i < 10; i++ {
		if err := engine.Set(ctx, []byte("auth-storage"), []byte(strings.Repeat("x", 1024))); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := engine.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LastGCTime == 0 {
		t.Error("LastGCTime not recorded")
	}

	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     KVConfig
		want    string
		wantErr bool
	}{
		{"default is file", KVConfig{Dir: t.TempDir()}, "*storage.FileEngine", false},
		{"memory", KVConfig{Engine: EngineMemory}, "*storage.MemoryEngine", false},
		{"badger", KVConfig{Engine: EngineBadger, Dir: t.TempDir(), Badger: BadgerConfig{GCInterval: "1h"}}, "*storage.BadgerEngine", false},
		{"sealed", KVConfig{Engine: EngineMemory, Passphrase: []byte("correct horse")}, "*storage.SealedEngine", false},
		{"unknown", KVConfig{Engine: "pebble"}, "", true},
		{"file without dir", KVConfig{Engine: EngineFile}, "", true},
		{"weak passphrase", KVConfig{Engine: EngineMemory, Passphrase: []byte("short")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := Open(ctx, tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer engine.Close()

			if got := typeName(engine); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *FileEngine:
		return "*storage.FileEngine"
	case *MemoryEngine:
		return "*storage.MemoryEngine"
	case *BadgerEngine:
		return "*storage.BadgerEngine"
	case *SealedEngine:
		return "*storage.SealedEngine"
	default:
		return "unknown"
	}
}
