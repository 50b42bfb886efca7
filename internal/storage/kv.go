package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
	ErrEmptyKey    = errors.New("key is empty")
)

// Engine names accepted by KVConfig.Engine.
const (
	EngineFile   = "file"
	EngineBadger = "badger"
	EngineMemory = "memory"
)

// KVEngine is the durable key-value store the session layer persists into.
//
// Implementations must be safe for concurrent use. Get returns
// ErrKeyNotFound for a missing key; Delete of a missing key is not an error.
type KVEngine interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	Close() error
}

// Scanner is implemented by engines that can enumerate keys by prefix.
type Scanner interface {
	// Scan calls fn for every key with the given prefix. fn returns false
	// to stop the iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalKeys is the approximate number of keys.
	TotalKeys uint64

	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size (Badger only).
	LSMSize uint64

	// ValueLogSize is the value log size (Badger only).
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCBytesReclaimed is the total bytes reclaimed by GC.
	GCBytesReclaimed uint64
}

// KVConfig configures a KV engine.
type KVConfig struct {
	// Engine is one of "file", "badger", "memory".
	// Default: "file"
	Engine string

	// Dir is the storage directory. Ignored by the memory engine.
	Dir string

	// Passphrase enables sealing of stored values when non-empty.
	Passphrase []byte

	// Badger-specific configuration
	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 8MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 1
	NumMemtables int

	// SyncWrites fsyncs after each write. A logout that is lost on crash
	// would resurrect the session, so this defaults to true.
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineFile,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns Badger tuning sized for a handful of small records.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        8 << 20,
		ValueLogFileSize: 16 << 20,
		NumMemtables:     1,
		SyncWrites:       true,
	}
}

// Open builds the engine named by cfg.Engine, wrapping it in a sealing
// layer when a passphrase is configured.
func Open(ctx context.Context, cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		engine KVEngine
		err    error
	)
	switch cfg.Engine {
	case "", EngineFile:
		engine, err = NewFileEngine(cfg.Dir)
	case EngineBadger:
		engine, err = NewBadgerEngine(cfg, logger)
	case EngineMemory:
		engine = NewMemoryEngine()
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}

	if len(cfg.Passphrase) == 0 {
		return engine, nil
	}

	sealed, err := NewSealedEngine(ctx, engine, cfg.Passphrase)
	if err != nil {
		engine.Close()
		return nil, err
	}
	logger.Debug("storage sealing enabled", "engine", cfg.Engine, "cipher", sealed.CipherName())
	return sealed, nil
}
