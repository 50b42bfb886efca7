package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileSuffix = ".json"

// FileEngine stores each key as its own file under a directory. Writes go
// to a temp file that is renamed over the target, so a reader sees either
// the old record or the new one.
type FileEngine struct {
	dir    string
	mu     sync.RWMutex
	closed bool
}

// NewFileEngine creates dir (0700) if needed and returns an engine rooted there.
func NewFileEngine(dir string) (*FileEngine, error) {
	if dir == "" {
		return nil, fmt.Errorf("file engine: dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file engine: create dir: %w", err)
	}
	return &FileEngine{dir: dir}, nil
}

// Dir returns the engine's root directory.
func (e *FileEngine) Dir() string {
	return e.dir
}

func (e *FileEngine) path(key []byte) string {
	return filepath.Join(e.dir, url.PathEscape(string(key))+fileSuffix)
}

// Get retrieves a value by key.
func (e *FileEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(e.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("file engine: read: %w", err)
	}
	return data, nil
}

// Set atomically replaces the value stored under key.
func (e *FileEngine) Set(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(e.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file engine: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(value); err != nil {
		cleanup()
		return fmt.Errorf("file engine: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("file engine: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file engine: close: %w", err)
	}
	if err := os.Rename(tmpName, e.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file engine: rename: %w", err)
	}
	return nil
}

// Delete removes a key. Removing a missing key is not an error.
func (e *FileEngine) Delete(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	if err := os.Remove(e.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file engine: remove: %w", err)
	}
	return nil
}

// Scan iterates over keys with a given prefix in directory order.
func (e *FileEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}

	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return fmt.Errorf("file engine: list: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".tmp-") || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil || !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := os.ReadFile(filepath.Join(e.dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("file engine: read: %w", err)
		}
		if !fn([]byte(key), value) {
			break
		}
	}
	return nil
}

// Close marks the engine closed. Files stay on disk.
func (e *FileEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}
