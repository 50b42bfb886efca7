// Package storage provides the durable key-value stores behind the
// client's persisted session.
//
// Engines:
//
//   - File: one JSON document per key, replaced atomically (default)
//   - Badger: embedded LSM store with background value-log GC
//   - Memory: process-local map, used by tests and ephemeral sessions
//
// Any engine can be wrapped in a SealedEngine, which encrypts values with
// a key derived from a passphrase (Argon2id). The cipher is AES-256-GCM on
// platforms with hardware AES and ChaCha20-Poly1305 elsewhere.
package storage
