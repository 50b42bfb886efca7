package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Argon2id parameters for passphrase-derived keys.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32

	// SaltLength is the length of the random salt persisted next to the data.
	SaltLength = 16

	// MinPassphraseLength is the shortest passphrase NewSealedEngine accepts.
	MinPassphraseLength = 8
)

// SaltKey is the reserved key holding the Argon2id salt. It is stored unsealed.
var SaltKey = []byte("_seal/salt")

var sealMagic = []byte("WWS1")

// Seal errors
var (
	ErrPassphraseTooWeak = errors.New("storage: passphrase must be at least 8 bytes")
	ErrDecryptionFailed  = errors.New("storage: decryption failed (wrong passphrase or corrupted record)")
	ErrNotSealed         = errors.New("storage: record is not sealed")
	ErrReservedKey       = errors.New("storage: key is reserved")
)

// CipherType identifies the AEAD protecting a sealed record.
type CipherType byte

const (
	CipherAESGCM   CipherType = 1
	CipherChaCha20 CipherType = 2
)

func (t CipherType) String() string {
	switch t {
	case CipherAESGCM:
		return "aes-256-gcm"
	case CipherChaCha20:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("cipher(%d)", byte(t))
	}
}

// preferredCipher picks AES-GCM where Go's crypto/aes is hardware accelerated.
func preferredCipher() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// SealedEngine encrypts every value written through it. Each record carries
// the cipher that sealed it, so data written on one architecture opens on
// another. The record key is bound as additional data, so a sealed value
// copied under a different key fails to open.
type SealedEngine struct {
	inner   KVEngine
	write   CipherType
	ciphers map[CipherType]cipher.AEAD
}

// NewSealedEngine wraps inner. The salt is read from SaltKey, or generated
// and written there on first use.
func NewSealedEngine(ctx context.Context, inner KVEngine, passphrase []byte) (*SealedEngine, error) {
	return newSealedEngine(ctx, inner, passphrase, preferredCipher())
}

func newSealedEngine(ctx context.Context, inner KVEngine, passphrase []byte, write CipherType) (*SealedEngine, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}

	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	master := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer zero(master)

	key, err := deriveSubkey(master, "wastewise/storage/seal", 32)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("storage: aes: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: gcm: %w", err)
	}
	chacha, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("storage: chacha20: %w", err)
	}

	return &SealedEngine{
		inner: inner,
		write: write,
		ciphers: map[CipherType]cipher.AEAD{
			CipherAESGCM:   gcm,
			CipherChaCha20: chacha,
		},
	}, nil
}

func loadOrCreateSalt(ctx context.Context, inner KVEngine) ([]byte, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if err == nil {
		if len(salt) != SaltLength {
			return nil, fmt.Errorf("storage: stored salt has length %d", len(salt))
		}
		return salt, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("storage: read salt: %w", err)
	}

	salt = make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("storage: generate salt: %w", err)
	}
	if err := inner.Set(ctx, SaltKey, salt); err != nil {
		return nil, fmt.Errorf("storage: write salt: %w", err)
	}
	return salt, nil
}

func deriveSubkey(master []byte, info string, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("storage: derive subkey: %w", err)
	}
	return key, nil
}

// CipherName returns the name of the cipher used for new records.
func (e *SealedEngine) CipherName() string {
	return e.write.String()
}

// Get opens the record stored under key.
func (e *SealedEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if bytes.Equal(key, SaltKey) {
		return nil, ErrReservedKey
	}
	sealed, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.open(key, sealed)
}

// Set seals value and stores it under key.
func (e *SealedEngine) Set(ctx context.Context, key, value []byte) error {
	if bytes.Equal(key, SaltKey) {
		return ErrReservedKey
	}
	sealed, err := e.seal(key, value)
	if err != nil {
		return err
	}
	return e.inner.Set(ctx, key, sealed)
}

func (e *SealedEngine) Delete(ctx context.Context, key []byte) error {
	if bytes.Equal(key, SaltKey) {
		return ErrReservedKey
	}
	return e.inner.Delete(ctx, key)
}

// Close closes the wrapped engine.
func (e *SealedEngine) Close() error {
	return e.inner.Close()
}

// Record layout: magic(4) | cipher(1) | nonce | ciphertext+tag
func (e *SealedEngine) seal(key, plaintext []byte) ([]byte, error) {
	aead := e.ciphers[e.write]
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("storage: nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+1+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, byte(e.write))
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, key), nil
}

func (e *SealedEngine) open(key, record []byte) ([]byte, error) {
	if len(record) < len(sealMagic)+1 || !bytes.Equal(record[:len(sealMagic)], sealMagic) {
		return nil, ErrNotSealed
	}
	aead, ok := e.ciphers[CipherType(record[len(sealMagic)])]
	if !ok {
		return nil, fmt.Errorf("storage: unknown cipher %d", record[len(sealMagic)])
	}
	body := record[len(sealMagic)+1:]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
