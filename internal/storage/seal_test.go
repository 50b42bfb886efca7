package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestSealedEngine_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, ct := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(ct.String(), func(t *testing.T) {
			inner := NewMemoryEngine()
			sealed, err := newSealedEngine(ctx, inner, []byte("correct horse battery"), ct)
			if err != nil {
				t.Fatal(err)
			}

			plaintext := []byte(`{"tokens":{"access":"a","refresh":"r"}}`)
			if err := sealed.Set(ctx, []byte("auth-storage"), plaintext); err != nil {
				t.Fatal(err)
			}

			raw, err := inner.Get(ctx, []byte("auth-storage"))
			if err != nil {
				t.Fatal(err)
			}
			if bytes.Contains(raw, []byte("refresh")) {
				t.Error("stored record is not encrypted")
			}
			if CipherType(raw[len(sealMagic)]) != ct {
				t.Errorf("record cipher = %d, want %d", raw[len(sealMagic)], ct)
			}

			got, err := sealed.Get(ctx, []byte("auth-storage"))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Get = %s", got)
			}
		})
	}
}

func TestSealedEngine_CrossCipherRead(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryEngine()
	pass := []byte("correct horse battery")

	w, err := newSealedEngine(ctx, inner, pass, CipherChaCha20)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Set(ctx, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}

	r, err := newSealedEngine(ctx, inner, pass, CipherAESGCM)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(ctx, []byte("k"))
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestSealedEngine_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryEngine()

	good, err := NewSealedEngine(ctx, inner, []byte("correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	if err := good.Set(ctx, []byte("k"), []byte("secret")); err != nil {
		t.Fatal(err)
	}

	bad, err := NewSealedEngine(ctx, inner, []byte("wrong horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Get(ctx, []byte("k")); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Get with wrong passphrase error = %v, want ErrDecryptionFailed", err)
	}
}

func TestSealedEngine_KeyBoundAsAdditionalData(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryEngine()
	sealed, err := NewSealedEngine(ctx, inner, []byte("correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	sealed.Set(ctx, []byte("a"), []byte("value"))

	raw, _ := inner.Get(ctx, []byte("a"))
	inner.Set(ctx, []byte("b"), raw)

	if _, err := sealed.Get(ctx, []byte("b")); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("moved record error = %v, want ErrDecryptionFailed", err)
	}
}

func TestSealedEngine_SaltPersistedOnce(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryEngine()

	if _, err := NewSealedEngine(ctx, inner, []byte("correct horse battery")); err != nil {
		t.Fatal(err)
	}
	salt1, err := inner.Get(ctx, SaltKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(salt1) != SaltLength {
		t.Fatalf("salt length = %d", len(salt1))
	}

	if _, err := NewSealedEngine(ctx, inner, []byte("correct horse battery")); err != nil {
		t.Fatal(err)
	}
	salt2, _ := inner.Get(ctx, SaltKey)
	if !bytes.Equal(salt1, salt2) {
		t.Error("salt regenerated on reopen")
	}
}

func TestSealedEngine_Errors(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryEngine()

	if _, err := NewSealedEngine(ctx, inner, []byte("short")); !errors.Is(err, ErrPassphraseTooWeak) {
		t.Errorf("weak passphrase error = %v", err)
	}

	sealed, err := NewSealedEngine(ctx, inner, []byte("correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}

	if err := sealed.Set(ctx, SaltKey, []byte("x")); !errors.Is(err, ErrReservedKey) {
		t.Errorf("Set(SaltKey) error = %v", err)
	}

	inner.Set(ctx, []byte("plain"), []byte(`{"user":null}`))
	if _, err := sealed.Get(ctx, []byte("plain")); !errors.Is(err, ErrNotSealed) {
		t.Errorf("Get(plain) error = %v, want ErrNotSealed", err)
	}
}
