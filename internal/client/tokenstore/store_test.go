package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/storage"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryEngine) {
	t.Helper()
	engine := storage.NewMemoryEngine()
	return New(engine, WithLogger(logger.NewNop())), engine
}

func readRecord(t *testing.T, engine storage.KVEngine) (domain.PersistedSession, bool) {
	t.Helper()
	data, err := engine.Get(context.Background(), []byte(domain.PersistKey))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return domain.PersistedSession{}, false
	}
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	var rec domain.PersistedSession
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	return rec, true
}

func TestStore_SetCredentialsMarksAuthenticated(t *testing.T) {
	ctx := context.Background()
	s, engine := newTestStore(t)

	if err := s.SetCredentials(ctx, &domain.Credentials{Access: "a1", Refresh: "r1"}); err != nil {
		t.Fatal(err)
	}

	if !s.IsAuthenticated() || s.AccessToken() != "a1" || s.RefreshToken() != "r1" {
		t.Errorf("state = %+v", s.Snapshot())
	}

	rec, ok := readRecord(t, engine)
	if !ok {
		t.Fatal("credentials were not persisted")
	}
	if !rec.IsAuthenticated || rec.Tokens.Access != "a1" || rec.Tokens.Refresh != "r1" {
		t.Errorf("persisted = %+v", rec)
	}
}

func TestStore_SetCredentialsRejectsEmptyAccess(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.SetCredentials(context.Background(), &domain.Credentials{Refresh: "r"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if s.IsAuthenticated() {
		t.Error("store should remain unauthenticated")
	}
}

func TestStore_SetAccessKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	s, engine := newTestStore(t)
	s.SetCredentials(ctx, &domain.Credentials{Access: "old", Refresh: "keep"})

	if err := s.SetAccess(ctx, "new"); err != nil {
		t.Fatal(err)
	}

	c := s.Credentials()
	if c.Access != "new" || c.Refresh != "keep" {
		t.Errorf("credentials = %+v", c)
	}
	rec, _ := readRecord(t, engine)
	if rec.Tokens.Refresh != "keep" {
		t.Errorf("persisted refresh = %q", rec.Tokens.Refresh)
	}
}

func TestStore_LoadingNotPersisted(t *testing.T) {
	s, engine := newTestStore(t)

	s.SetLoading(true)
	if !s.Snapshot().IsLoading {
		t.Error("loading flag not set")
	}
	if _, ok := readRecord(t, engine); ok {
		t.Error("SetLoading should not write storage")
	}
}

func TestStore_ClearErasesRecord(t *testing.T) {
	ctx := context.Background()
	s, engine := newTestStore(t)
	s.SetCredentials(ctx, &domain.Credentials{Access: "a", Refresh: "r"})
	s.SetUser(ctx, &domain.User{ID: 1, Email: "a@b.com"})

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.User != nil || snap.Credentials != nil || snap.IsAuthenticated {
		t.Errorf("state after Clear = %+v", snap)
	}
	if _, ok := readRecord(t, engine); ok {
		t.Error("persisted record should be erased")
	}

	// Idempotent.
	if err := s.Clear(ctx); err != nil {
		t.Errorf("second Clear error = %v", err)
	}
}

func TestStore_LoadRehydrates(t *testing.T) {
	ctx := context.Background()
	engine := storage.NewMemoryEngine()

	first := New(engine, WithLogger(logger.NewNop()))
	first.SetCredentials(ctx, &domain.Credentials{Access: "a", Refresh: "r"})
	first.SetUser(ctx, &domain.User{ID: 9, Email: "ops@wastewise.io"})
	first.SetLoading(true)

	second := New(engine, WithLogger(logger.NewNop()))
	if err := second.Load(ctx); err != nil {
		t.Fatal(err)
	}

	snap := second.Snapshot()
	if !snap.IsAuthenticated || snap.Credentials.Access != "a" || snap.User.ID != 9 {
		t.Errorf("rehydrated = %+v", snap)
	}
	if snap.IsLoading {
		t.Error("loading flag should not survive a restart")
	}
}

func TestStore_LoadMissingRecord(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.IsAuthenticated() {
		t.Error("empty storage should give an empty session")
	}
}

func TestStore_LoadDiscardsBadRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"not json", `{"user":`},
		{"authenticated without tokens", `{"user":null,"tokens":null,"isAuthenticated":true}`},
		{"authenticated with empty access", `{"tokens":{"access":"","refresh":"r"},"isAuthenticated":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, engine := newTestStore(t)
			engine.Set(ctx, []byte(domain.PersistKey), []byte(tt.record))

			if err := s.Load(ctx); err != nil {
				t.Fatalf("Load error = %v", err)
			}
			if s.IsAuthenticated() {
				t.Error("bad record should not authenticate")
			}
			if _, ok := readRecord(t, engine); ok {
				t.Error("bad record should be deleted")
			}
		})
	}
}

func TestStore_LoadWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryEngine()

	good, err := storage.NewSealedEngine(ctx, inner, []byte("correct horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	New(good, WithLogger(logger.NewNop())).SetCredentials(ctx, &domain.Credentials{Access: "a", Refresh: "r"})

	bad, err := storage.NewSealedEngine(ctx, inner, []byte("wrong horse battery"))
	if err != nil {
		t.Fatal(err)
	}
	err = New(bad, WithLogger(logger.NewNop())).Load(ctx)
	if !errors.Is(err, domain.ErrSealFailed) {
		t.Errorf("Load error = %v, want ErrSealFailed", err)
	}
	if _, err := inner.Get(ctx, []byte(domain.PersistKey)); err != nil {
		t.Error("sealed record must not be discarded on a wrong passphrase")
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.SetCredentials(ctx, &domain.Credentials{Access: "a", Refresh: "r"})
	s.SetUser(ctx, &domain.User{Email: "a@b.com"})

	snap := s.Snapshot()
	snap.Credentials.Access = "tampered"
	snap.User.Email = "tampered"

	if s.AccessToken() != "a" || s.User().Email != "a@b.com" {
		t.Error("Snapshot leaked internal state")
	}
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var seen []bool
	unsubscribe := s.Subscribe(func(st domain.SessionState) {
		seen = append(seen, st.IsAuthenticated)
	})

	s.SetCredentials(ctx, &domain.Credentials{Access: "a"})
	s.Clear(ctx)
	unsubscribe()
	s.SetCredentials(ctx, &domain.Credentials{Access: "b"})

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("observed = %v, want [true false]", seen)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetCredentials(ctx, &domain.Credentials{Access: "a", Refresh: "r"})
		}()
		go func() {
			defer wg.Done()
			if !s.Snapshot().Valid() {
				t.Error("observed a state violating the authentication invariant")
			}
		}()
	}
	wg.Wait()
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	raw := signToken(t, jwt.MapClaims{
		"token_type": "access",
		"user_id":    42,
		"jti":        "abc123",
		"exp":        exp.Unix(),
	})

	c, err := ParseClaims(raw)
	if err != nil {
		t.Fatal(err)
	}
	if c.TokenType != "access" || c.UserID != "42" || c.ID != "abc123" {
		t.Errorf("claims = %+v", c)
	}
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, exp)
	}
	if c.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !c.Expired(exp.Add(time.Second)) {
		t.Error("token should be expired after exp")
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	if _, err := ParseClaims("not-a-jwt"); !errors.Is(err, domain.ErrMalformedToken) {
		t.Errorf("error = %v, want ErrMalformedToken", err)
	}
}

func TestStore_AccessClaims(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if _, err := s.AccessClaims(); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("AccessClaims() without session error = %v", err)
	}
	if !s.AccessExpiry().IsZero() {
		t.Error("AccessExpiry should be zero without a session")
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s.SetCredentials(ctx, &domain.Credentials{Access: signToken(t, jwt.MapClaims{"exp": exp.Unix()})})
	if !s.AccessExpiry().Equal(exp) {
		t.Errorf("AccessExpiry() = %v, want %v", s.AccessExpiry(), exp)
	}
	if !s.Authenticated() {
		t.Error("Authenticated() should follow the flag")
	}
}
