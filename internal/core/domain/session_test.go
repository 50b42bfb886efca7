package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSessionState_Valid(t *testing.T) {
	tests := []struct {
		name  string
		state SessionState
		want  bool
	}{
		{"empty", SessionState{}, true},
		{"authenticated with access", SessionState{Credentials: &Credentials{Access: "a"}, IsAuthenticated: true}, true},
		{"authenticated without credentials", SessionState{IsAuthenticated: true}, false},
		{"authenticated with blank access", SessionState{Credentials: &Credentials{Access: " ", Refresh: "r"}, IsAuthenticated: true}, false},
		{"credentials but not authenticated", SessionState{Credentials: &Credentials{Access: "a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionState_CloneIsDeep(t *testing.T) {
	orig := SessionState{
		User:            &User{ID: 1, Email: "a@b.com"},
		Credentials:     &Credentials{Access: "a", Refresh: "r"},
		IsAuthenticated: true,
	}
	cp := orig.Clone()
	cp.User.Email = "changed"
	cp.Credentials.Access = "changed"

	if orig.User.Email != "a@b.com" {
		t.Error("Clone shares the user record")
	}
	if orig.Credentials.Access != "a" {
		t.Error("Clone shares the credentials")
	}
}

func TestSessionState_PersistedExcludesLoading(t *testing.T) {
	state := SessionState{
		User:            &User{ID: 7, Email: "a@b.com"},
		Credentials:     &Credentials{Access: "a", Refresh: "r"},
		IsAuthenticated: true,
		IsLoading:       true,
	}

	data, err := json.Marshal(state.Persisted())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "loading") {
		t.Errorf("persisted record leaks the loading flag: %s", data)
	}

	var p PersistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	restored := p.State()
	if restored.IsLoading {
		t.Error("rehydrated state should never be loading")
	}
	if !restored.IsAuthenticated || restored.Credentials.Access != "a" || restored.User.ID != 7 {
		t.Errorf("restored = %+v", restored)
	}
}

func TestPersistedSession_WireNames(t *testing.T) {
	data, _ := json.Marshal(PersistedSession{Tokens: &Credentials{Access: "a", Refresh: "r"}, IsAuthenticated: true})
	for _, key := range []string{`"user"`, `"tokens"`, `"isAuthenticated"`, `"access"`, `"refresh"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("persisted record missing %s: %s", key, data)
		}
	}
}

func TestPersistedSession_Empty(t *testing.T) {
	if !(PersistedSession{}).Empty() {
		t.Error("zero record should be empty")
	}
	if (PersistedSession{IsAuthenticated: true}).Empty() {
		t.Error("record with flag set should not be empty")
	}
}

func TestCredentials_NilSafe(t *testing.T) {
	var c *Credentials
	if c.HasAccess() || c.HasRefresh() {
		t.Error("nil credentials should have no tokens")
	}
	if c.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		user *User
		want string
	}{
		{nil, ""},
		{&User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{&User{FirstName: "Ada"}, "Ada"},
		{&User{Username: "ada"}, "ada"},
		{&User{Email: "a@b.com"}, "a@b.com"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestSeverity_Urgent(t *testing.T) {
	urgent := map[Severity]bool{
		SeverityLow:      false,
		SeverityMedium:   false,
		SeverityHigh:     true,
		SeverityCritical: true,
	}
	for s, want := range urgent {
		if got := s.Urgent(); got != want {
			t.Errorf("%s.Urgent() = %v, want %v", s, got, want)
		}
	}
}

func TestEnvelope_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{"ok", Envelope{Event: "sensor_update", Data: json.RawMessage(`{"bin":1}`)}, false},
		{"no data", Envelope{Event: "sensor_update"}, false},
		{"missing event", Envelope{Data: json.RawMessage(`{}`)}, true},
		{"bad data", Envelope{Event: "x", Data: json.RawMessage(`{`)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.env.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBinFilters_Query(t *testing.T) {
	lo := 80.0
	q := BinFilters{
		ListParams:   ListParams{Page: 2, Search: "main st"},
		Zone:         3,
		Status:       BinActive,
		FillLevelMin: &lo,
	}.Query()

	want := map[string]string{
		"page":           "2",
		"search":         "main st",
		"zone":           "3",
		"status":         "active",
		"fill_level_min": "80",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Has("fill_level_max") || q.Has("bin_type") {
		t.Errorf("unset filters should be omitted: %v", q)
	}
}

func TestAlertFilters_Query(t *testing.T) {
	q := AlertFilters{Severity: SeverityCritical, Created: DateRange{Start: "2024-01-01"}}.Query()
	if q.Get("severity") != "critical" || q.Get("created_after") != "2024-01-01" {
		t.Errorf("query = %v", q)
	}
	if q.Has("created_before") {
		t.Error("created_before should be omitted")
	}
}
