package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/coder/websocket"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// backend is a fake WasteWise server: REST under /, realtime under /ws.
type backend struct {
	server *httptest.Server

	mu      sync.Mutex
	access  string
	queries map[string]url.Values
	report  []byte
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		queries: map[string]url.Values{},
		report:  []byte("%PDF-1.4 fake report"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/", b.handleLogin)
	mux.HandleFunc("/auth/token/verify/", b.handleVerify)
	mux.HandleFunc("/v1/users/me/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.User{ID: 1, Email: "ops@example.com", FirstName: "Amira", LastName: "Ben Salah", Role: domain.RoleOperator})
	}))
	mux.HandleFunc("/v1/bins/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Page[domain.WasteBin]{
			Count: 2,
			Results: []domain.WasteBin{
				{ID: 1, BinID: "BIN-001", Address: "Rue de Marseille", Status: domain.BinActive, CurrentFillLevel: 85},
				{ID: 2, BinID: "BIN-002", Address: "Avenue Habib Bourguiba", Status: domain.BinActive, CurrentFillLevel: 92},
			},
		})
	}))
	mux.HandleFunc("/v1/alerts/3/acknowledge/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, domain.Alert{ID: 3, Title: "Bin full", Status: domain.AlertAcknowledged})
	}))
	mux.HandleFunc("/v1/analytics/reports/5/download/", b.authed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(b.report)))
		w.Write(b.report)
	}))
	mux.HandleFunc("/ws", b.handleRealtime)
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *backend) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		ok := b.access != "" && r.Header.Get("Authorization") == "Bearer "+b.access
		b.queries[r.URL.Path] = r.URL.Query()
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		h(w, r)
	}
}

func (b *backend) query(path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[path]
}

func (b *backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.LoginCredentials
	json.NewDecoder(r.Body).Decode(&creds)
	if creds.Email != "ops@example.com" || creds.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	b.mu.Lock()
	b.access = "access-1"
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.Credentials{Access: "access-1", Refresh: "refresh-1"})
}

func (b *backend) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	ok := body["token"] != "" && body["token"] == b.access
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// handleRealtime answers every sensor_command with a command_response.
func (b *backend) handleRealtime(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	ok := b.access != "" && r.URL.Query().Get("token") == b.access
	b.mu.Unlock()
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()
	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var env domain.Envelope
		if json.Unmarshal(data, &env) != nil || env.Event != domain.MessageSensorCommand {
			continue
		}
		var cmd domain.SensorCommand
		json.Unmarshal(env.Data, &cmd)
		reply, _ := domain.NewEnvelope(string(domain.EventCommandResponse), domain.CommandResponse{
			SensorID: cmd.SensorID,
			Command:  cmd.Command,
			Status:   "ok",
			Result:   json.RawMessage(`{"fillLevel":42}`),
		})
		out, _ := json.Marshal(reply)
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return
		}
	}
}

// env is one isolated client installation pointed at a backend.
type env struct {
	t       *testing.T
	backend *backend
	dir     string
	config  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := newBackend(t)
	dir := t.TempDir()
	wsURL := "ws" + strings.TrimPrefix(b.server.URL, "http") + "/ws"
	content := fmt.Sprintf(`api_url: %s
ws_url: %s
request_timeout: 5s
storage:
  backend: file
  dir: %s
realtime:
  max_reconnect_attempts: 1
  reconnect_delay: 10ms
log:
  level: error
`, b.server.URL, wsURL, filepath.Join(dir, "session"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return &env{t: t, backend: b, dir: dir, config: path}
}

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes one CLI invocation; args exclude the program name.
func (e *env) run(args ...string) result {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *env) runWithInput(input string, args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	app := App(&stdout, &stderr)
	app.Reader = strings.NewReader(input)
	full := append([]string{AppName, "--config", e.config}, args...)
	code := runApp(context.Background(), app, full)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (e *env) login() {
	e.t.Helper()
	if r := e.run("login", "--email", "ops@example.com", "--password", "secret"); r.code != 0 {
		e.t.Fatalf("login failed: code %d, stderr %q", r.code, r.stderr)
	}
}
