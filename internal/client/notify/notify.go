// Package notify delivers transient user-facing notifications.
//
// A Notifier is the client's "toast": the HTTP client reports unrecovered
// errors through it, the realtime channel reports connection trouble and
// urgent alerts. The CLI prints them to stderr; tests record them.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

// Level is the kind of notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Notifier shows short messages to the user.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// Writer prints notifications as single lines, prefixed with a level glyph.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) print(glyph, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", glyph, msg)
}

func (n *Writer) Info(msg string)    { n.print("ℹ", msg) }
func (n *Writer) Success(msg string) { n.print("✓", msg) }
func (n *Writer) Warn(msg string)    { n.print("!", msg) }
func (n *Writer) Error(msg string)   { n.print("✗", msg) }

// Log forwards notifications to a logger. Used when no terminal is attached.
type Log struct {
	L logger.Logger
}

func (n Log) Info(msg string)    { n.L.Info(msg, "notify", LevelInfo) }
func (n Log) Success(msg string) { n.L.Info(msg, "notify", LevelSuccess) }
func (n Log) Warn(msg string)    { n.L.Warn(msg, "notify", LevelWarn) }
func (n Log) Error(msg string)   { n.L.Error(msg, "notify", LevelError) }

// Nop drops every notification.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Success(string) {}
func (Nop) Warn(string)    {}
func (Nop) Error(string)   {}

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Level: level, Text: msg})
	r.mu.Unlock()
}

func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Warn(msg string)    { r.add(LevelWarn, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Errors returns the text of every error notification.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == LevelError {
			out = append(out, m.Text)
		}
	}
	return out
}

// Reset forgets recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}
