package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// HandlerFunc receives the raw data of one event.
type HandlerFunc func(ctx context.Context, data json.RawMessage) error

// Listener is a registration handle. The same *Listener registered twice
// for one event is delivered once.
type Listener struct {
	name string
	fn   HandlerFunc
}

// NewListener wraps fn. name shows up in logs when fn fails.
func NewListener(name string, fn HandlerFunc) *Listener {
	return &Listener{name: name, fn: fn}
}

func (l *Listener) String() string {
	if l.name == "" {
		return fmt.Sprintf("listener(%p)", l)
	}
	return l.name
}

// Decode adapts a typed handler: data is unmarshaled into T first.
func Decode[T any](fn func(ctx context.Context, v T) error) HandlerFunc {
	return func(ctx context.Context, data json.RawMessage) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode %T: %w", v, err)
		}
		return fn(ctx, v)
	}
}

// table is the event dispatch table. Callers hold Channel.mu.
type table map[domain.Event][]*Listener

func (t table) add(event domain.Event, l *Listener) bool {
	for _, existing := range t[event] {
		if existing == l {
			return false
		}
	}
	t[event] = append(t[event], l)
	return true
}

func (t table) remove(event domain.Event, l *Listener) bool {
	ls := t[event]
	for i, existing := range ls {
		if existing == l {
			t[event] = append(ls[:i:i], ls[i+1:]...)
			if len(t[event]) == 0 {
				delete(t, event)
			}
			return true
		}
	}
	return false
}

// snapshot copies the listeners for event so they can run unlocked.
func (t table) snapshot(event domain.Event) []*Listener {
	return append([]*Listener(nil), t[event]...)
}
