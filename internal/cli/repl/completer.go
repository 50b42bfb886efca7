package repl

import (
	"sort"
	"strings"
)

var builtins = []string{"exit", "help", "history", "quit"}

// Completer suggests command paths such as "alerts ack".
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given paths plus the built-ins.
func NewCompleter(commands []string) *Completer {
	all := append(append([]string(nil), commands...), builtins...)
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns every path starting with prefix, in sorted order.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
