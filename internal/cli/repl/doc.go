// Package repl provides the interactive `wastewise shell`.
//
// Each line is split into arguments and handed to an Executor, which runs
// it through the same command tree as single-command mode, so the session
// and realtime channel stay open between lines.
//
//   - repl.go: loop, built-ins (help, history, exit)
//   - completer.go: command-path suggestions
//   - history.go: history persisted under ~/.wastewise
//   - split.go: shell-style argument splitting
package repl
