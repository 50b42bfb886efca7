// Package command defines the wastewise command tree on urfave/cli/v2.
//
//   - root.go: App, global flags, Run and error reporting
//   - runtime.go: wiring of config, storage, session and realtime
//   - auth.go: login, logout, register, whoami, token, profile, passwd
//   - bins.go, alerts.go, routes.go, sensors.go, analytics.go: resources
//   - watch.go: realtime event stream
//   - shell.go: interactive mode
//   - config.go, version.go: local information
//
// Every action follows the same shape: open the runtime, call the session
// controller or the API client, render the result.
package command
