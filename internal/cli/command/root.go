package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/infra/buildinfo"
)

// AppName is the binary name.
const AppName = "wastewise"

// App creates the CLI application writing to stdout and stderr.
func App(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                 AppName,
		Usage:                "WasteWise smart waste management client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		Writer:               stdout,
		ErrWriter:            stderr,
		EnableBashCompletion: true,
		Metadata:             map[string]any{stateKey: &state{}},
		// Errors are reported by Run; never os.Exit from inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		RegisterCommand(),
		WhoamiCommand(),
		TokenCommand(),
		ProfileCommand(),
		PasswdCommand(),
		BinsCommand(),
		ZonesCommand(),
		AlertsCommand(),
		RoutesCommand(),
		VehiclesCommand(),
		SensorsCommand(),
		AnalyticsCommand(),
		WatchCommand(),
		ShellCommand(),
		ConfigCommand(),
		VersionCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.wastewise/config.yaml)",
			EnvVars: []string{"WASTEWISE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "Backend API base URL (e.g., https://api.wastewise.tn/api)",
		},
		&cli.StringFlag{
			Name:  "ws-url",
			Usage: "Realtime endpoint (e.g., wss://api.wastewise.tn/ws)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// GlobalFlags holds the values of the global flags.
type GlobalFlags struct {
	Config  string
	APIURL  string
	WSURL   string
	Output  string
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:  c.String("config"),
		APIURL:  c.String("api-url"),
		WSURL:   c.String("ws-url"),
		Output:  c.String("output"),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// overrides maps flags onto config keys. Unset flags are dropped by the loader.
func (f *GlobalFlags) overrides() map[string]any {
	m := map[string]any{
		"api_url": f.APIURL,
		"ws_url":  f.WSURL,
		"output":  f.Output,
	}
	if f.Verbose {
		m["log.level"] = "debug"
	}
	return m
}

// Run executes args (args[0] is the program name), reports a failure on
// stderr, and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return runApp(ctx, App(stdout, stderr), args)
}

func runApp(ctx context.Context, app *cli.App, args []string) int {
	defer closeRuntime(app)

	if err := app.RunContext(ctx, args); err != nil {
		reportError(app, err, 0)
		return 1
	}
	return 0
}

// Main runs the CLI against the process arguments and standard streams.
func Main(ctx context.Context) int {
	return Run(ctx, os.Args, os.Stdout, os.Stderr)
}

// reportError prints err unless the user has already been told: the HTTP
// client and the realtime channel print their own failures, and an expired
// session prints the login hint.
func reportError(app *cli.App, err error, before int) {
	if errors.Is(err, context.Canceled) {
		return
	}
	st := appState(app)
	if st.rt != nil && st.rt.notifier.errors() > before {
		return
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		return
	}
	fmt.Fprintf(app.ErrWriter, "error: %s\n", message(err))
}

// message strips the domain error code for display.
func message(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Error() == err.Error() {
		if de.Details != "" {
			return de.Message + ": " + de.Details
		}
		return de.Message
	}
	return err.Error()
}

// CommandPaths lists every command as a space separated path, for
// completion in the shell.
func CommandPaths() []string {
	var paths []string
	var walk func(prefix string, cmds []*cli.Command)
	walk = func(prefix string, cmds []*cli.Command) {
		for _, cmd := range cmds {
			if cmd.Hidden {
				continue
			}
			path := strings.TrimSpace(prefix + " " + cmd.Name)
			paths = append(paths, path)
			walk(path, cmd.Subcommands)
		}
	}
	walk("", commands())
	sort.Strings(paths)
	return paths
}
