package command

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/repl"
	"github.com/wastewise/wastewise-go/internal/config"
)

// ShellCommand starts an interactive session that keeps the realtime
// channel open between commands.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Usage: "History file (default ~/.wastewise/history)"},
			&cli.BoolFlag{Name: "no-history", Usage: "Do not read or write a history file"},
			&cli.BoolFlag{Name: "no-banner", Usage: "Skip the banner"},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	st := appState(c.App)
	if st.inShell {
		return errors.New("already in the shell")
	}

	rt, err := openRuntime(c, true)
	if err != nil {
		return err
	}

	historyPath := c.String("history")
	if historyPath == "" {
		historyPath = filepath.Join(config.DefaultHome(), "history")
	}
	if c.Bool("no-history") {
		historyPath = ""
	}
	history := repl.NewFileHistory(historyPath, repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("loading shell history", "error", err)
	}

	st.inShell = true
	defer func() { st.inShell = false }()

	exec := func(ctx context.Context, args []string) error {
		before := rt.notifier.errors()
		if err := c.App.RunContext(ctx, append([]string{AppName}, args...)); err != nil {
			reportError(c.App, err, before)
		}
		return nil
	}

	r := repl.New(exec, CommandPaths(),
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
		repl.WithBanner(!c.Bool("no-banner")),
	)
	err = r.Run(c.Context)
	if serr := history.Save(); serr != nil {
		rt.Logger.Warn("saving shell history", "error", serr)
	}
	return err
}
