package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			format, err := outputFormat(c)
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				fmt.Fprintf(c.App.Writer, "%s %s\n", AppName, info.Version)
				fmt.Fprintf(c.App.Writer, "  Commit:     %s\n", info.Commit)
				fmt.Fprintf(c.App.Writer, "  Built:      %s\n", info.BuildTime)
				fmt.Fprintf(c.App.Writer, "  Go version: %s\n", info.GoVersion)
				fmt.Fprintf(c.App.Writer, "  Platform:   %s\n", info.Platform)
				return nil
			}
			return render(c, info)
		},
	}
}
