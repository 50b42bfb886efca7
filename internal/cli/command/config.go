package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/config"
)

// ConfigCommand shows and initializes the client configuration.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or initialize configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration (secrets masked)",
				Action: func(c *cli.Context) error {
					cfg, _, err := config.Load(config.LoadOptions{
						Path:      c.String("config"),
						Optional:  true,
						Overrides: ParseGlobalFlags(c).overrides(),
					})
					if err != nil {
						return err
					}
					safe := config.Sanitize(cfg)
					format, err := outputFormat(c)
					if err != nil {
						return err
					}
					if format != output.FormatTable {
						return render(c, config.ToMap(safe))
					}
					flat := config.Flat(safe)
					for k, v := range flat {
						if list, ok := v.([]string); ok {
							flat[k] = strings.Join(list, ",")
						}
					}
					return render(c, flat)
				},
			},
			{
				Name:  "path",
				Usage: "Print the config file in use",
				Action: func(c *cli.Context) error {
					_, path, err := loadConfig(c)
					if err != nil {
						return err
					}
					if path == "" {
						fmt.Fprintf(c.App.Writer, "%s (not created)\n", config.DefaultConfigPath())
						return nil
					}
					fmt.Fprintln(c.App.Writer, path)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a config file with the current settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if path == "" {
						path = config.DefaultConfigPath()
					}
					if _, err := os.Stat(path); err == nil && !c.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", path)
					} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
						return err
					}

					cfg, _, err := config.Load(config.LoadOptions{
						Path:      path,
						Optional:  true,
						Overrides: ParseGlobalFlags(c).overrides(),
					})
					if err != nil {
						return err
					}
					if err := config.Save(cfg, path); err != nil {
						return err
					}
					success(c, "Wrote %s", path)
					return nil
				},
			},
		},
	}
}
