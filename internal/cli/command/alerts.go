package command

import (
	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// AlertsCommand lists alerts and moves them through their lifecycle.
func AlertsCommand() *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "List and handle alerts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List alerts",
				Flags: append(listFlags(),
					&cli.StringFlag{Name: "type", Usage: "Alert type"},
					&cli.StringFlag{Name: "severity", Usage: "low, medium, high or critical"},
					&cli.StringFlag{Name: "status", Usage: "new, acknowledged, in_progress, resolved or closed"},
					&cli.Int64Flag{Name: "zone", Usage: "Zone ID"},
					&cli.StringFlag{Name: "since", Usage: "Created on or after (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "until", Usage: "Created on or before (YYYY-MM-DD)"},
				),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Alerts.ListFiltered(c.Context, domain.AlertFilters{
						ListParams: listParams(c),
						AlertType:  c.String("type"),
						Severity:   domain.Severity(c.String("severity")),
						Status:     domain.AlertStatus(c.String("status")),
						Zone:       c.Int64("zone"),
						Created:    domain.DateRange{Start: c.String("since"), End: c.String("until")},
					})
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			alertAction("get", "Show one alert", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Alerts.Get(c.Context, id)
			}),
			alertAction("ack", "Acknowledge an alert", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Alerts.Acknowledge(c.Context, id)
			}),
			alertAction("close", "Close an alert", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Alerts.Close(c.Context, id)
			}),
			alertAction("comments", "List an alert's comments", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Alerts.Comments(c.Context, id)
			}),
			withFlags(alertAction("resolve", "Resolve an alert", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				var data any
				if notes := c.String("notes"); notes != "" {
					data = map[string]string{"resolutionNotes": notes}
				}
				return rt.API.Alerts.Resolve(c.Context, id, data)
			}), &cli.StringFlag{Name: "notes", Usage: "Resolution notes"}),
			{
				Name:      "comment",
				Usage:     "Comment on an alert",
				ArgsUsage: "ALERT_ID TEXT",
				Action: func(c *cli.Context) error {
					id, err := argID(c, 0, "ALERT_ID")
					if err != nil {
						return err
					}
					text := c.Args().Get(1)
					if text == "" {
						return domain.ErrMissingArgument.WithDetails("TEXT")
					}
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					comment, err := rt.API.Alerts.AddComment(c.Context, id, text)
					if err != nil {
						return err
					}
					return render(c, comment)
				},
			},
		},
	}
}

type idAction func(c *cli.Context, rt *Runtime, id int64) (any, error)

// alertAction builds a command taking ALERT_ID and rendering the result.
func alertAction(name, usage string, fn idAction) *cli.Command {
	return idCommand(name, usage, "ALERT_ID", fn)
}

func idCommand(name, usage, arg string, fn idAction) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: arg,
		Action: func(c *cli.Context) error {
			id, err := argID(c, 0, arg)
			if err != nil {
				return err
			}
			rt, err := authedRuntime(c)
			if err != nil {
				return err
			}
			out, err := fn(c, rt, id)
			if err != nil {
				return err
			}
			return render(c, out)
		},
	}
}

func withFlags(cmd *cli.Command, flags ...cli.Flag) *cli.Command {
	cmd.Flags = append(cmd.Flags, flags...)
	return cmd
}
