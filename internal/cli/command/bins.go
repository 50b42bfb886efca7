package command

import (
	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/client/api"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// BinsCommand browses waste bins.
func BinsCommand() *cli.Command {
	return &cli.Command{
		Name:  "bins",
		Usage: "Browse waste bins",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List bins",
				Flags: append(listFlags(),
					&cli.Int64Flag{Name: "zone", Usage: "Zone ID"},
					&cli.StringFlag{Name: "type", Usage: "Bin type"},
					&cli.StringFlag{Name: "status", Usage: "active, maintenance, damaged or inactive"},
					&cli.Float64Flag{Name: "fill-min", Usage: "Minimum fill level (%)"},
					&cli.Float64Flag{Name: "fill-max", Usage: "Maximum fill level (%)"},
				),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Bins.ListFiltered(c.Context, domain.BinFilters{
						ListParams:   listParams(c),
						Zone:         c.Int64("zone"),
						BinType:      c.String("type"),
						Status:       domain.BinStatus(c.String("status")),
						FillLevelMin: optionalFloat(c, "fill-min"),
						FillLevelMax: optionalFloat(c, "fill-max"),
					})
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			{
				Name:      "get",
				Usage:     "Show one bin",
				ArgsUsage: "BIN_ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c, 0, "BIN_ID")
					if err != nil {
						return err
					}
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					bin, err := rt.API.Bins.Get(c.Context, id)
					if err != nil {
						return err
					}
					return render(c, bin)
				},
			},
			{
				Name:  "nearby",
				Usage: "List bins around a point",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat", Required: true},
					&cli.Float64Flag{Name: "lng", Required: true},
					&cli.IntFlag{Name: "radius", Value: api.DefaultNearbyRadius, Usage: "Radius in meters"},
				},
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					bins, err := rt.API.Bins.Nearby(c.Context, c.Float64("lat"), c.Float64("lng"), c.Int("radius"))
					if err != nil {
						return err
					}
					return render(c, bins)
				},
			},
			{
				Name:      "maintenance",
				Usage:     "Show a bin's maintenance history",
				ArgsUsage: "BIN_ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c, 0, "BIN_ID")
					if err != nil {
						return err
					}
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					records, err := rt.API.Bins.Maintenance(c.Context, id)
					if err != nil {
						return err
					}
					return render(c, records)
				},
			},
		},
	}
}

// ZonesCommand browses collection zones.
func ZonesCommand() *cli.Command {
	return &cli.Command{
		Name:  "zones",
		Usage: "Browse collection zones",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List zones",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Zones.List(c.Context, listParams(c).Query())
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			{
				Name:      "stats",
				Usage:     "Show a zone's statistics",
				ArgsUsage: "ZONE_ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c, 0, "ZONE_ID")
					if err != nil {
						return err
					}
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					stats, err := rt.API.Zones.Stats(c.Context, id)
					if err != nil {
						return err
					}
					return render(c, stats)
				},
			},
		},
	}
}
