package command

import (
	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// RoutesCommand manages collection routes.
func RoutesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "Manage collection routes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List routes",
				Flags: append(listFlags(),
					&cli.Int64Flag{Name: "zone", Usage: "Zone ID"},
					&cli.StringFlag{Name: "status", Usage: "planned, active, completed or cancelled"},
					&cli.StringFlag{Name: "from", Usage: "Scheduled on or after (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "Scheduled on or before (YYYY-MM-DD)"},
					&cli.Int64Flag{Name: "vehicle", Usage: "Vehicle ID"},
					&cli.Int64Flag{Name: "driver", Usage: "Driver user ID"},
				),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Routes.ListFiltered(c.Context, domain.RouteFilters{
						ListParams: listParams(c),
						Zone:       c.Int64("zone"),
						Status:     domain.RouteStatus(c.String("status")),
						Scheduled:  domain.DateRange{Start: c.String("from"), End: c.String("to")},
						Vehicle:    c.Int64("vehicle"),
						Driver:     c.Int64("driver"),
					})
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			idCommand("get", "Show one route", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Routes.Get(c.Context, id)
			}),
			idCommand("stops", "List a route's stops", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Routes.Stops(c.Context, id)
			}),
			idCommand("start", "Start a route", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Routes.Start(c.Context, id)
			}),
			withFlags(idCommand("complete", "Complete a route", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				var data any
				if c.IsSet("distance") || c.IsSet("fuel") {
					data = map[string]float64{
						"actualDistance":        c.Float64("distance"),
						"actualFuelConsumption": c.Float64("fuel"),
					}
				}
				return rt.API.Routes.Complete(c.Context, id, data)
			}),
				&cli.Float64Flag{Name: "distance", Usage: "Actual distance driven (km)"},
				&cli.Float64Flag{Name: "fuel", Usage: "Fuel consumed (l)"},
			),
			withFlags(idCommand("cancel", "Cancel a route", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Routes.Cancel(c.Context, id, c.String("reason"))
			}), &cli.StringFlag{Name: "reason", Usage: "Why the route is cancelled"}),
			idCommand("optimize", "Reorder a route's stops", "ROUTE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Routes.Optimize(c.Context, id, nil)
			}),
		},
	}
}

// VehiclesCommand manages the collection fleet.
func VehiclesCommand() *cli.Command {
	return &cli.Command{
		Name:  "vehicles",
		Usage: "Manage collection vehicles",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List vehicles",
				Flags: listFlags(),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Vehicles.List(c.Context, listParams(c).Query())
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			idCommand("get", "Show one vehicle", "VEHICLE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Vehicles.Get(c.Context, id)
			}),
			idCommand("maintenance", "Show a vehicle's maintenance history", "VEHICLE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Vehicles.Maintenance(c.Context, id)
			}),
			withFlags(idCommand("locate", "Report a vehicle's position", "VEHICLE_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Vehicles.UpdateLocation(c.Context, id, domain.Coordinates{
					Lat: c.Float64("lat"),
					Lng: c.Float64("lng"),
				})
			}),
				&cli.Float64Flag{Name: "lat", Required: true},
				&cli.Float64Flag{Name: "lng", Required: true},
			),
		},
	}
}
