package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/client/realtime"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// DefaultCommandWait is how long `sensors command` waits for the sensor's answer.
const DefaultCommandWait = 10 * time.Second

// SensorsCommand reads sensor data and sends commands to sensors.
func SensorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sensors",
		Usage: "Read sensor data and command sensors",
		Subcommands: []*cli.Command{
			idCommand("latest", "Show a bin's latest reading", "BIN_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Sensors.LatestReading(c.Context, id)
			}),
			{
				Name:      "readings",
				Usage:     "List a bin's readings",
				ArgsUsage: "BIN_ID",
				Flags: append(listFlags(),
					&cli.StringFlag{Name: "since", Usage: "Readings on or after (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "until", Usage: "Readings on or before (YYYY-MM-DD)"},
				),
				Action: func(c *cli.Context) error {
					id, err := argID(c, 0, "BIN_ID")
					if err != nil {
						return err
					}
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Sensors.Readings(c.Context, id, readingQuery(c))
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			withFlags(idCommand("aggregated", "Show a bin's readings bucketed by period", "BIN_ID", func(c *cli.Context, rt *Runtime, id int64) (any, error) {
				return rt.API.Sensors.Aggregated(c.Context, id, c.String("period"), readingQuery(c))
			}),
				&cli.StringFlag{Name: "period", Value: "day", Usage: "hour, day, week or month"},
				&cli.StringFlag{Name: "since", Usage: "Readings on or after (YYYY-MM-DD)"},
				&cli.StringFlag{Name: "until", Usage: "Readings on or before (YYYY-MM-DD)"},
			),
			{
				Name:      "command",
				Usage:     "Send a command to a sensor over the realtime channel",
				ArgsUsage: "SENSOR_ID COMMAND",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "Command parameter as key=value (value may be JSON)"},
					&cli.DurationFlag{Name: "wait", Value: DefaultCommandWait, Usage: "How long to wait for the response, 0 to not wait"},
				},
				Action: sensorCommand,
			},
		},
	}
}

func readingQuery(c *cli.Context) url.Values {
	q := listParams(c).Query()
	if s := c.String("since"); s != "" {
		q.Set("start_date", s)
	}
	if s := c.String("until"); s != "" {
		q.Set("end_date", s)
	}
	return q
}

// parseParams turns key=value pairs into command parameters. Values that
// parse as JSON keep their type; anything else is a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("parameter %q is not key=value", p))
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			params[k] = decoded
		} else {
			params[k] = v
		}
	}
	return params, nil
}

func sensorCommand(c *cli.Context) error {
	sensorID, command := c.Args().Get(0), c.Args().Get(1)
	if sensorID == "" || command == "" {
		return domain.ErrMissingArgument.WithDetails("SENSOR_ID COMMAND")
	}
	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}

	rt, err := openRuntime(c, true)
	if err != nil {
		return err
	}
	if !rt.Store.IsAuthenticated() {
		return errNotLoggedIn
	}
	// The session restore already tried to connect and reported a failure.
	if !rt.Realtime.IsConnected() {
		return domain.ErrNotConnected
	}

	wait := c.Duration("wait")
	responses := make(chan domain.CommandResponse, 1)
	if wait > 0 {
		l := rt.Realtime.OnFunc(domain.EventCommandResponse, realtime.Decode(func(_ context.Context, r domain.CommandResponse) error {
			if r.SensorID != sensorID || r.Command != command {
				return nil
			}
			select {
			case responses <- r:
			default:
			}
			return nil
		}))
		defer rt.Realtime.Off(domain.EventCommandResponse, l)
	}

	if err := rt.Realtime.SendCommand(c.Context, sensorID, command, params); err != nil {
		return err
	}
	if wait <= 0 {
		success(c, "Sent %s to sensor %s", command, sensorID)
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case r := <-responses:
		return render(c, r)
	case <-timer.C:
		return fmt.Errorf("no response from sensor %s within %s", sensorID, wait)
	case <-c.Context.Done():
		return c.Context.Err()
	}
}
