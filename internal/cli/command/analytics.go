package command

import (
	"fmt"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/client/api"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// AnalyticsCommand reads KPIs, predictions and reports.
func AnalyticsCommand() *cli.Command {
	dateFlags := func() []cli.Flag {
		return append(listFlags(),
			&cli.Int64Flag{Name: "zone", Usage: "Zone ID"},
			&cli.StringFlag{Name: "since", Usage: "On or after (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "until", Usage: "On or before (YYYY-MM-DD)"},
		)
	}
	return &cli.Command{
		Name:    "analytics",
		Aliases: []string{"stats"},
		Usage:   "KPIs, predictions and reports",
		Subcommands: []*cli.Command{
			{
				Name:  "kpis",
				Usage: "List KPI values",
				Flags: dateFlags(),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Analytics.KPIs(c.Context, analyticsQuery(c))
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			{
				Name:  "predictions",
				Usage: "List predictions",
				Flags: dateFlags(),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Analytics.Predictions(c.Context, analyticsQuery(c))
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			{
				Name:  "reports",
				Usage: "List generated reports",
				Flags: dateFlags(),
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					page, err := rt.API.Analytics.Reports(c.Context, analyticsQuery(c))
					if err != nil {
						return err
					}
					return renderPage(c, page)
				},
			},
			{
				Name:      "download-report",
				Usage:     "Download a generated report",
				ArgsUsage: "REPORT_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: api.ReportPDF, Usage: "pdf or excel"},
					&cli.StringFlag{Name: "out", Usage: "Destination file (default report-ID.pdf or .xlsx)"},
				},
				Action: downloadReport,
			},
		},
	}
}

func analyticsQuery(c *cli.Context) url.Values {
	q := listParams(c).Query()
	if z := c.Int64("zone"); z > 0 {
		q.Set("zone", fmt.Sprint(z))
	}
	if s := c.String("since"); s != "" {
		q.Set("start_date", s)
	}
	if s := c.String("until"); s != "" {
		q.Set("end_date", s)
	}
	return q
}

func downloadReport(c *cli.Context) error {
	id, err := argID(c, 0, "REPORT_ID")
	if err != nil {
		return err
	}
	format := c.String("format")
	ext := map[string]string{api.ReportPDF: ".pdf", api.ReportExcel: ".xlsx"}[format]
	if ext == "" {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("report format %q (want pdf or excel)", format))
	}
	path := c.String("out")
	if path == "" {
		path = fmt.Sprintf("report-%d%s", id, ext)
	}

	rt, err := authedRuntime(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bar := output.NewProgressBar(c.App.ErrWriter, "Downloading "+path)
	n, err := rt.API.Analytics.DownloadReport(c.Context, id, format, bar.Writer(f))
	bar.Finish()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	success(c, "Saved %s (%d bytes)", path, n)
	return nil
}
