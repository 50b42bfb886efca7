package command

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// outputFormat returns the effective --output, falling back to the config.
func outputFormat(c *cli.Context) (output.Format, error) {
	if f := c.String("output"); f != "" {
		return output.ParseFormat(f)
	}
	cfg, _, err := loadConfig(c)
	if err != nil {
		return "", err
	}
	return output.ParseFormat(cfg.Output)
}

func render(c *cli.Context, data any) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}

// renderPage prints a page of results. Tables get a total line, the
// structured formats get the whole page.
func renderPage[T any](c *cli.Context, page *domain.Page[T]) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, false).Format(c.App.Writer, page)
	}
	if len(page.Results) == 0 {
		fmt.Fprintln(c.App.Writer, "No results.")
		return nil
	}
	if err := output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, page.Results); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal: %d\n", page.Count)
	return nil
}

// success prints a confirmation unless a structured format was requested.
func success(c *cli.Context, format string, args ...any) {
	if f, err := outputFormat(c); err == nil && f != output.FormatTable {
		return
	}
	fmt.Fprintf(c.App.Writer, "✓ "+format+"\n", args...)
}

// argID parses the positional argument at i as a resource ID.
func argID(c *cli.Context, i int, name string) (int64, error) {
	raw := c.Args().Get(i)
	if raw == "" {
		return 0, domain.ErrMissingArgument.WithDetails(name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
	}
	return id, nil
}

// listFlags are the paging flags shared by list commands.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Page number"},
		&cli.IntFlag{Name: "page-size", Usage: "Results per page"},
		&cli.StringFlag{Name: "ordering", Usage: "Sort field, prefix with - for descending"},
		&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Free-text search"},
	}
}

func listParams(c *cli.Context) domain.ListParams {
	return domain.ListParams{
		Page:     c.Int("page"),
		PageSize: c.Int("page-size"),
		Ordering: c.String("ordering"),
		Search:   c.String("search"),
	}
}

// optionalFloat returns a pointer to the flag's value when it was set.
func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

// spinner animates msg on stderr while a call runs, when stderr is a
// terminal. The returned func stops it.
func spinner(c *cli.Context, msg string) (stop func()) {
	if !isTerminal(c.App.ErrWriter) {
		return func() {}
	}
	s := output.NewSpinner(c.App.ErrWriter, msg)
	s.Start()
	return s.Stop
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
