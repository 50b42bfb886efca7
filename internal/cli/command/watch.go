package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/client/realtime"
	"github.com/wastewise/wastewise-go/internal/config"
	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/infra/confloader"
	"github.com/wastewise/wastewise-go/internal/infra/shutdown"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

const watchPollInterval = 500 * time.Millisecond

// WatchCommand streams realtime events until interrupted.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream realtime events",
		Description: "Connects to the realtime channel and prints every event until interrupted.\n" +
			"The config file is watched and log.level changes apply immediately.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "event", Aliases: []string{"e"}, Usage: "Only print these events (repeatable)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address (e.g., :9090)"},
		},
		Action: watch,
	}
}

// eventLine is one printed event in json and yaml output.
type eventLine struct {
	Time  time.Time       `json:"time"`
	Event domain.Event    `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// eventPrinter serializes event output from the read loop.
type eventPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	format output.Format
}

func (p *eventPrinter) print(event domain.Event, data json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	if p.format == output.FormatTable {
		_, err := fmt.Fprintf(p.w, "%s  %-20s %s\n", now.Format(time.TimeOnly), event, compact(data))
		return err
	}
	b, err := json.Marshal(eventLine{Time: now, Event: event, Data: data})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n", b)
	return err
}

func compact(data json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

func watchedEvents(names []string) ([]domain.Event, error) {
	if len(names) == 0 {
		return domain.Events(), nil
	}
	events := make([]domain.Event, 0, len(names))
	for _, n := range names {
		e := domain.Event(n)
		if !e.Known() {
			return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown event %q", n))
		}
		events = append(events, e)
	}
	return events, nil
}

func watch(c *cli.Context) error {
	events, err := watchedEvents(c.StringSlice("event"))
	if err != nil {
		return err
	}
	format, err := outputFormat(c)
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

	hooks := shutdown.NewHandler(0)
	ctx, stop := hooks.NotifyContext(c.Context)
	defer stop()

	printer := &eventPrinter{w: c.App.Writer, format: format}
	for _, e := range events {
		l := rt.Realtime.OnFunc(e, func(_ context.Context, data json.RawMessage) error {
			return printer.print(e, data)
		})
		hooks.OnShutdown("listener "+string(e), func(context.Context) error {
			rt.Realtime.Off(e, l)
			return nil
		})
	}

	if rt.Realtime.State() == realtime.Disconnected {
		hooks.Shutdown()
		return domain.ErrNotConnected
	}
	hooks.OnShutdown("realtime", func(context.Context) error {
		rt.Realtime.Disconnect()
		return nil
	})

	addr := c.String("metrics-addr")
	if addr == "" {
		addr = rt.Config.Metrics.Addr
	}
	if addr != "" {
		srv, err := serveMetrics(rt, addr)
		if err != nil {
			hooks.Shutdown()
			return err
		}
		hooks.OnShutdown("metrics", srv.Shutdown)
	}

	if rt.ConfigPath != "" {
		if w, err := watchConfig(rt); err != nil {
			rt.Logger.Warn("config hot reload disabled", "error", err)
		} else {
			hooks.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
		}
	}

	rt.Logger.Info("watching realtime events", "events", len(events))
	err = waitDisconnected(ctx, rt.Realtime)
	if serr := hooks.Shutdown(); serr != nil {
		rt.Logger.Warn("shutdown", "error", serr)
	}
	return err
}

// waitDisconnected returns nil when ctx ends and ErrReconnectExhausted
// when the channel gives up reconnecting.
func waitDisconnected(ctx context.Context, ch *realtime.Channel) error {
	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ch.State() == realtime.Disconnected {
				return domain.ErrReconnectExhausted
			}
		}
	}
}

func serveMetrics(rt *Runtime, addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Logger.Error("metrics server stopped", "error", err)
		}
	}()
	rt.Logger.Info("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}

// watchConfig reapplies log.level whenever the config file changes.
func watchConfig(rt *Runtime) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(path string) {
		cfg, _, err := config.Load(config.LoadOptions{Path: path})
		if err != nil {
			rt.Logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			rt.Logger.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
