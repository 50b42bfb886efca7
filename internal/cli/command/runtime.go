package command

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/client/api"
	"github.com/wastewise/wastewise-go/internal/client/httpclient"
	"github.com/wastewise/wastewise-go/internal/client/notify"
	"github.com/wastewise/wastewise-go/internal/client/realtime"
	"github.com/wastewise/wastewise-go/internal/client/session"
	"github.com/wastewise/wastewise-go/internal/client/tokenstore"
	"github.com/wastewise/wastewise-go/internal/config"
	"github.com/wastewise/wastewise-go/internal/infra/buildinfo"
	"github.com/wastewise/wastewise-go/internal/infra/tlsroots"
	"github.com/wastewise/wastewise-go/internal/storage"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
	"github.com/wastewise/wastewise-go/internal/telemetry/metric"
)

// MsgSessionExpired is printed when the backend ends the session.
const MsgSessionExpired = "Session expired. Run `wastewise login`."

const stateKey = "wastewise.state"

var errNotLoggedIn = errors.New("not logged in: run `wastewise login`")

// state is shared by every run of one App, so shell lines reuse the
// runtime opened by the shell command.
type state struct {
	cfg     *config.ClientConfig
	cfgPath string
	rt      *Runtime
	inShell bool
}

func appState(app *cli.App) *state {
	if st, ok := app.Metadata[stateKey].(*state); ok {
		return st
	}
	st := &state{}
	if app.Metadata == nil {
		app.Metadata = map[string]any{}
	}
	app.Metadata[stateKey] = st
	return st
}

// Runtime is the wired client stack behind every command.
type Runtime struct {
	Config     *config.ClientConfig
	ConfigPath string

	Logger   logger.Logger
	Metrics  *metric.Registry
	Store    *tokenstore.Store
	HTTP     *httpclient.Client
	API      *api.Client
	Realtime *realtime.Channel
	Session  *session.Controller

	// Live is set when the session controller drives the realtime channel.
	Live bool

	notifier *countingNotifier
}

// Close disconnects the realtime channel and closes storage.
func (r *Runtime) Close() error {
	r.Realtime.Disconnect()
	return r.Store.Close()
}

// countingNotifier counts errors so they are not reported twice.
type countingNotifier struct {
	notify.Notifier
	n atomic.Int64
}

func (c *countingNotifier) Error(msg string) {
	c.n.Add(1)
	c.Notifier.Error(msg)
}

func (c *countingNotifier) errors() int {
	return int(c.n.Load())
}

// loadConfig merges config sources once per App.
func loadConfig(c *cli.Context) (*config.ClientConfig, string, error) {
	st := appState(c.App)
	if st.cfg != nil {
		return st.cfg, st.cfgPath, nil
	}
	flags := ParseGlobalFlags(c)
	cfg, path, err := config.Load(config.LoadOptions{
		Path:      flags.Config,
		Overrides: flags.overrides(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("config: %w", err)
	}
	st.cfg, st.cfgPath = cfg, path
	return cfg, path, nil
}

// openRuntime builds the client stack once per App and restores the
// persisted session. With live set, login and restore also open the
// realtime channel.
func openRuntime(c *cli.Context, live bool) (*Runtime, error) {
	st := appState(c.App)
	if st.rt != nil {
		return st.rt, nil
	}

	cfg, path, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	engine, err := storage.Open(c.Context, cfg.KVConfig(), logger.Slog(log))
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}

	tlsTransport, err := tlsroots.Transport(cfg.TLS)
	if err != nil {
		engine.Close()
		return nil, err
	}
	var transport http.RoundTripper
	if tlsTransport != nil {
		transport = tlsTransport
	}

	notifier := &countingNotifier{Notifier: notify.NewWriter(c.App.ErrWriter)}
	metrics := metric.NewRegistry()

	store := tokenstore.New(engine, tokenstore.WithLogger(log))
	if err := metrics.RegisterSession(store); err != nil {
		log.Warn("session metrics not registered", "error", err)
	}

	httpc := httpclient.New(httpclient.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: buildinfo.UserAgent(),
		Tokens:    store,
		Notifier:  notifier,
		Logger:    log,
		Metrics:   metrics,
		Transport: transport,
	})
	apiClient := api.New(httpc)

	channel := realtime.New(realtime.Config{
		URL:                  cfg.WSURL,
		Tokens:               store,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		ReconnectDelay:       cfg.Realtime.ReconnectDelay,
		Channels:             cfg.Realtime.Channels,
		CommandRate:          cfg.Realtime.CommandRate,
		CommandBurst:         cfg.Realtime.CommandBurst,
		Notifier:             notifier,
		Logger:               log,
		Metrics:              metrics,
		HTTPClient:           &http.Client{Transport: transport},
	})

	var driven session.Realtime
	if live {
		driven = channel
	}
	errWriter := c.App.ErrWriter
	ctrl := session.New(session.Config{
		Store:    store,
		API:      apiClient,
		Realtime: driven,
		HTTP:     httpc,
		Navigator: session.NavigatorFunc(func() {
			fmt.Fprintln(errWriter, MsgSessionExpired)
		}),
		Logger: log,
	})

	rt := &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Logger:     log,
		Metrics:    metrics,
		Store:      store,
		HTTP:       httpc,
		API:        apiClient,
		Realtime:   channel,
		Session:    ctrl,
		Live:       live,
		notifier:   notifier,
	}
	if err := ctrl.Restore(c.Context); err != nil {
		log.Warn("restoring session failed", "error", err)
	}
	st.rt = rt
	return rt, nil
}

// authedRuntime opens the runtime and requires a signed-in session.
func authedRuntime(c *cli.Context) (*Runtime, error) {
	rt, err := openRuntime(c, false)
	if err != nil {
		return nil, err
	}
	if !rt.Store.IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return rt, nil
}

func closeRuntime(app *cli.App) {
	st := appState(app)
	if st.rt == nil {
		return
	}
	if err := st.rt.Close(); err != nil {
		st.rt.Logger.Warn("closing runtime", "error", err)
	}
	st.rt = nil
}
