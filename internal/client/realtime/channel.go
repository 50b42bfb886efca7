package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/wastewise/wastewise-go/internal/client/notify"
	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
	"github.com/wastewise/wastewise-go/internal/telemetry/metric"
)

// Defaults
const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = time.Second
	DefaultDialTimeout          = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultCommandRate          = 2
	DefaultCommandBurst         = 5

	readLimit = 1 << 20
)

// User-facing notifications.
const (
	MsgConnectionError    = "Connection error. Please check your internet connection."
	MsgReconnectExhausted = "Failed to reconnect to server. Please refresh the page."
	MsgNotConnected       = "WebSocket not connected"
	MsgCommandThrottled   = "Too many sensor commands. Please wait a moment."
)

// State is the connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// TokenSource supplies the access token used at dial time.
type TokenSource interface {
	AccessToken() string
}

// Config configures a Channel.
type Config struct {
	URL    string
	Tokens TokenSource

	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	DialTimeout          time.Duration

	// Channels replaces the default subscription set when non-empty.
	Channels []string

	// CommandRate is sensor commands per second; CommandBurst the bucket size.
	CommandRate  float64
	CommandBurst int

	Notifier   notify.Notifier
	Logger     logger.Logger
	Metrics    *metric.Registry
	HTTPClient *http.Client
}

// afterFunc schedules fn after d and returns a stop function.
type afterFunc func(d time.Duration, fn func()) (stop func() bool)

func timeAfter(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Channel is the realtime connection. It is safe for concurrent use.
type Channel struct {
	url         string
	tokens      TokenSource
	maxAttempts int
	delay       time.Duration
	dialTimeout time.Duration
	httpClient  *http.Client
	notifier    notify.Notifier
	logger      logger.Logger
	metrics     *metric.Registry
	limiter     *rate.Limiter
	after       afterFunc

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	cancelRead context.CancelFunc
	gen        uint64
	attempts   int
	stopTimer  func() bool
	closing    bool
	defaults   []string
	extras     []string
	listeners  table
}

// New creates a disconnected channel.
func New(cfg Config) *Channel {
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxReconnectAttempts
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	channels := cfg.Channels
	if len(channels) == 0 {
		channels = domain.DefaultChannels()
	}
	cmdRate, burst := cfg.CommandRate, cfg.CommandBurst
	if cmdRate <= 0 {
		cmdRate = DefaultCommandRate
	}
	if burst <= 0 {
		burst = DefaultCommandBurst
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}

	return &Channel{
		url:         cfg.URL,
		tokens:      cfg.Tokens,
		maxAttempts: maxAttempts,
		delay:       delay,
		dialTimeout: dialTimeout,
		httpClient:  cfg.HTTPClient,
		notifier:    notifier,
		logger:      l.With("component", "realtime"),
		metrics:     cfg.Metrics,
		limiter:     rate.NewLimiter(rate.Limit(cmdRate), burst),
		after:       timeAfter,
		defaults:    slices.Clone(channels),
		listeners:   make(table),
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the channel has a live connection.
func (c *Channel) IsConnected() bool {
	return c.State() == Connected
}

// Attempts returns the reconnect attempts made since the last successful connect.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Channels returns the channels joined on every connect: the defaults,
// then those added with Subscribe.
func (c *Channel) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscriptions()
}

// subscriptions returns defaults followed by extras. Callers hold c.mu.
func (c *Channel) subscriptions() []string {
	return append(slices.Clone(c.defaults), c.extras...)
}

func (c *Channel) setState(s State) {
	c.state = s
	c.metrics.SetRealtimeState(int(s))
}

// Connect dials the gateway. Without an access token it logs a warning,
// leaves the channel untouched and returns domain.ErrNoAccessToken.
// Connecting a channel that is connected or already dialing is a no-op.
func (c *Channel) Connect(ctx context.Context) error {
	token := c.accessToken()
	if token == "" {
		c.logger.Warn("no auth token available for realtime connection")
		return domain.ErrNoAccessToken
	}

	c.mu.Lock()
	if c.state == Connected || c.state == Connecting {
		c.mu.Unlock()
		return nil
	}
	c.closing = false
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	startGen := c.gen
	c.setState(Connecting)
	c.mu.Unlock()

	return c.dial(ctx, token, startGen, false)
}

func (c *Channel) accessToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// dial opens the connection for a channel already marked Connecting.
// startGen is the generation seen when the attempt was claimed.
func (c *Channel) dial(ctx context.Context, token string, startGen uint64, reconnecting bool) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.dialURL(token), &websocket.DialOptions{
		HTTPClient: c.httpClient,
	})
	cancel()
	if err != nil {
		c.logger.Warn("realtime dial failed", "url", c.url, "error", err)
		if ctx.Err() == nil {
			c.notifier.Error(MsgConnectionError)
		}
		c.mu.Lock()
		switch {
		case c.gen != startGen:
			// Disconnect ran while dialing.
		case !reconnecting || c.closing:
			c.setState(Disconnected)
		default:
			c.setState(Reconnecting)
		}
		c.mu.Unlock()
		return fmt.Errorf("realtime: dial: %w", err)
	}
	conn.SetReadLimit(readLimit)

	c.mu.Lock()
	if c.gen != startGen {
		// Disconnect ran while dialing.
		c.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "client disconnect")
		return domain.ErrNotConnected
	}
	c.gen++
	gen := c.gen
	readCtx, cancelRead := context.WithCancel(context.Background())
	c.conn = conn
	c.cancelRead = cancelRead
	c.attempts = 0
	c.setState(Connected)
	channels := c.subscriptions()
	c.mu.Unlock()

	c.logger.Info("realtime connected", "url", c.url)
	go c.readLoop(readCtx, gen, conn)

	for _, ch := range channels {
		if err := c.write(ctx, conn, domain.MessageSubscribe, domain.ChannelPayload{Channel: ch}); err != nil {
			c.logger.Warn("subscribe failed", "channel", ch, "error", err)
		}
	}
	return nil
}

func (c *Channel) dialURL(token string) string {
	u, err := url.Parse(c.url)
	if err != nil {
		return c.url
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Disconnect closes the connection, cancels a pending reconnect and drops
// every listener. It is safe to call at any time.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.closing = true
	c.gen++
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	conn, cancelRead := c.conn, c.cancelRead
	c.conn, c.cancelRead = nil, nil
	c.listeners = make(table)
	wasConnected := c.state != Disconnected
	c.setState(Disconnected)
	c.mu.Unlock()

	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	if cancelRead != nil {
		cancelRead()
	}
	if wasConnected {
		c.logger.Info("realtime disconnected")
	}
}

func (c *Channel) readLoop(ctx context.Context, gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.dropped(gen, err)
			return
		}
		c.dispatch(ctx, data)
	}
}

// dropped handles the end of connection gen.
func (c *Channel) dropped(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.closing {
		return
	}
	c.conn, c.cancelRead = nil, nil
	c.logger.Info("realtime connection dropped",
		"close_status", websocket.CloseStatus(err),
		"error", err,
	)
	c.setState(Reconnecting)
	c.scheduleReconnect()
}

// scheduleReconnect runs one step of the reconnect procedure. Callers hold c.mu.
func (c *Channel) scheduleReconnect() {
	if c.attempts >= c.maxAttempts {
		c.setState(Disconnected)
		c.logger.Error("realtime reconnect attempts exhausted", "attempts", c.attempts)
		c.notifier.Error(MsgReconnectExhausted)
		return
	}
	c.attempts++
	c.metrics.IncReconnectAttempt()
	attempt := c.attempts
	delay := c.delay * time.Duration(attempt)
	c.logger.Info("realtime reconnect scheduled", "attempt", attempt, "max", c.maxAttempts, "delay", delay)
	c.stopTimer = c.after(delay, func() { c.retry(attempt) })
}

func (c *Channel) retry(attempt int) {
	c.mu.Lock()
	if c.closing || c.state != Reconnecting || c.attempts != attempt {
		c.mu.Unlock()
		return
	}
	c.stopTimer = nil
	token := c.accessToken()
	if token == "" {
		c.logger.Warn("no auth token available for realtime reconnect", "attempt", attempt)
		c.scheduleReconnect()
		c.mu.Unlock()
		return
	}
	startGen := c.gen
	c.setState(Connecting)
	c.mu.Unlock()

	c.logger.Info("attempting to reconnect", "attempt", attempt, "max", c.maxAttempts)
	if err := c.dial(context.Background(), token, startGen, true); err != nil {
		c.mu.Lock()
		if !c.closing && c.gen == startGen && c.state == Reconnecting {
			c.scheduleReconnect()
		}
		c.mu.Unlock()
	}
}

func (c *Channel) dispatch(ctx context.Context, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed realtime frame", "error", err)
		return
	}
	if err := env.Validate(); err != nil {
		c.logger.Warn("invalid realtime frame", "error", err)
		return
	}
	event := domain.Event(env.Event)
	if !event.Known() {
		c.logger.Debug("ignoring realtime event", "event", env.Event)
		return
	}
	c.metrics.RecordRealtimeEvent(env.Event)

	c.mu.Lock()
	listeners := c.listeners.snapshot(event)
	c.mu.Unlock()

	for _, l := range listeners {
		c.invoke(ctx, event, l, env.Data)
	}

	if event == domain.EventAlertNotification {
		var alert domain.AlertNotification
		if err := json.Unmarshal(env.Data, &alert); err == nil && alert.Severity.Urgent() {
			c.notifier.Error(alert.Title)
		}
	}
}

func (c *Channel) invoke(ctx context.Context, event domain.Event, l *Listener, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.RecordHandlerFailure(string(event))
			c.logger.Error("realtime listener panicked", "event", event, "listener", l.String(), "panic", r)
		}
	}()
	if err := l.fn(ctx, data); err != nil {
		c.metrics.RecordHandlerFailure(string(event))
		c.logger.Error("realtime listener failed", "event", event, "listener", l.String(), "error", err)
	}
}

// On registers l for event. Registering the same listener twice is a no-op.
func (c *Channel) On(event domain.Event, l *Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners.add(event, l)
}

// OnFunc registers fn for event and returns its handle for Off.
func (c *Channel) OnFunc(event domain.Event, fn HandlerFunc) *Listener {
	l := NewListener(string(event), fn)
	c.On(event, l)
	return l
}

// Off removes l from event.
func (c *Channel) Off(event domain.Event, l *Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners.remove(event, l)
}

// Listeners returns how many listeners event has.
func (c *Channel) Listeners(event domain.Event) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners[event])
}

func (c *Channel) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return nil
	}
	return c.conn
}

// Subscribe joins channel and, unless it is a default, adds it to the
// channels joined on reconnect. It returns domain.ErrNotConnected without
// a connection.
func (c *Channel) Subscribe(ctx context.Context, channel string) error {
	conn := c.current()
	if conn == nil {
		return domain.ErrNotConnected
	}
	c.mu.Lock()
	if !slices.Contains(c.defaults, channel) && !slices.Contains(c.extras, channel) {
		c.extras = append(c.extras, channel)
	}
	c.mu.Unlock()
	return c.write(ctx, conn, domain.MessageSubscribe, domain.ChannelPayload{Channel: channel})
}

// Unsubscribe leaves channel. A channel added with Subscribe is no longer
// joined on reconnect; defaults are joined again on every connect.
func (c *Channel) Unsubscribe(ctx context.Context, channel string) error {
	conn := c.current()
	if conn == nil {
		return domain.ErrNotConnected
	}
	c.mu.Lock()
	c.extras = slices.DeleteFunc(c.extras, func(ch string) bool { return ch == channel })
	c.mu.Unlock()
	return c.write(ctx, conn, domain.MessageUnsubscribe, domain.ChannelPayload{Channel: channel})
}

// SendCommand sends a command to a sensor. Without a connection the user
// is told so and domain.ErrNotConnected is returned.
func (c *Channel) SendCommand(ctx context.Context, sensorID, command string, params map[string]any) error {
	conn := c.current()
	if conn == nil {
		c.notifier.Error(MsgNotConnected)
		return domain.ErrNotConnected
	}
	if !c.limiter.Allow() {
		c.metrics.IncCommandThrottled()
		c.notifier.Warn(MsgCommandThrottled)
		return domain.ErrCommandRateLimited.WithDetails(sensorID)
	}
	return c.write(ctx, conn, domain.MessageSensorCommand, domain.SensorCommand{
		SensorID:   sensorID,
		Command:    command,
		Parameters: params,
	})
}

func (c *Channel) write(ctx context.Context, conn *websocket.Conn, event string, data any) error {
	env, err := domain.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("realtime: encode %s: %w", event, err)
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultWriteTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("realtime: write %s: %w", event, err)
	}
	return nil
}
