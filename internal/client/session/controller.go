// Package session orchestrates login, logout, registration and profile
// flows across the token store, the API and the realtime channel.
//
// The Controller is the only writer of session state. UI surfaces read
// snapshots through State or subscribe to the store.
package session

import (
	"context"
	"errors"

	"github.com/wastewise/wastewise-go/internal/client/api"
	"github.com/wastewise/wastewise-go/internal/client/httpclient"
	"github.com/wastewise/wastewise-go/internal/client/tokenstore"
	"github.com/wastewise/wastewise-go/internal/core/domain"
	"github.com/wastewise/wastewise-go/internal/telemetry/logger"
)

// Realtime is the part of the realtime channel the controller drives.
type Realtime interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// Navigator sends the user to the login screen after a forced logout.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

type nopRealtime struct{}

func (nopRealtime) Connect(context.Context) error { return nil }
func (nopRealtime) Disconnect()                   {}

// Config wires a Controller.
type Config struct {
	Store    *tokenstore.Store
	API      *api.Client
	Realtime Realtime

	// HTTP, when set, gets the controller's session-expired hook.
	HTTP      *httpclient.Client
	Navigator Navigator
	Logger    logger.Logger
}

// Controller runs the session flows.
type Controller struct {
	store    *tokenstore.Store
	api      *api.Client
	realtime Realtime
	nav      Navigator
	logger   logger.Logger
}

// New builds a controller and, if cfg.HTTP is set, registers it as the
// client's session-expired hook.
func New(cfg Config) *Controller {
	rt := cfg.Realtime
	if rt == nil {
		rt = nopRealtime{}
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	c := &Controller{
		store:    cfg.Store,
		api:      cfg.API,
		realtime: rt,
		nav:      cfg.Navigator,
		logger:   l.With("component", "session"),
	}
	if cfg.HTTP != nil {
		cfg.HTTP.OnSessionExpired(c.expired)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() domain.SessionState {
	return c.store.Snapshot()
}

// Login exchanges credentials for a token pair, caches the user and opens
// the realtime channel. On any failure the session is cleared and the
// error returned. The loading flag is set for the duration.
func (c *Controller) Login(ctx context.Context, creds domain.LoginCredentials) error {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)
	return c.login(ctx, creds)
}

func (c *Controller) login(ctx context.Context, creds domain.LoginCredentials) error {
	if err := c.authenticate(ctx, creds); err != nil {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Warn("clearing failed login", "error", clearErr)
		}
		return err
	}

	if err := c.realtime.Connect(ctx); err != nil {
		c.logger.Warn("realtime connect after login failed", "error", err)
	}
	c.logger.Info("logged in", "email", creds.Email)
	return nil
}

func (c *Controller) authenticate(ctx context.Context, creds domain.LoginCredentials) error {
	pair, err := c.api.Auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := c.store.SetCredentials(ctx, pair); err != nil && !errors.Is(err, domain.ErrPersistFailed) {
		return err
	}
	_, err = c.FetchUser(ctx)
	return err
}

// Logout clears the session, closes the realtime channel and erases the
// persisted record. Calling it without a session is fine.
func (c *Controller) Logout(ctx context.Context) error {
	wasAuthenticated := c.store.IsAuthenticated()
	err := c.store.Clear(ctx)
	c.realtime.Disconnect()
	if wasAuthenticated {
		c.logger.Info("logged out")
	}
	return err
}

// Register creates an account and then logs in with the same email and
// password. The loading flag stays set across both steps.
func (c *Controller) Register(ctx context.Context, req domain.RegisterRequest) error {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	if _, err := c.api.Auth.Register(ctx, req); err != nil {
		return err
	}
	return c.login(ctx, req.Login())
}

// RefreshToken swaps the access token for a new one, keeping the refresh
// token. Without a refresh token it returns domain.ErrNoRefreshToken. A
// rejected refresh logs the user out.
func (c *Controller) RefreshToken(ctx context.Context) error {
	refresh := c.store.RefreshToken()
	if refresh == "" {
		return domain.ErrNoRefreshToken
	}

	access, err := c.api.Auth.Refresh(ctx, refresh)
	if err != nil {
		if logoutErr := c.Logout(ctx); logoutErr != nil {
			c.logger.Warn("logout after failed refresh", "error", logoutErr)
		}
		return err
	}
	if err := c.store.SetAccess(ctx, access); err != nil && !errors.Is(err, domain.ErrPersistFailed) {
		return err
	}
	return nil
}

// FetchUser loads the current user and caches it.
func (c *Controller) FetchUser(ctx context.Context) (*domain.User, error) {
	u, err := c.api.Auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	c.cacheUser(ctx, u)
	return u, nil
}

// UpdateProfile patches the profile and caches the server's copy.
func (c *Controller) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	u, err := c.api.Auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	c.cacheUser(ctx, u)
	return u, nil
}

// ChangePassword changes the password. The session is untouched.
func (c *Controller) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	return c.api.Auth.ChangePassword(ctx, change)
}

// VerifyToken asks the server whether the current access token is valid.
func (c *Controller) VerifyToken(ctx context.Context) error {
	token := c.store.AccessToken()
	if token == "" {
		return domain.ErrNotAuthenticated
	}
	return c.api.Auth.Verify(ctx, token)
}

// Restore rehydrates the session from storage and, when it is
// authenticated, opens the realtime channel.
func (c *Controller) Restore(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		return err
	}
	if !c.store.IsAuthenticated() {
		return nil
	}
	if err := c.realtime.Connect(ctx); err != nil {
		c.logger.Warn("realtime connect after restore failed", "error", err)
	}
	return nil
}

func (c *Controller) cacheUser(ctx context.Context, u *domain.User) {
	if err := c.store.SetUser(ctx, u); err != nil {
		c.logger.Warn("caching user failed", "error", err)
	}
}

// expired is the HTTP client's hook for an unrecoverable 401.
func (c *Controller) expired(ctx context.Context, cause error) {
	c.logger.Warn("session expired, logging out", "cause", cause)
	if err := c.Logout(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("logout after expiry", "error", err)
	}
	if c.nav != nil {
		c.nav.ToLogin()
	}
}
