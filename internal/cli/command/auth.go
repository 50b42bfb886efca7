package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wastewise/wastewise-go/internal/cli/output"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// LoginCommand signs in and persists the session.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", EnvVars: []string{"WASTEWISE_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c, false)
			if err != nil {
				return err
			}

			stop := spinner(c, "Signing in...")
			err = rt.Session.Login(c.Context, domain.LoginCredentials{
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			stop()
			if err != nil {
				return err
			}

			name := c.String("email")
			if u := rt.Store.User(); u != nil {
				name = u.DisplayName()
			}
			success(c, "Logged in as %s", name)
			return nil
		},
	}
}

// LogoutCommand clears the persisted session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Sign out and forget the stored session",
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c, false)
			if err != nil {
				return err
			}
			if err := rt.Session.Logout(c.Context); err != nil {
				return err
			}
			success(c, "Logged out")
			return nil
		},
	}
}

// RegisterCommand creates an account and signs in with it.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"WASTEWISE_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
			&cli.StringFlag{Name: "first-name"},
			&cli.StringFlag{Name: "last-name"},
			&cli.StringFlag{Name: "role", Value: string(domain.RoleCitizen), Usage: "admin, operator, driver or citizen"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "city"},
		},
		Action: func(c *cli.Context) error {
			role := domain.Role(c.String("role"))
			switch role {
			case domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver, domain.RoleCitizen:
			default:
				return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown role %q", role))
			}

			rt, err := openRuntime(c, false)
			if err != nil {
				return err
			}
			req := domain.RegisterRequest{
				Email:           c.String("email"),
				Password:        c.String("password"),
				PasswordConfirm: c.String("password"),
				Username:        c.String("username"),
				FirstName:       c.String("first-name"),
				LastName:        c.String("last-name"),
				Role:            role,
				PhoneNumber:     c.String("phone"),
				City:            c.String("city"),
			}
			if err := rt.Session.Register(c.Context, req); err != nil {
				return err
			}
			success(c, "Registered and logged in as %s", req.Email)
			return nil
		},
	}
}

// WhoamiCommand prints the signed-in user, fetched fresh from the server.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: func(c *cli.Context) error {
			rt, err := authedRuntime(c)
			if err != nil {
				return err
			}
			u, err := rt.Session.FetchUser(c.Context)
			if err != nil {
				return err
			}
			return render(c, u)
		},
	}
}

// tokenInfo is what `token show` prints. Tokens themselves are never shown.
type tokenInfo struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"userId,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Expired       bool      `json:"expired"`
	HasRefresh    bool      `json:"hasRefresh"`
}

// TokenCommand inspects and maintains the access token.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect, refresh or verify the access token",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show access token claims",
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					info := tokenInfo{
						Authenticated: true,
						HasRefresh:    rt.Store.RefreshToken() != "",
					}
					if claims, err := rt.Store.AccessClaims(); err == nil {
						info.UserID = claims.UserID
						info.ExpiresAt = claims.ExpiresAt
						info.Expired = claims.Expired(time.Now())
					}
					return render(c, info)
				},
			},
			{
				Name:  "refresh",
				Usage: "Exchange the refresh token for a new access token",
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					if err := rt.Session.RefreshToken(c.Context); err != nil {
						return err
					}
					if exp := rt.Store.AccessExpiry(); !exp.IsZero() {
						success(c, "Access token refreshed, expires %s", exp.Format(output.TimeLayout))
						return nil
					}
					success(c, "Access token refreshed")
					return nil
				},
			},
			{
				Name:  "verify",
				Usage: "Ask the server whether the access token is valid",
				Action: func(c *cli.Context) error {
					rt, err := authedRuntime(c)
					if err != nil {
						return err
					}
					if err := rt.Session.VerifyToken(c.Context); err != nil {
						return err
					}
					success(c, "Access token is valid")
					return nil
				},
			},
		},
	}
}

// ProfileCommand updates the signed-in user's profile.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Update your profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name"},
			&cli.StringFlag{Name: "last-name"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "address"},
			&cli.StringFlag{Name: "city"},
			&cli.BoolFlag{Name: "email-notifications"},
			&cli.BoolFlag{Name: "sms-notifications"},
			&cli.BoolFlag{Name: "push-notifications"},
		},
		Action: func(c *cli.Context) error {
			update := profileUpdate(c)
			if update == (domain.ProfileUpdate{}) {
				return domain.ErrMissingArgument.WithDetails("nothing to update")
			}
			rt, err := authedRuntime(c)
			if err != nil {
				return err
			}
			u, err := rt.Session.UpdateProfile(c.Context, update)
			if err != nil {
				return err
			}
			return render(c, u)
		},
	}
}

// profileUpdate copies only the flags the user set.
func profileUpdate(c *cli.Context) domain.ProfileUpdate {
	str := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Bool(name)
		return &v
	}
	return domain.ProfileUpdate{
		FirstName:          str("first-name"),
		LastName:           str("last-name"),
		PhoneNumber:        str("phone"),
		Address:            str("address"),
		City:               str("city"),
		EmailNotifications: boolean("email-notifications"),
		SMSNotifications:   boolean("sms-notifications"),
		PushNotifications:  boolean("push-notifications"),
	}
}

// PasswdCommand changes the password.
func PasswdCommand() *cli.Command {
	return &cli.Command{
		Name:  "passwd",
		Usage: "Change your password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "old", Usage: "Current password", Required: true},
			&cli.StringFlag{Name: "new", Usage: "New password", Required: true},
		},
		Action: func(c *cli.Context) error {
			rt, err := authedRuntime(c)
			if err != nil {
				return err
			}
			err = rt.Session.ChangePassword(c.Context, domain.PasswordChange{
				OldPassword: c.String("old"),
				NewPassword: c.String("new"),
			})
			if err != nil {
				return err
			}
			success(c, "Password changed")
			return nil
		},
	}
}
