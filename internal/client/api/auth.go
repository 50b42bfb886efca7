package api

import (
	"context"
	"net/http"

	"github.com/wastewise/wastewise-go/internal/client/httpclient"
	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// Token endpoints, relative to the API base URL.
const (
	TokenPath       = "/auth/token/"
	TokenVerifyPath = "/auth/token/verify/"
)

// AuthService covers tokens and the current user's account.
type AuthService struct {
	d Doer
}

// Login exchanges email and password for a token pair.
func (s *AuthService) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.Credentials, error) {
	var out domain.Credentials
	err := s.d.Do(ctx, &httpclient.Request{
		Method:   http.MethodPost,
		Path:     TokenPath,
		Body:     creds,
		SkipAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := s.d.Do(ctx, &httpclient.Request{
		Method:   http.MethodPost,
		Path:     httpclient.RefreshPath,
		Body:     map[string]string{"refresh": refresh},
		SkipAuth: true,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", domain.ErrMalformedToken.WithDetails("refresh response without access token")
	}
	return out.Access, nil
}

// Verify asks the server whether token is valid. A nil error means it is.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	return s.d.Do(ctx, &httpclient.Request{
		Method:   http.MethodPost,
		Path:     TokenVerifyPath,
		Body:     map[string]string{"token": token},
		SkipAuth: true,
	}, nil)
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	var out domain.User
	err := s.d.Do(ctx, &httpclient.Request{
		Method:   http.MethodPost,
		Path:     "/v1/users/register/",
		Body:     req,
		SkipAuth: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := get(ctx, s.d, "/v1/users/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile patches the authenticated user's profile and returns the
// server's copy.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	if err := send(ctx, s.d, http.MethodPatch, "/v1/users/me/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the authenticated user's password.
func (s *AuthService) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	return send(ctx, s.d, http.MethodPost, "/v1/users/change-password/", change, nil)
}

// UserService is the admin user directory.
type UserService struct {
	resource[domain.User]
}
