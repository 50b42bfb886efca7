package domain

import "time"

// Role is the platform role of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleDriver   Role = "driver"
	RoleCitizen  Role = "citizen"
)

// User is the server-owned profile record. The client only caches it.
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Role               Role      `json:"role"`
	PhoneNumber        string    `json:"phoneNumber,omitempty" table:"wide"`
	ProfilePicture     string    `json:"profilePicture,omitempty" table:"-"`
	Address            string    `json:"address,omitempty" table:"wide"`
	City               string    `json:"city"`
	EmailNotifications bool      `json:"emailNotifications" table:"wide"`
	SMSNotifications   bool      `json:"smsNotifications" table:"wide"`
	PushNotifications  bool      `json:"pushNotifications" table:"wide"`
	CreatedAt          time.Time `json:"createdAt" table:"wide"`
	UpdatedAt          time.Time `json:"updatedAt" table:"wide"`
}

// DisplayName returns "First Last", falling back to username and email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" || u.LastName != "":
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// LoginCredentials is the body of POST /auth/token/.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /v1/users/register/.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2,omitempty"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Role            Role   `json:"role,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	City            string `json:"city,omitempty"`
}

// Login returns the credentials used for the automatic login that follows
// a registration.
func (r RegisterRequest) Login() LoginCredentials {
	return LoginCredentials{Email: r.Email, Password: r.Password}
}

// ProfileUpdate is the body of PATCH /v1/users/me/. Nil fields are omitted.
type ProfileUpdate struct {
	FirstName          *string `json:"firstName,omitempty"`
	LastName           *string `json:"lastName,omitempty"`
	PhoneNumber        *string `json:"phoneNumber,omitempty"`
	Address            *string `json:"address,omitempty"`
	City               *string `json:"city,omitempty"`
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
	SMSNotifications   *bool   `json:"smsNotifications,omitempty"`
	PushNotifications  *bool   `json:"pushNotifications,omitempty"`
}

// PasswordChange is the body of POST /v1/users/change-password/.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
