package authapi

import (
	"bytes"
	"encoding/json"
)

// RefreshRequest is the body posted to the token refresh endpoint.
// Refresh is sent as null when no refresh token is stored.
type RefreshRequest struct {
	Refresh *string `json:"refresh"`
}

// RefreshResponse is the body returned by the token refresh endpoint.
// Only Access is required; Refresh is present when the API rotates refresh tokens.
type RefreshResponse struct {
	Access  *string `json:"access,omitempty"`
	Refresh *string `json:"refresh,omitempty"`
	Detail  *string `json:"detail,omitempty"` // Error description, e.g. "Token is invalid or expired"
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// ID is a primary key the API may encode either as a JSON string (uuid) or a number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// User is the account summary returned alongside a token pair.
type User struct {
	PK    ID     `json:"pk"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// TokenPairResponse is returned by the login and register endpoints.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// UserID returns the user's primary key as a string, whether the API encoded it as a number or a string.
func (t TokenPairResponse) UserID() string {
	return string(t.User.PK)
}
