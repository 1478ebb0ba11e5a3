package provider

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned by Login when the username/password pair
// does not match. Callers must not learn which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is what a successful login yields: an opaque bearer token and
// the username it was issued for.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// SessionProvider validates credentials and tracks the current bearer token.
// Implementations keep the last issued credentials in memory; durable
// persistence across restarts is layered on top by the session store.
type SessionProvider interface {
	Login(ctx context.Context, username, password string) (Credentials, error)
	Logout(ctx context.Context) error
	Token() string
	User() string
	IsAuthenticated() bool
}
