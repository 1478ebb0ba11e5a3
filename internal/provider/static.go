package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// StaticProvider accepts a single fixed username/password pair and issues a
// random token. Used for offline development and tests; no backend required.
type StaticProvider struct {
	Username string
	Password string

	mu    sync.Mutex
	creds Credentials
}

func NewStaticProvider(username, password string) *StaticProvider {
	return &StaticProvider{Username: username, Password: password}
}

func (p *StaticProvider) Login(ctx context.Context, username, password string) (Credentials, error) {
	if username != p.Username || password != p.Password {
		return Credentials{}, ErrInvalidCredentials
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return Credentials{}, fmt.Errorf("failed to generate token: %w", err)
	}

	creds := Credentials{Token: hex.EncodeToString(raw), Username: username}
	p.mu.Lock()
	p.creds = creds
	p.mu.Unlock()
	return creds, nil
}

func (p *StaticProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.creds = Credentials{}
	p.mu.Unlock()
	return nil
}

func (p *StaticProvider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds.Token
}

func (p *StaticProvider) User() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds.Username
}

func (p *StaticProvider) IsAuthenticated() bool {
	return p.Token() != ""
}
