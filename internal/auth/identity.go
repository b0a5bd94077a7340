// Package auth bridges the GitHub OAuth flow to a server-side session.
package auth

import (
	"context"
	"encoding/gob"
)

// Identity is the one shape of an authenticated user kept in the session,
// whatever the provider returned.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

// Provider is an OAuth identity provider.
type Provider interface {
	// AuthCodeURL is where the browser is sent to start the flow.
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the user's identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}

func init() {
	gob.Register(Identity{})
}
